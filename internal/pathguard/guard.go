// Package pathguard validates and normalizes candidate input and output
// paths: symlink resolution, traversal auditing, and denial of writes into
// protected system directories.
//
// Traversal segments ("..") are warned about but never fatal by themselves;
// whether a path is rejected is decided solely by the post-resolution
// protected-directory check.
package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Role states how a path will be used; outputs get the stricter checks.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
)

func (r Role) String() string {
	if r == RoleOutput {
		return "output"
	}
	return "input"
}

// SecurityKind classifies why a path was rejected.
type SecurityKind int

const (
	KindNotFound SecurityKind = iota
	KindSpecialFile
	KindProtectedDir
	KindWouldOverwrite
	KindUnresolvable
)

// SecurityError is a path rejection with enough structured detail for the
// presentation layer to render without re-deriving context.
type SecurityError struct {
	Kind   SecurityKind
	Path   string // the path as the user supplied it
	Real   string // the resolved real path, when resolution succeeded
	Detail string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Detail, e.Path)
}

// ValidatedPath wraps a path that passed validation. Real is the
// canonicalized post-symlink-resolution path; Redirected notes whether
// resolution changed it (surfaced as an audit warning, never swallowed).
type ValidatedPath struct {
	Raw        string
	Real       string
	Redirected bool
}

// Guard validates paths against a protected-directory list. The zero value
// is not usable; construct with New (OS defaults) or NewWithDenyList (tests,
// custom policies).
type Guard struct {
	deny []string
	log  *logrus.Logger
}

// New returns a Guard with the OS deny list plus any extra protected
// directories from configuration.
func New(log *logrus.Logger, extraDeny ...string) *Guard {
	deny := append(defaultDenyList(), extraDeny...)
	return NewWithDenyList(log, deny)
}

// NewWithDenyList returns a Guard protecting exactly the given directories.
func NewWithDenyList(log *logrus.Logger, deny []string) *Guard {
	cleaned := make([]string, 0, len(deny))
	for _, d := range deny {
		cleaned = append(cleaned, filepath.Clean(d))
	}
	return &Guard{deny: cleaned, log: log}
}

// Validate normalizes path and applies the role's checks. Inputs must exist
// and be regular files. Outputs must not resolve into a protected directory,
// must not be special files, and must not already exist unless
// overwriteAllowed is set — that check runs here, before any temporary file
// exists, so there is no window between check and use at the final path.
func (g *Guard) Validate(path string, role Role, overwriteAllowed bool) (ValidatedPath, error) {
	if strings.TrimSpace(path) == "" {
		return ValidatedPath{}, &SecurityError{Kind: KindNotFound, Path: path, Detail: fmt.Sprintf("empty %s path", role)}
	}

	// Traversal segments are advisory: log and continue. Fatality is decided
	// by the resolved-directory check below.
	if hasTraversal(path) {
		g.log.WithFields(logrus.Fields{"path": path, "role": role.String()}).
			Warn("path contains traversal segments")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ValidatedPath{}, &SecurityError{Kind: KindUnresolvable, Path: path, Detail: "cannot resolve path"}
	}

	real, err := resolveReal(abs)
	if err != nil {
		return ValidatedPath{}, &SecurityError{Kind: KindUnresolvable, Path: path, Detail: "cannot resolve symlinks"}
	}

	vp := ValidatedPath{Raw: path, Real: real, Redirected: real != filepath.Clean(abs)}
	if vp.Redirected {
		g.log.WithFields(logrus.Fields{"path": path, "resolved": real}).
			Warn("symlink resolution redirected path")
	}

	switch role {
	case RoleInput:
		return vp, g.checkInput(vp)
	default:
		return vp, g.checkOutput(vp, overwriteAllowed)
	}
}

func (g *Guard) checkInput(vp ValidatedPath) error {
	fi, err := os.Stat(vp.Real)
	if err != nil {
		return &SecurityError{Kind: KindNotFound, Path: vp.Raw, Real: vp.Real, Detail: "input file not found"}
	}
	if !fi.Mode().IsRegular() {
		return &SecurityError{Kind: KindSpecialFile, Path: vp.Raw, Real: vp.Real, Detail: "input is not a regular file"}
	}
	return nil
}

func (g *Guard) checkOutput(vp ValidatedPath, overwriteAllowed bool) error {
	if dir := g.matchProtected(vp.Real); dir != "" {
		return &SecurityError{
			Kind:   KindProtectedDir,
			Path:   vp.Raw,
			Real:   vp.Real,
			Detail: fmt.Sprintf("output resolves inside protected directory %s", dir),
		}
	}

	fi, err := os.Lstat(vp.Real)
	if err != nil {
		// Not existing yet is the normal case for an output.
		return nil
	}
	if !fi.Mode().IsRegular() {
		return &SecurityError{Kind: KindSpecialFile, Path: vp.Raw, Real: vp.Real, Detail: "output target is not a regular file"}
	}
	if !overwriteAllowed {
		return &SecurityError{Kind: KindWouldOverwrite, Path: vp.Raw, Real: vp.Real, Detail: "output file already exists (pass overwrite to replace)"}
	}
	return nil
}

// matchProtected returns the protected directory that contains (or equals)
// real, or "" when none matches. A file directly in a bare filesystem root
// is also protected.
func (g *Guard) matchProtected(real string) string {
	sep := string(filepath.Separator)
	for _, d := range g.deny {
		if pathsEqual(real, d) || pathHasPrefix(real, d+sep) {
			return d
		}
	}
	if parent := filepath.Dir(real); isBareRoot(parent) {
		return parent
	}
	return ""
}

// pathsEqual compares paths with the filesystem's case rules: Windows paths
// are case-insensitive, so the deny check must not depend on the casing the
// user typed.
func pathsEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func pathHasPrefix(path, prefix string) bool {
	return len(path) >= len(prefix) && pathsEqual(path[:len(prefix)], prefix)
}

// resolveReal canonicalizes a path that may not exist yet: symlinks are
// resolved on the deepest existing ancestor and the remaining segments are
// re-joined. An existing path resolves directly.
func resolveReal(abs string) (string, error) {
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}

	dir := abs
	var tail []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the root without finding an existing ancestor.
			return filepath.Clean(abs), nil
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		dir = parent
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{real}, tail...)...), nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}
}

// hasTraversal reports whether any raw path segment is "..". The check runs
// on the user-supplied string, before Clean folds the segments away.
func hasTraversal(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// defaultDenyList returns the OS-specific protected directories.
func defaultDenyList() []string {
	if runtime.GOOS == "windows" {
		sys := os.Getenv("SystemRoot")
		if sys == "" {
			sys = `C:\Windows`
		}
		return []string{
			sys,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
		}
	}
	return []string{
		"/bin", "/boot", "/dev", "/etc", "/lib", "/lib64",
		"/proc", "/root", "/run", "/sbin", "/sys", "/usr", "/var",
	}
}

// isBareRoot reports whether path is a filesystem root ("/" or a Windows
// drive root). Writing directly into a root is denied.
func isBareRoot(path string) bool {
	if path == "/" {
		return true
	}
	if runtime.GOOS == "windows" && len(path) <= 3 && len(path) >= 2 && path[1] == ':' {
		return true
	}
	return false
}
