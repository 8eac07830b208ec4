// Package encoder locates the external ffmpeg binary, supervises its
// process lifetime, and turns its diagnostic stream into structured
// progress frames.
package encoder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// versionSignature must appear in `-version` output for a candidate binary
// to pass verification.
const versionSignature = "ffmpeg version"

// Source records which resolution step produced the encoder path.
type Source int

const (
	SourceConfigured Source = iota
	SourceBundled
	SourceSearchPath
)

func (s Source) String() string {
	switch s {
	case SourceConfigured:
		return "configured"
	case SourceBundled:
		return "bundled"
	default:
		return "search path"
	}
}

// Resolved is a usable encoder location plus the ffprobe binary that goes
// with it.
type Resolved struct {
	FFmpeg  string
	FFprobe string
	Source  Source
}

// ResolutionError means no usable encoder was found. Configured is non-empty
// when an explicitly configured path was the (fatal) failure.
type ResolutionError struct {
	Configured string
	Detail     string
}

func (e *ResolutionError) Error() string {
	if e.Configured != "" {
		return fmt.Sprintf("configured encoder %s: %s", e.Configured, e.Detail)
	}
	return e.Detail
}

// Resolve locates the encoder. Priority: an explicitly configured path (fatal
// if unusable, no fall-through), a bundled binary beside the running
// executable (verified with -version when verifyBundled is set), then the
// search path, which is accepted but logged as lower trust.
func Resolve(log *logrus.Logger, configured string, verifyBundled bool) (*Resolved, error) {
	if configured != "" {
		if err := usable(configured); err != nil {
			return nil, &ResolutionError{Configured: configured, Detail: err.Error()}
		}
		return resolved(configured, SourceConfigured), nil
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), binaryName("ffmpeg"))
		if usable(candidate) == nil {
			if !verifyBundled || verifySignature(candidate) == nil {
				return resolved(candidate, SourceBundled), nil
			}
			log.WithField("path", candidate).Warn("bundled encoder failed version verification, ignoring")
		}
	}

	if path, err := exec.LookPath(binaryName("ffmpeg")); err == nil {
		log.WithField("path", path).Warn("using encoder from search path (lower trust than a configured or bundled binary)")
		return resolved(path, SourceSearchPath), nil
	}

	return nil, &ResolutionError{Detail: "no usable ffmpeg binary found (configure one, bundle it beside the executable, or install it on the search path)"}
}

// VerifySignature runs the candidate with -version and checks for the ffmpeg
// banner. Exposed for check mode.
func VerifySignature(path string) error { return verifySignature(path) }

func verifySignature(path string) error {
	out, err := exec.Command(path, "-version").Output()
	if err != nil {
		return fmt.Errorf("run %s -version: %w", path, err)
	}
	if !strings.Contains(string(out), versionSignature) {
		return fmt.Errorf("%s -version output lacks the %q signature", path, versionSignature)
	}
	return nil
}

// usable reports whether path names an existing regular file.
func usable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("not found")
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}
	return nil
}

// resolved pairs the chosen ffmpeg with an ffprobe: the sibling binary when
// one exists, else whatever the search path offers.
func resolved(ffmpeg string, src Source) *Resolved {
	probe := filepath.Join(filepath.Dir(ffmpeg), binaryName("ffprobe"))
	if usable(probe) != nil {
		if found, err := exec.LookPath(binaryName("ffprobe")); err == nil {
			probe = found
		} else {
			probe = binaryName("ffprobe")
		}
	}
	return &Resolved{FFmpeg: ffmpeg, FFprobe: probe, Source: src}
}

func binaryName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
