// Package output owns the temporary-to-final lifecycle of an encode target.
// The encoder always writes to a staged temporary file in the same directory
// as the final path, so the commit is a same-filesystem rename and a crashed
// or cancelled job can never leave a partial file at the final destination.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// tempPattern names staged files so stray ones are recognizable after a
// hard crash: .vsq-<random>.tmp next to the final path.
const tempPattern = ".vsq-*.tmp"

type stageState int

const (
	stateStaged stageState = iota
	stateCommitted
	stateCommitFailed
	stateDiscarded
)

// Staged is an exclusively owned temporary output. Exactly one of Commit or
// Discard decides its fate; Discard after a Commit (in either outcome) is a
// no-op, which lets callers hold it under defer as the unconditional
// cleanup path.
type Staged struct {
	FinalPath string
	TempPath  string
	state     stageState
}

// CommitError reports a failed rename after a successful encode. The
// temporary file is preserved (never silently dropped) and its path is part
// of the error.
type CommitError struct {
	FinalPath string
	TempPath  string
	Err       error
}

func (e *CommitError) Error() string {
	if errors.Is(e.Err, syscall.EXDEV) {
		return fmt.Sprintf("cannot commit %s: temporary and final paths are on different filesystems (output preserved at %s); configure the output on the same volume", e.FinalPath, e.TempPath)
	}
	return fmt.Sprintf("cannot commit %s (output preserved at %s): %v", e.FinalPath, e.TempPath, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Stage creates the temporary file colocated with finalPath and returns the
// handle owning it. The final path itself is not touched.
func Stage(finalPath string) (*Staged, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("stage temporary output in %s: %w", dir, err)
	}
	tmp := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("stage temporary output: %w", err)
	}

	return &Staged{FinalPath: finalPath, TempPath: tmp}, nil
}

// Commit renames the temporary file into the final path. On failure the
// temporary file is preserved and a *CommitError returned; Discard will not
// delete it afterwards.
func (s *Staged) Commit() error {
	if s.state != stateStaged {
		return fmt.Errorf("commit %s: output already finalized", s.FinalPath)
	}
	if err := os.Rename(s.TempPath, s.FinalPath); err != nil {
		s.state = stateCommitFailed
		return &CommitError{FinalPath: s.FinalPath, TempPath: s.TempPath, Err: err}
	}
	s.state = stateCommitted
	return nil
}

// Discard deletes the temporary file unless a commit already decided its
// fate. Safe to call multiple times and from defer on every exit path.
func (s *Staged) Discard() {
	if s.state != stateStaged {
		return
	}
	s.state = stateDiscarded
	os.Remove(s.TempPath)
}

// Committed reports whether the output reached its final path.
func (s *Staged) Committed() bool { return s.state == stateCommitted }
