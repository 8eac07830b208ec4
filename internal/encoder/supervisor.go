package encoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultGrace is how long a cancelled encoder gets to exit after the
// termination signal before it is killed.
const DefaultGrace = 5 * time.Second

// tailLines is how many diagnostic lines are retained as failure detail.
const tailLines = 20

// ErrCancelled is the terminal outcome of a cancelled run. It is distinct
// from failure; callers must not fold it into ProcessError handling.
var ErrCancelled = errors.New("encode cancelled")

// State tracks the supervised process through its lifetime.
type State int

const (
	StateIdle State = iota
	StateSpawning
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpawning:
		return "spawning"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

// ProcessError reports a spawn failure, a non-zero exit, or a stream read
// failure, with the tail of the diagnostic stream as context.
type ProcessError struct {
	ExitCode int // -1 when the process never ran or was signalled
	Tail     []string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("encoder failed: %v", e.Err)
	if len(e.Tail) > 0 {
		msg += "\n" + strings.Join(e.Tail, "\n")
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Supervisor runs one encoder process at a time and owns its lifetime. A
// Supervisor is not safe for concurrent Run calls.
type Supervisor struct {
	bin   string
	grace time.Duration
	log   *logrus.Logger
	state State
}

// NewSupervisor returns a supervisor for the given encoder binary. grace <= 0
// selects DefaultGrace.
func NewSupervisor(bin string, grace time.Duration, log *logrus.Logger) *Supervisor {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Supervisor{bin: bin, grace: grace, log: log, state: StateIdle}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State { return s.state }

// Run executes the encoder with args, feeding every diagnostic line to
// onLine as it arrives. The stream is drained to EOF before the exit status
// is finalized, so no late lines are dropped. On context cancellation the
// process gets a termination signal and, after the grace period, a kill;
// Run then returns ErrCancelled. Any other failure returns a *ProcessError
// carrying the last lines of the stream.
func (s *Supervisor) Run(ctx context.Context, args []string, onLine func(string)) error {
	s.state = StateSpawning

	cmd := exec.CommandContext(ctx, s.bin, args...)
	cmd.Cancel = func() error {
		if runtime.GOOS == "windows" {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = s.grace

	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.state = StateFailed
		return &ProcessError{ExitCode: -1, Err: fmt.Errorf("attach diagnostic stream: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			s.state = StateCancelled
			return ErrCancelled
		}
		s.state = StateFailed
		return &ProcessError{ExitCode: -1, Err: fmt.Errorf("spawn %s: %w", s.bin, err)}
	}
	s.state = StateRunning
	s.log.WithFields(logrus.Fields{"pid": cmd.Process.Pid, "bin": s.bin}).Debug("encoder started")

	var tail []string
	var readErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		sc := bufio.NewScanner(stderr)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		sc.Split(scanDiagnosticLines)
		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				continue
			}
			tail = append(tail, line)
			if len(tail) > tailLines {
				tail = tail[1:]
			}
			if onLine != nil {
				onLine(line)
			}
		}
		readErr = sc.Err()
	}()

	// Wait must run first: with WaitDelay set it closes the pipes once the
	// grace period expires, which unblocks the reader when the process (or a
	// child that inherited the stream) lingers after cancellation. Joining
	// the reader before inspecting the outcome keeps the drain-before-status
	// guarantee: on a normal exit the stream hits EOF when the process dies,
	// so no late lines are dropped.
	waitErr := cmd.Wait()
	<-done

	if ctx.Err() != nil {
		s.state = StateCancelled
		return ErrCancelled
	}
	if waitErr != nil {
		s.state = StateFailed
		code := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ProcessError{ExitCode: code, Tail: tail, Err: waitErr}
	}
	if readErr != nil {
		s.state = StateFailed
		return &ProcessError{ExitCode: 0, Tail: tail, Err: fmt.Errorf("read diagnostic stream: %w", readErr)}
	}

	s.state = StateCompleted
	return nil
}

// scanDiagnosticLines splits on \n, \r\n, and bare \r. The encoder rewrites
// its stats line in place with \r, so a newline-only split would sit on one
// growing token until exit.
func scanDiagnosticLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		adv := i + 1
		if data[i] == '\r' {
			if adv == len(data) && !atEOF {
				// Could be the first half of \r\n; wait for more input.
				return 0, nil, nil
			}
			if adv < len(data) && data[adv] == '\n' {
				adv++
			}
		}
		return adv, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
