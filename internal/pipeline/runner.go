package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vidsqueeze/vidsqueeze/internal/encoder"
	"github.com/vidsqueeze/vidsqueeze/internal/output"
	"github.com/vidsqueeze/vidsqueeze/internal/pathguard"
	"github.com/vidsqueeze/vidsqueeze/internal/plan"
	"github.com/vidsqueeze/vidsqueeze/internal/probe"
)

// Runner executes single jobs: validate, probe, compile, supervise, commit.
// One Runner is shared across a batch; each RunJob call owns its job and the
// encoder process for its duration.
type Runner struct {
	guard     *pathguard.Guard
	enc       *encoder.Resolved
	patterns  *encoder.PatternCache
	grace     time.Duration
	overwrite bool
	log       *logrus.Logger
	sink      Sink
}

// NewRunner wires a runner from its collaborators.
func NewRunner(guard *pathguard.Guard, enc *encoder.Resolved, patterns *encoder.PatternCache, grace time.Duration, overwrite bool, log *logrus.Logger, sink Sink) *Runner {
	if sink == nil {
		sink = NopSink{}
	}
	return &Runner{
		guard:     guard,
		enc:       enc,
		patterns:  patterns,
		grace:     grace,
		overwrite: overwrite,
		log:       log,
		sink:      sink,
	}
}

// RunJob carries one job through the full pipeline and returns its result.
// Validation failures abort before any process spawns or temp file exists;
// process failures and cancellation leave no file at the final path.
func (r *Runner) RunJob(ctx context.Context, job CompressionJob) JobResult {
	start := time.Now()

	in, err := r.guard.Validate(job.InputPath, pathguard.RoleInput, false)
	if err != nil {
		return r.fail(job, start, 0, err)
	}
	out, err := r.guard.Validate(job.OutputPath, pathguard.RoleOutput, r.overwrite)
	if err != nil {
		return r.fail(job, start, 0, err)
	}

	pr, err := probe.Probe(ctx, r.enc.FFprobe, in.Real)
	if err != nil {
		return r.fail(job, start, 0, fmt.Errorf("probe input: %w", err))
	}
	if !pr.HasVideo() {
		return r.fail(job, start, 0, fmt.Errorf("no video stream in %s", job.InputPath))
	}

	fi, err := os.Stat(in.Real)
	if err != nil {
		return r.fail(job, start, 0, err)
	}
	originalSize := fi.Size()

	argPlan, err := plan.Compile(job.Settings, in.Real, out.Real, pr)
	if err != nil {
		return r.fail(job, start, originalSize, err)
	}

	staged, err := output.Stage(out.Real)
	if err != nil {
		return r.fail(job, start, originalSize, err)
	}
	defer staged.Discard()

	total := time.Duration(argPlan.TotalDuration * float64(time.Second))
	parser := encoder.NewParser(r.patterns, total)
	sup := encoder.NewSupervisor(r.enc.FFmpeg, r.grace, r.log)

	err = sup.Run(ctx, argPlan.ArgsFor(staged.TempPath), func(line string) {
		if frame, ok := parser.ParseLine(line); ok {
			r.sink.Progress(job, frame)
		}
	})
	if errors.Is(err, encoder.ErrCancelled) {
		return JobResult{
			Job:          job,
			Outcome:      OutcomeCancelled,
			OriginalSize: originalSize,
			Elapsed:      time.Since(start),
			Err:          err,
		}
	}
	if err != nil {
		return r.fail(job, start, originalSize, err)
	}

	tfi, err := os.Stat(staged.TempPath)
	if err != nil {
		return r.fail(job, start, originalSize, fmt.Errorf("stat encoded output: %w", err))
	}
	compressedSize := tfi.Size()

	if err := staged.Commit(); err != nil {
		// The temp file is preserved; the error names where it is.
		return r.fail(job, start, originalSize, err)
	}

	return JobResult{
		Job:            job,
		Outcome:        OutcomeSuccess,
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
		Elapsed:        time.Since(start),
	}
}

func (r *Runner) fail(job CompressionJob, start time.Time, originalSize int64, err error) JobResult {
	r.log.WithFields(logrus.Fields{"job": job.ID, "input": job.InputPath}).
		WithError(err).Error("job failed")
	return JobResult{
		Job:          job,
		Outcome:      OutcomeFailed,
		OriginalSize: originalSize,
		Elapsed:      time.Since(start),
		Err:          err,
	}
}
