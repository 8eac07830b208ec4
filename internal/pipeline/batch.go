package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vidsqueeze/vidsqueeze/internal/config"
	"github.com/vidsqueeze/vidsqueeze/internal/encoder"
	"github.com/vidsqueeze/vidsqueeze/internal/pathguard"
	"github.com/vidsqueeze/vidsqueeze/internal/plan"
)

// Orchestrator expands inputs into jobs and runs them sequentially, one
// encoder process at a time, with per-job failure isolation.
type Orchestrator struct {
	cfg    *config.Config
	runner *Runner
	log    *logrus.Logger
	sink   Sink
}

// NewOrchestrator resolves the encoder once and wires the runner. Encoder
// resolution failure is returned here: it would fail every job identically,
// so there is no point starting the batch.
func NewOrchestrator(cfg *config.Config, log *logrus.Logger, sink Sink) (*Orchestrator, error) {
	if sink == nil {
		sink = NopSink{}
	}

	enc, err := encoder.Resolve(log, cfg.FFmpegPath, cfg.VerifyEncoder)
	if err != nil {
		return nil, err
	}

	guard := pathguard.New(log, cfg.ExtraProtectedDirs...)
	runner := NewRunner(guard, enc, encoder.NewPatternCache(), cfg.KillGrace(), cfg.Overwrite, log, sink)

	return &Orchestrator{cfg: cfg, runner: runner, log: log, sink: sink}, nil
}

// Run expands the configured inputs, executes each job, and folds the
// results into a summary. Results keep submission order. On cancellation
// the in-flight job is cancelled through its supervisor and no further jobs
// start; completed jobs stay in the summary.
func (o *Orchestrator) Run(ctx context.Context) (Summary, []JobResult, error) {
	start := time.Now()

	jobs, err := o.expand()
	if err != nil {
		return Summary{}, nil, err
	}

	var summary Summary
	results := make([]JobResult, 0, len(jobs))

	for i, job := range jobs {
		if ctx.Err() != nil {
			o.log.Warn("batch interrupted, skipping remaining jobs")
			break
		}

		o.sink.JobStarted(job, i+1, len(jobs))
		res := o.runner.RunJob(ctx, job)
		o.sink.JobFinished(res)

		results = append(results, res)
		summary.add(res)
	}

	summary.Elapsed = time.Since(start)
	o.sink.BatchFinished(summary, results)
	return summary, results, nil
}

// expand turns the configured inputs into concrete jobs with resolved
// output paths. All expansion happens before the first job runs.
func (o *Orchestrator) expand() ([]CompressionJob, error) {
	files, err := ExpandInputs(o.cfg.Inputs)
	if err != nil {
		return nil, err
	}

	settings, err := o.cfg.Settings()
	if err != nil {
		return nil, err
	}

	jobs := make([]CompressionJob, 0, len(files))
	for _, f := range files {
		out := o.cfg.Output
		if out == "" {
			out = plan.DefaultOutputPath(f, settings.Format)
		}
		jobs = append(jobs, CompressionJob{
			ID:         uuid.New(),
			InputPath:  f,
			OutputPath: out,
			Settings:   settings,
		})
	}
	return jobs, nil
}
