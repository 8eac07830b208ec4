package pipeline

import "github.com/vidsqueeze/vidsqueeze/internal/encoder"

// Sink receives progress and results for rendering or export. The pipeline
// has no formatting responsibility of its own; frames are forwarded as they
// are parsed and never retained.
type Sink interface {
	JobStarted(job CompressionJob, index, total int)
	Progress(job CompressionJob, frame encoder.Frame)
	JobFinished(result JobResult)
	BatchFinished(summary Summary, results []JobResult)
}

// NopSink discards everything. Useful as a default and in tests.
type NopSink struct{}

func (NopSink) JobStarted(CompressionJob, int, int)    {}
func (NopSink) Progress(CompressionJob, encoder.Frame) {}
func (NopSink) JobFinished(JobResult)                  {}
func (NopSink) BatchFinished(Summary, []JobResult)     {}
