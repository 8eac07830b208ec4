package pipeline

import "time"

// Outcome is the terminal state of a job. Cancellation is its own outcome,
// never folded into failure.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

// JobResult is the immutable outcome of one CompressionJob.
type JobResult struct {
	Job            CompressionJob
	Outcome        Outcome
	OriginalSize   int64
	CompressedSize int64 // zero unless the job succeeded
	Elapsed        time.Duration
	Err            error // nil on success
}

// Success reports whether the job produced a committed output.
func (r JobResult) Success() bool { return r.Outcome == OutcomeSuccess }

// Summary aggregates a batch of JobResults. Built incrementally; read-only
// once the batch completes.
type Summary struct {
	Processed        int
	Succeeded        int
	Failed           int
	Cancelled        int
	TotalInputBytes  int64
	TotalOutputBytes int64
	Elapsed          time.Duration
}

// BytesSaved is the aggregate size difference across successful jobs.
// Negative means the outputs grew.
func (s *Summary) BytesSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

func (s *Summary) add(r JobResult) {
	s.Processed++
	switch r.Outcome {
	case OutcomeSuccess:
		s.Succeeded++
		s.TotalInputBytes += r.OriginalSize
		s.TotalOutputBytes += r.CompressedSize
	case OutcomeFailed:
		s.Failed++
	case OutcomeCancelled:
		s.Cancelled++
	}
}
