package display

import (
	"encoding/json"
	"io"

	"github.com/vidsqueeze/vidsqueeze/internal/encoder"
	"github.com/vidsqueeze/vidsqueeze/internal/pipeline"
)

// JSONSink exports per-job results and the batch summary as one JSON
// document on w once the batch finishes. Progress frames are not exported.
type JSONSink struct {
	w io.Writer
}

// NewJSONSink returns a sink writing the batch report to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w}
}

func (*JSONSink) JobStarted(pipeline.CompressionJob, int, int)    {}
func (*JSONSink) Progress(pipeline.CompressionJob, encoder.Frame) {}
func (*JSONSink) JobFinished(pipeline.JobResult)                  {}

type jsonJob struct {
	ID             string  `json:"id"`
	Input          string  `json:"input"`
	Output         string  `json:"output,omitempty"`
	Outcome        string  `json:"outcome"`
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

type jsonReport struct {
	Jobs    []jsonJob   `json:"jobs"`
	Summary jsonSummary `json:"summary"`
}

type jsonSummary struct {
	Processed        int     `json:"processed"`
	Succeeded        int     `json:"succeeded"`
	Failed           int     `json:"failed"`
	Cancelled        int     `json:"cancelled"`
	TotalInputBytes  int64   `json:"total_input_bytes"`
	TotalOutputBytes int64   `json:"total_output_bytes"`
	BytesSaved       int64   `json:"bytes_saved"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
}

func (j *JSONSink) BatchFinished(s pipeline.Summary, results []pipeline.JobResult) {
	report := jsonReport{
		Jobs: make([]jsonJob, 0, len(results)),
		Summary: jsonSummary{
			Processed:        s.Processed,
			Succeeded:        s.Succeeded,
			Failed:           s.Failed,
			Cancelled:        s.Cancelled,
			TotalInputBytes:  s.TotalInputBytes,
			TotalOutputBytes: s.TotalOutputBytes,
			BytesSaved:       s.BytesSaved(),
			ElapsedSeconds:   s.Elapsed.Seconds(),
		},
	}
	for _, r := range results {
		job := jsonJob{
			ID:             r.Job.ID.String(),
			Input:          r.Job.InputPath,
			Outcome:        r.Outcome.String(),
			OriginalSize:   r.OriginalSize,
			ElapsedSeconds: r.Elapsed.Seconds(),
		}
		if r.Success() {
			job.Output = r.Job.OutputPath
			job.CompressedSize = r.CompressedSize
		}
		if r.Err != nil {
			job.Error = r.Err.Error()
		}
		report.Jobs = append(report.Jobs, job)
	}

	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
