package display

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidsqueeze/vidsqueeze/internal/pipeline"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"typical file 700 MiB", 734003200, "700.0 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatBytesWithSign(t *testing.T) {
	assert.Equal(t, "+ 1.0 MiB", FormatBytesWithSign(1024*1024))
	assert.Equal(t, "- 1.0 MiB", FormatBytesWithSign(-1024*1024))
	assert.Equal(t, "0 B", FormatBytesWithSign(0))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"sub-minute", 3400 * time.Millisecond, "3.4s"},
		{"minutes", 2*time.Minute + 3*time.Second, "2m03s"},
		{"hours", time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
		{"negative clamps", -time.Second, "0.0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestJSONSinkReport(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)

	ok := pipeline.JobResult{
		Job: pipeline.CompressionJob{
			ID: uuid.New(), InputPath: "a.mp4", OutputPath: "a_compressed.mp4",
		},
		Outcome:        pipeline.OutcomeSuccess,
		OriginalSize:   1000,
		CompressedSize: 400,
		Elapsed:        2 * time.Second,
	}
	bad := pipeline.JobResult{
		Job:          pipeline.CompressionJob{ID: uuid.New(), InputPath: "b.mp4"},
		Outcome:      pipeline.OutcomeFailed,
		OriginalSize: 900,
		Err:          errors.New("simulated encode failure"),
	}
	summary := pipeline.Summary{
		Processed: 2, Succeeded: 1, Failed: 1,
		TotalInputBytes: 1000, TotalOutputBytes: 400,
		Elapsed: 3 * time.Second,
	}

	sink.BatchFinished(summary, []pipeline.JobResult{ok, bad})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	jobs := got["jobs"].([]any)
	require.Len(t, jobs, 2)

	first := jobs[0].(map[string]any)
	assert.Equal(t, "success", first["outcome"])
	assert.Equal(t, "a_compressed.mp4", first["output"])
	assert.Equal(t, float64(400), first["compressed_size"])

	second := jobs[1].(map[string]any)
	assert.Equal(t, "failed", second["outcome"])
	assert.Equal(t, "simulated encode failure", second["error"])
	_, hasOutput := second["output"]
	assert.False(t, hasOutput, "failed jobs have no output path")

	sum := got["summary"].(map[string]any)
	assert.Equal(t, float64(600), sum["bytes_saved"])
}
