package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vidsqueeze/vidsqueeze/internal/encoder"
	"github.com/vidsqueeze/vidsqueeze/internal/pipeline"
)

// ConsoleSink renders progress interactively: a carriage-return progress
// line per job on w, lifecycle events through the logger.
type ConsoleSink struct {
	w          io.Writer
	log        *logrus.Logger
	lineActive bool
}

// NewConsoleSink returns a sink writing progress lines to w.
func NewConsoleSink(w io.Writer, log *logrus.Logger) *ConsoleSink {
	return &ConsoleSink{w: w, log: log}
}

func (c *ConsoleSink) JobStarted(job pipeline.CompressionJob, index, total int) {
	c.log.Infof("[%d/%d] %s", index, total, filepath.Base(job.InputPath))
}

func (c *ConsoleSink) Progress(_ pipeline.CompressionJob, f encoder.Frame) {
	line := "  " + FormatDuration(f.Elapsed)
	if f.HasPercent {
		line = "  " + FormatPercent(f.Percent) + line
	}
	if f.HasFPS {
		line += fmt.Sprintf("  %.0f fps", f.FPS)
	}
	if f.HasETA {
		line += "  ETA " + FormatDuration(f.ETA)
	}
	// Rewrite in place; the trailing spaces clear a previously longer line.
	fmt.Fprintf(c.w, "\r%s        ", line)
	c.lineActive = true
}

func (c *ConsoleSink) JobFinished(r pipeline.JobResult) {
	c.endProgressLine()
	switch r.Outcome {
	case pipeline.OutcomeSuccess:
		c.log.WithFields(logrus.Fields{
			"original":   FormatBytes(r.OriginalSize),
			"compressed": FormatBytes(r.CompressedSize),
			"saved":      FormatBytesWithSign(r.CompressedSize - r.OriginalSize),
			"took":       FormatDuration(r.Elapsed),
		}).Infof("done: %s", filepath.Base(r.Job.OutputPath))
	case pipeline.OutcomeCancelled:
		c.log.Warnf("cancelled: %s", filepath.Base(r.Job.InputPath))
	default:
		c.log.Errorf("failed: %s: %v", filepath.Base(r.Job.InputPath), r.Err)
	}
}

func (c *ConsoleSink) BatchFinished(s pipeline.Summary, _ []pipeline.JobResult) {
	c.endProgressLine()
	c.log.WithFields(logrus.Fields{
		"processed": s.Processed,
		"succeeded": s.Succeeded,
		"failed":    s.Failed,
		"cancelled": s.Cancelled,
		"saved":     FormatBytesWithSign(s.TotalOutputBytes - s.TotalInputBytes),
		"took":      FormatDuration(s.Elapsed),
	}).Info("batch finished")
}

func (c *ConsoleSink) endProgressLine() {
	if c.lineActive {
		fmt.Fprintln(c.w)
		c.lineActive = false
	}
}
