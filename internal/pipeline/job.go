// Package pipeline composes validation, encoding, and output commit into
// per-file jobs and orchestrates batches of them.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/vidsqueeze/vidsqueeze/internal/plan"
)

// CompressionJob is one unit of work: a single input file, its resolved
// output path, and the settings to apply. Owned exclusively by the runner
// executing it.
type CompressionJob struct {
	ID         uuid.UUID
	InputPath  string
	OutputPath string
	Settings   *plan.EncodeSettings
}
