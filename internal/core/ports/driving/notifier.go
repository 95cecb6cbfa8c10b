package driving

import (
	"context"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// RunOptions controls one pipeline run.
type RunOptions struct {
	// DryRun performs detection and rendering but suppresses all delivery
	// and leaves the state file untouched.
	DryRun bool
}

// Notifier drives the full pipeline: load state, detect changes per
// collection, render, deliver, advance watermarks, persist.
type Notifier interface {
	// Run executes one sequential pass over all state rows. Detection and
	// configuration failures abort with an error; delivery failures are
	// absorbed into the report.
	Run(ctx context.Context, opts RunOptions) (domain.RunReport, error)
}
