package driven

import (
	"context"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// StateStore persists the watermark table. The table is the pipeline's only
// durable state: one row per watched collection.
type StateStore interface {
	// Load reads all rows. A missing file or a missing required column is
	// a configuration error and must fail, not return an empty table.
	Load(ctx context.Context) ([]domain.WatermarkRow, error)

	// Save atomically rewrites the whole table. Row order, column order
	// and unknown columns are preserved; timestamps are written in the
	// trailing-Z spelling.
	Save(ctx context.Context, rows []domain.WatermarkRow) error

	// Path returns the backing file location, for display and for the
	// remote transfer commands.
	Path() string
}

// StateTransfer moves the state file between the local path and its remote
// home. Invoked only by explicit CLI commands, never by the pipeline run.
type StateTransfer interface {
	// Pull downloads the remote copy.
	Pull(ctx context.Context) ([]byte, error)

	// Push uploads data as the new remote copy.
	Push(ctx context.Context, data []byte) error
}
