package driving

import (
	"context"
	"time"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
)

// PruneOptions selects which attachments a pruning pass removes.
type PruneOptions struct {
	// Before is the cutoff: only attachments added strictly before it are
	// candidates.
	Before time.Time

	// CollectionKey restricts pruning to one collection. Empty means the
	// whole library.
	CollectionKey string

	// ContentType restricts pruning to one MIME type.
	// Defaults to "application/pdf".
	ContentType string

	// DryRun reports what would be deleted without deleting.
	DryRun bool
}

// Curator exposes the maintenance operations: inspecting recent items and
// pruning stale attachments.
type Curator interface {
	// ListItems returns the newest items matching the query.
	ListItems(ctx context.Context, q driven.ItemQuery) ([]domain.Record, error)

	// ShowItem fetches one item together with its child notes.
	ShowItem(ctx context.Context, key string) (domain.Record, []domain.Note, error)

	// PruneAttachments removes matching attachments and reports counts.
	PruneAttachments(ctx context.Context, opts PruneOptions) (domain.PruneReport, error)
}
