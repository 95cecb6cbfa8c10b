package driven

import (
	"context"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// Library reads bibliographic data from the source system. Implementations
// own pagination: callers always receive the complete result set.
type Library interface {
	// ListCollectionItems returns the top-level items of a collection,
	// most recently added first.
	ListCollectionItems(ctx context.Context, collectionKey string) ([]domain.Record, error)

	// ChildNotes returns the notes attached to an item. Non-note children
	// (attachments) are filtered out.
	ChildNotes(ctx context.Context, itemKey string) ([]domain.Note, error)
}

// ItemQuery narrows a library-wide item listing.
type ItemQuery struct {
	// CollectionKey restricts the listing to one collection. Empty means
	// the whole library.
	CollectionKey string

	// ItemType filters by source item type. A "-" prefix negates
	// (e.g. "-attachment"). Empty means no filter.
	ItemType string

	// Limit caps the number of items returned. Zero means no cap.
	Limit int
}

// LibraryAdmin extends read access with the inspection and curation
// operations the maintenance commands need.
type LibraryAdmin interface {
	// GetItem fetches a single item by key.
	GetItem(ctx context.Context, key string) (domain.Record, error)

	// ListItems returns the newest items matching the query.
	ListItems(ctx context.Context, q ItemQuery) ([]domain.Record, error)

	// ChildAttachments returns the file attachments of an item.
	ChildAttachments(ctx context.Context, itemKey string) ([]domain.Attachment, error)

	// DeleteItem removes an item. The version guards against concurrent
	// modification; a stale version must fail, not overwrite.
	DeleteItem(ctx context.Context, key string, version int) error
}
