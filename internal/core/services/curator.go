package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/core/ports/driving"
	"github.com/zotcast/zotcast/internal/logx"
)

// defaultPruneContentType selects PDF attachments when the prune command
// does not name a type.
const defaultPruneContentType = "application/pdf"

// Ensure Curator implements the interface.
var _ driving.Curator = (*Curator)(nil)

// Curator implements the maintenance operations: inspecting recent items
// and pruning stale attachments. Parent items are never deleted, only
// their attachment children.
type Curator struct {
	library driven.Library
	admin   driven.LibraryAdmin
	log     logx.Logger
}

// NewCurator creates a curator over the two library facets. Both are
// usually the same client.
func NewCurator(library driven.Library, admin driven.LibraryAdmin, log logx.Logger) *Curator {
	return &Curator{library: library, admin: admin, log: log}
}

// ListItems returns the newest items matching the query.
func (c *Curator) ListItems(ctx context.Context, q driven.ItemQuery) ([]domain.Record, error) {
	return c.admin.ListItems(ctx, q)
}

// ShowItem fetches one item together with its child notes.
func (c *Curator) ShowItem(ctx context.Context, key string) (domain.Record, []domain.Note, error) {
	rec, err := c.admin.GetItem(ctx, key)
	if err != nil {
		return domain.Record{}, nil, fmt.Errorf("get item %s: %w", key, err)
	}
	notes, err := c.library.ChildNotes(ctx, key)
	if err != nil {
		return domain.Record{}, nil, fmt.Errorf("list notes of %s: %w", key, err)
	}
	return rec, notes, nil
}

// PruneAttachments walks the selected items and removes attachments of the
// configured type added strictly before the cutoff. Unreadable children
// and rejected deletes are counted and skipped; the pass continues.
func (c *Curator) PruneAttachments(ctx context.Context, opts driving.PruneOptions) (domain.PruneReport, error) {
	if opts.ContentType == "" {
		opts.ContentType = defaultPruneContentType
	}

	parents, err := c.admin.ListItems(ctx, driven.ItemQuery{
		CollectionKey: opts.CollectionKey,
		ItemType:      "-attachment",
	})
	if err != nil {
		return domain.PruneReport{}, fmt.Errorf("list items: %w", err)
	}

	var report domain.PruneReport
	for i := range parents {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		atts, err := c.admin.ChildAttachments(ctx, parents[i].Key)
		if err != nil {
			c.log.Warn("skipping item, attachments unreadable",
				logx.String("key", parents[i].Key),
				logx.Err(err))
			continue
		}

		for _, att := range atts {
			if !c.pruneCandidate(att, opts) {
				continue
			}
			report.Matched++

			if opts.DryRun {
				c.log.Info("would delete attachment",
					logx.String("key", att.Key),
					logx.String("title", att.Title),
					logx.String("added", att.DateAdded))
				continue
			}
			if err := c.admin.DeleteItem(ctx, att.Key, att.Version); err != nil {
				report.Failed++
				c.log.Error("attachment delete failed",
					logx.String("key", att.Key),
					logx.Err(err))
				continue
			}
			report.Deleted++
			c.log.Info("attachment deleted",
				logx.String("key", att.Key),
				logx.String("title", att.Title))
		}
	}

	return report, nil
}

// pruneCandidate reports whether att matches the prune criteria: the right
// content type (PDFs also match on filename), a parsable creation date and
// an age beyond the cutoff.
func (c *Curator) pruneCandidate(att domain.Attachment, opts driving.PruneOptions) bool {
	match := att.ContentType == opts.ContentType
	if !match && opts.ContentType == defaultPruneContentType {
		match = strings.HasSuffix(strings.ToLower(att.Filename), ".pdf")
	}
	if !match {
		return false
	}

	added, err := domain.ParseTime(att.DateAdded)
	if err != nil {
		c.log.Warn("keeping attachment with unparsable date",
			logx.String("key", att.Key),
			logx.Err(err))
		return false
	}
	return added.Before(opts.Before)
}
