package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// Detector finds records changed since a collection's watermark. Detection
// is two-tiered: a record is changed when its own effective date moved past
// the watermark, or failing that, when one of its child notes did. The
// second tier is what makes annotation activity on an otherwise untouched
// record trigger re-notification.
type Detector struct {
	library driven.Library
	log     logx.Logger
}

// NewDetector creates a change detector reading from library.
func NewDetector(library driven.Library, log logx.Logger) *Detector {
	return &Detector{library: library, log: log}
}

// Changes returns the collection's records changed strictly after since,
// most recent first as listed by the source. Records with unparsable dates
// are excluded with a warning; source errors are returned, because a
// collection that cannot be read must abort the run rather than silently
// yield an empty batch.
func (d *Detector) Changes(ctx context.Context, collectionID string, since time.Time) ([]domain.ChangeSet, error) {
	records, err := d.library.ListCollectionItems(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list collection %s: %w", collectionID, err)
	}

	var changes []domain.ChangeSet
	for i := range records {
		rec := records[i]

		ownDate, err := rec.OwnDate()
		if err != nil {
			d.log.Warn("excluding record with unparsable dates",
				logx.String("collection", collectionID),
				logx.String("key", rec.Key),
				logx.Err(err))
			continue
		}
		if ownDate.After(since) {
			changes = append(changes, domain.ChangeSet{
				Record:         rec,
				TriggeringDate: ownDate,
				Reason:         domain.TriggerRecordDate,
			})
			continue
		}

		notes, err := d.library.ChildNotes(ctx, rec.Key)
		if err != nil {
			return nil, fmt.Errorf("list notes of %s: %w", rec.Key, err)
		}
		noteDate, ok := d.latestNoteDate(collectionID, notes)
		if ok && noteDate.After(since) {
			changes = append(changes, domain.ChangeSet{
				Record:         rec,
				Notes:          notes,
				TriggeringDate: noteDate,
				Reason:         domain.TriggerNoteDate,
			})
		}
	}

	return changes, nil
}

// latestNoteDate returns the newest effective date across notes. Notes with
// unparsable dates are skipped with a warning; ok is false when no note had
// a usable date.
func (d *Detector) latestNoteDate(collectionID string, notes []domain.Note) (time.Time, bool) {
	var latest time.Time
	var ok bool
	for i := range notes {
		t, err := notes[i].OwnDate()
		if err != nil {
			d.log.Warn("skipping note with unparsable dates",
				logx.String("collection", collectionID),
				logx.String("note", notes[i].Key),
				logx.Err(err))
			continue
		}
		if !ok || t.After(latest) {
			latest = t
			ok = true
		}
	}
	return latest, ok
}
