package domain

import (
	"fmt"
	"strings"
	"time"
)

// Record is an immutable snapshot of one bibliographic item as received from
// the source library. The pipeline never writes records back; ownership stays
// with the source system.
//
// DateAdded and DateModified are kept as the raw timestamp strings from the
// wire so that malformed values can be skipped per-record during detection
// instead of failing the whole fetch.
type Record struct {
	// Key is the source library's identifier for the item.
	Key string

	// Version is the source library's modification counter, required for
	// conditional writes (attachment pruning).
	Version int

	// Title is the item title.
	Title string

	// ItemType is the source's type tag (e.g., "journalArticle", "preprint").
	ItemType string

	// Creators lists the item's authors in source order.
	Creators []Creator

	// PublicationTitle is the full venue name.
	PublicationTitle string

	// JournalAbbreviation is the short venue name used for journal articles.
	JournalAbbreviation string

	// Date is the free-form publication date string (not a timestamp).
	Date string

	// DOI is the item's DOI, without scheme or resolver prefix.
	DOI string

	// URL is the item's canonical URL if the source holds one.
	URL string

	// AddedBy is the username of the library member who added the item.
	AddedBy string

	// AlternateLink is the item's web view URL ("view on Zotero").
	AlternateLink string

	// DateAdded is the raw creation timestamp string from the source.
	DateAdded string

	// DateModified is the raw modification timestamp string from the source.
	DateModified string

	// NumChildren is the source-reported child count (notes + attachments).
	// Display-only; detection always fetches the children it needs.
	NumChildren int
}

// OwnDate returns the record's effective change timestamp: the modification
// date when present, otherwise the creation date. Both fields malformed (or
// absent) yields ErrRecordDateInvalid.
func (r *Record) OwnDate() (time.Time, error) {
	return effectiveDate(r.DateModified, r.DateAdded)
}

// Creator is one author entry. The source delivers either a split
// given/family pair or a single-field display name, never both.
type Creator struct {
	// GivenName is the author's given (first) name.
	GivenName string

	// FamilyName is the author's family (last) name.
	FamilyName string

	// DisplayName is the single-field form used for institutional authors.
	DisplayName string
}

// Label returns the creator's display form: "Given Family" for split names,
// the display name otherwise. Empty creators yield an empty label.
func (c Creator) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	parts := make([]string, 0, 2)
	if c.GivenName != "" {
		parts = append(parts, c.GivenName)
	}
	if c.FamilyName != "" {
		parts = append(parts, c.FamilyName)
	}
	return strings.Join(parts, " ")
}

// Note is a snapshot of one child note attached to a record.
type Note struct {
	// Key is the source library's identifier for the note.
	Key string

	// HTML is the raw note body as stored by the source (HTML fragment).
	HTML string

	// DateAdded is the raw creation timestamp string from the source.
	DateAdded string

	// DateModified is the raw modification timestamp string from the source.
	DateModified string
}

// OwnDate returns the note's effective change timestamp, mirroring
// Record.OwnDate.
func (n *Note) OwnDate() (time.Time, error) {
	return effectiveDate(n.DateModified, n.DateAdded)
}

// effectiveDate returns the later of the two timestamps, falling back to the
// added date when the modified one is absent. A present-but-unparsable value
// is an error: corrupt data excludes the record rather than guessing.
func effectiveDate(modified, added string) (time.Time, error) {
	var latest time.Time
	var seen bool
	for _, raw := range []string{modified, added} {
		if raw == "" {
			continue
		}
		t, err := ParseTime(raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrRecordDateInvalid, raw)
		}
		if !seen || t.After(latest) {
			latest = t
			seen = true
		}
	}
	if !seen {
		return time.Time{}, fmt.Errorf("%w: both timestamps empty", ErrRecordDateInvalid)
	}
	return latest, nil
}
