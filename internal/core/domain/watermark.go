package domain

import (
	"fmt"
	"time"
)

// timeLayout is the wire and persistence layout for timestamps. RFC 3339
// covers both offset spellings the state file has historically carried:
// a trailing "Z" and an explicit "+00:00".
const timeLayout = time.RFC3339

// WatermarkRow is one row of the persisted state table: which collection to
// watch, the timestamp of the last processed change, and where to announce
// new ones. Extra carries any columns the table holds beyond the required
// three, so a rewrite never loses operator-added data.
type WatermarkRow struct {
	// CollectionID identifies the watched collection in the source library.
	CollectionID string

	// LastDate is the persisted watermark timestamp, verbatim.
	LastDate string

	// Channel is the chat channel new changes are announced to.
	// Empty means no chat delivery for this row.
	Channel string

	// Extra preserves unknown columns (name to value) across rewrites.
	Extra map[string]string
}

// Since parses the row's watermark. A malformed value aborts the whole run,
// so the error wraps ErrWatermarkMalformed for classification upstream.
func (w *WatermarkRow) Since() (time.Time, error) {
	t, err := ParseTime(w.LastDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: collection %s: %q", ErrWatermarkMalformed, w.CollectionID, w.LastDate)
	}
	return t, nil
}

// ParseTime parses a source or state timestamp. Both UTC spellings are
// accepted ("2024-01-02T03:04:05Z" and "2024-01-02T03:04:05+00:00"); the
// result is normalised to UTC.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatTime renders a timestamp for persistence. Always UTC with a trailing
// "Z": the "+00:00" spelling is accepted on read but never written back.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
