// Package state persists the watermark table as a CSV file.
//
// The format is shared with earlier tooling: a header row with at least the
// subcollectionID, lastDate and channel columns, one row per watched
// collection. Columns beyond the required three are preserved verbatim
// across rewrites, as is column order. Saves are atomic (temp file plus
// rename) so a crash never leaves a half-written table behind.
package state
