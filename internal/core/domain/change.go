package domain

import "time"

// TriggerReason tags why a record entered the changed set.
type TriggerReason string

const (
	// TriggerRecordDate marks a record whose own change date moved past the
	// watermark.
	TriggerRecordDate TriggerReason = "record-date"

	// TriggerNoteDate marks a record pulled in because one of its child
	// notes changed while the record itself did not.
	TriggerNoteDate TriggerReason = "note-date"
)

// ChangeSet is one detected change: the record, the date that triggered its
// inclusion, and which detection tier fired. ChangeSets are ordered
// most-recent-first, as received from the source.
type ChangeSet struct {
	// Record is the changed record's snapshot.
	Record Record

	// Notes holds the record's child notes when detection already fetched
	// them (the note tier always has). Nil means the renderer loads them
	// on demand.
	Notes []Note

	// TriggeringDate is the timestamp that exceeded the watermark. The new
	// watermark is the maximum TriggeringDate across the batch.
	TriggeringDate time.Time

	// Reason tags which detection tier included this record.
	Reason TriggerReason
}
