package domain

// Attachment is a snapshot of one file attachment child of a record.
// Curation only ever deletes attachments, never their parent items.
type Attachment struct {
	// Key is the source library's identifier for the attachment.
	Key string

	// Version is the modification counter required for guarded deletes.
	Version int

	// Title is the attachment's display title.
	Title string

	// ContentType is the stored file's MIME type.
	ContentType string

	// Filename is the stored file's name, when the source holds one.
	Filename string

	// DateAdded is the raw creation timestamp string from the source.
	DateAdded string
}

// PruneReport summarises one attachment-pruning pass.
type PruneReport struct {
	// Scanned counts parent items inspected.
	Scanned int

	// Matched counts attachments that met the pruning criteria.
	Matched int

	// Deleted counts attachments actually removed. Always zero in dry-run.
	Deleted int

	// Failed counts deletions the source rejected.
	Failed int
}
