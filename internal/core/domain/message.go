package domain

// RenderedMessage holds the three representations of one changed record.
// Chat is the only one with inline markup and mention substitution; the
// plain and HTML forms feed the aggregated email.
type RenderedMessage struct {
	// Chat is the chat-formatted line (inline markup, mentions resolved).
	Chat string

	// Plain is the line-break separated plain-text block.
	Plain string

	// HTML is the same content in div blocks, body text escaped.
	HTML string
}

// Identity is one directory entry mention tokens resolve against.
type Identity struct {
	// ID is the destination-side identifier (chat user id).
	ID string

	// DisplayName is the human name the token is matched on.
	DisplayName string
}

// RunReport aggregates one pipeline run for the summary line and exit logs.
type RunReport struct {
	// RunID correlates all log lines of this run.
	RunID string

	// Collections is the number of state rows processed.
	Collections int

	// Posted counts successfully delivered messages across all rows.
	Posted int

	// Failed counts messages still undelivered after the retry policy.
	Failed int

	// DryRun is true when delivery and persistence were suppressed.
	DryRun bool
}
