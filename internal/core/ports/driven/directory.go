package driven

import (
	"context"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// DirectoryProvider supplies the identities mention tokens resolve against.
// One implementation reads the chat workspace member list, the other a flat
// name/id table published as CSV.
type DirectoryProvider interface {
	// Members returns all resolvable identities, in directory order.
	// Order matters: resolution ties break by first-seen.
	Members(ctx context.Context) ([]domain.Identity, error)
}

// MentionResolver maps a free-text mention token to a destination user id.
// The two implementations (similarity scorer and flat table lookup) are
// interchangeable; configuration selects one per run.
type MentionResolver interface {
	// Load fetches and indexes the backing directory. Call once per run,
	// before any Resolve.
	Load(ctx context.Context) error

	// Resolve returns the destination id for a token (without its "@"
	// sigil) and whether the token matched at all.
	Resolve(token string) (id string, ok bool)
}
