package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/agext/levenshtein"

	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// scoreThreshold is the minimum similarity (0-100 scale) for a mention token
// to resolve to a directory entry.
const scoreThreshold = 50.0

var _ driven.MentionResolver = (*Fuzzy)(nil)

// Fuzzy resolves mention tokens by similarity against directory display
// names. The best score at or above the threshold wins; equal scores keep
// the first-seen entry. This is the original resolution mode, retained
// behind configuration.
type Fuzzy struct {
	provider driven.DirectoryProvider
	log      logx.Logger

	mu      sync.RWMutex
	entries []fuzzyEntry
}

type fuzzyEntry struct {
	id   string
	norm string
}

// NewFuzzy creates a fuzzy resolver over the given directory.
func NewFuzzy(provider driven.DirectoryProvider, log logx.Logger) *Fuzzy {
	return &Fuzzy{provider: provider, log: log}
}

// Load fetches the directory and pre-normalises display names.
func (f *Fuzzy) Load(ctx context.Context) error {
	members, err := f.provider.Members(ctx)
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	entries := make([]fuzzyEntry, 0, len(members))
	for _, m := range members {
		norm := normalise(m.DisplayName)
		if m.ID == "" || norm == "" {
			continue
		}
		entries = append(entries, fuzzyEntry{id: m.ID, norm: norm})
	}

	f.mu.Lock()
	f.entries = entries
	f.mu.Unlock()

	f.log.Debug("fuzzy resolver loaded", logx.Int("entries", len(entries)))
	return nil
}

// Resolve returns the best-scoring identity for the token, if any entry
// reaches the threshold.
func (f *Fuzzy) Resolve(token string) (string, bool) {
	norm := normalise(token)
	if norm == "" {
		return "", false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var (
		bestID    string
		bestScore float64
		found     bool
	)
	for _, e := range f.entries {
		score := levenshtein.Similarity(norm, e.norm, nil) * 100
		if score < scoreThreshold {
			continue
		}
		// Strictly-greater keeps the first-seen entry on ties.
		if !found || score > bestScore {
			bestID = e.id
			bestScore = score
			found = true
		}
	}
	return bestID, found
}
