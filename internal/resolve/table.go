package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

var _ driven.MentionResolver = (*Table)(nil)

// Table resolves mention tokens by exact lookup (after normalisation)
// against a flat name/id table. This replaced the fuzzy scorer as the
// default mode: the table is curated, so approximate matching buys nothing.
type Table struct {
	provider driven.DirectoryProvider
	log      logx.Logger

	mu      sync.RWMutex
	entries map[string]string
}

// NewTable creates a table resolver over the given directory.
func NewTable(provider driven.DirectoryProvider, log logx.Logger) *Table {
	return &Table{provider: provider, log: log}
}

// Load fetches the directory and indexes it by normalised display name.
// Duplicate names keep the first-seen id.
func (t *Table) Load(ctx context.Context) error {
	members, err := t.provider.Members(ctx)
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	entries := make(map[string]string, len(members))
	for _, m := range members {
		norm := normalise(m.DisplayName)
		if m.ID == "" || norm == "" {
			continue
		}
		if _, exists := entries[norm]; exists {
			continue
		}
		entries[norm] = m.ID
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()

	t.log.Debug("table resolver loaded", logx.Int("entries", len(entries)))
	return nil
}

// Resolve looks the normalised token up in the table.
func (t *Table) Resolve(token string) (string, bool) {
	norm := normalise(token)
	if norm == "" {
		return "", false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	id, ok := t.entries[norm]
	return id, ok
}
