// Package directory fetches the mention table: a small CSV published over
// plain HTTP (typically a sheet export) mapping display names to chat user
// IDs. The table replaces the old workspace-wide member listing as the
// source for @-mention substitution.
package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// Required table columns, matched case-insensitively after trimming.
const (
	colDisplayName = "display name"
	colID          = "id"
)

// defaultTimeout bounds the table fetch.
const defaultTimeout = 15 * time.Second

// Provider downloads the mention table on demand.
type Provider struct {
	url    string
	client *http.Client
	log    logx.Logger
}

var _ driven.DirectoryProvider = (*Provider)(nil)

// NewProvider creates a provider that fetches the table from url.
func NewProvider(url string, log logx.Logger) *Provider {
	return &Provider{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		log:    log,
	}
}

// Members fetches and parses the table. Failures wrap
// domain.ErrDirectoryUnavailable so callers can degrade to plain text
// instead of failing the delivery.
func (p *Provider) Members(ctx context.Context) ([]domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating table request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", domain.ErrDirectoryUnavailable, p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching %s: status %d", domain.ErrDirectoryUnavailable, p.url, resp.StatusCode)
	}

	return p.parse(resp.Body)
}

// parse reads the CSV table. Sheet exports are ragged in practice, so rows
// are tolerated individually: anything without both cells is skipped with a
// warning rather than failing the whole table.
func (p *Provider) parse(body io.Reader) ([]domain.Identity, error) {
	r := csv.NewReader(body)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: table is empty", domain.ErrDirectoryUnavailable)
		}
		return nil, fmt.Errorf("reading table header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	nameIdx, idIdx := -1, -1
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case colDisplayName:
			nameIdx = i
		case colID:
			idIdx = i
		}
	}
	if nameIdx < 0 || idIdx < 0 {
		return nil, fmt.Errorf("table at %s is missing the %q or %q column", p.url, colDisplayName, colID)
	}

	var members []domain.Identity
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading table row: %w", err)
		}
		line++

		if nameIdx >= len(rec) || idIdx >= len(rec) {
			p.log.Warn("skipping short mention table row", logx.Int("line", line))
			continue
		}
		name := strings.TrimSpace(rec[nameIdx])
		id := strings.TrimSpace(rec[idIdx])
		if name == "" || id == "" {
			p.log.Warn("skipping incomplete mention table row", logx.Int("line", line))
			continue
		}

		members = append(members, domain.Identity{ID: id, DisplayName: name})
	}

	p.log.Debug("mention table loaded", logx.Int("members", len(members)))
	return members, nil
}
