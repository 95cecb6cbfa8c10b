// Package zotero is a client for the Zotero Web API v3, the source library
// the pipeline watches. It covers the read surface detection needs plus the
// guarded delete used by attachment pruning.
//
// The API has no official Go client, so this package speaks HTTP directly:
// JSON item envelopes, Total-Results driven pagination, and the
// Backoff/Retry-After slow-down protocol.
package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.zotero.org"

	// DefaultPageSize is the API's maximum items per request.
	DefaultPageSize = 100

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	apiVersion = "3"
)

// Config carries the connection settings for a library.
type Config struct {
	// BaseURL overrides the API endpoint. Tests point this at a local
	// server; empty means the public API.
	BaseURL string

	// LibraryID is the numeric library identifier.
	LibraryID string

	// LibraryType is "group" or "user".
	LibraryType string

	// APIKey authenticates every request.
	APIKey string

	// PageSize caps items per request. Zero means the API maximum.
	PageSize int

	// RequestDelay is the fixed spacing between consecutive requests.
	RequestDelay time.Duration

	// HTTPClient overrides the transport. Nil gets a default with timeout.
	HTTPClient *http.Client
}

// Client is the API client. It implements both library ports; pagination
// and rate pacing are internal.
type Client struct {
	baseURL  string
	prefix   string
	apiKey   string
	pageSize int
	httpc    *http.Client
	limiter  *RateLimiter
	log      logx.Logger
}

var (
	_ driven.Library      = (*Client)(nil)
	_ driven.LibraryAdmin = (*Client)(nil)
)

// NewClient creates a client for one library.
func NewClient(cfg Config, log logx.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize < 1 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: DefaultTimeout}
	}
	prefix := "/groups/" + cfg.LibraryID
	if cfg.LibraryType == "user" {
		prefix = "/users/" + cfg.LibraryID
	}

	return &Client{
		baseURL:  baseURL,
		prefix:   prefix,
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		httpc:    httpc,
		limiter:  NewRateLimiter(cfg.RequestDelay),
		log:      log,
	}
}

// ListCollectionItems returns the collection's top-level items, most
// recently added first, following pagination to the end.
func (c *Client) ListCollectionItems(ctx context.Context, collectionKey string) ([]domain.Record, error) {
	q := url.Values{}
	q.Set("sort", "dateAdded")
	q.Set("direction", "desc")

	items, err := c.paged(ctx, "list collection items", c.prefix+"/collections/"+collectionKey+"/items/top", q, 0)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(items))
	for _, it := range items {
		records = append(records, toRecord(it))
	}
	return records, nil
}

// ChildNotes returns the item's child notes, dropping attachments and any
// other child kinds.
func (c *Client) ChildNotes(ctx context.Context, itemKey string) ([]domain.Note, error) {
	items, err := c.paged(ctx, "list child notes", c.prefix+"/items/"+itemKey+"/children", url.Values{}, 0)
	if err != nil {
		return nil, err
	}

	var notes []domain.Note
	for _, it := range items {
		if it.Data.ItemType == itemTypeNote {
			notes = append(notes, toNote(it))
		}
	}
	return notes, nil
}

// ChildAttachments returns the item's file attachments.
func (c *Client) ChildAttachments(ctx context.Context, itemKey string) ([]domain.Attachment, error) {
	items, err := c.paged(ctx, "list child attachments", c.prefix+"/items/"+itemKey+"/children", url.Values{}, 0)
	if err != nil {
		return nil, err
	}

	var attachments []domain.Attachment
	for _, it := range items {
		if it.Data.ItemType == itemTypeAttachment {
			attachments = append(attachments, toAttachment(it))
		}
	}
	return attachments, nil
}

// GetItem fetches a single item by key.
func (c *Client) GetItem(ctx context.Context, key string) (domain.Record, error) {
	var it item
	if _, err := c.getJSON(ctx, "get item", c.prefix+"/items/"+key, url.Values{}, &it); err != nil {
		return domain.Record{}, err
	}
	return toRecord(it), nil
}

// ListItems returns the newest top-level items matching the query. A zero
// limit follows pagination to the end of the listing.
func (c *Client) ListItems(ctx context.Context, q driven.ItemQuery) ([]domain.Record, error) {
	path := c.prefix + "/items/top"
	if q.CollectionKey != "" {
		path = c.prefix + "/collections/" + q.CollectionKey + "/items/top"
	}

	query := url.Values{}
	query.Set("sort", "dateAdded")
	query.Set("direction", "desc")
	if q.ItemType != "" {
		query.Set("itemType", q.ItemType)
	}

	items, err := c.paged(ctx, "list items", path, query, q.Limit)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(items))
	for _, it := range items {
		records = append(records, toRecord(it))
	}
	return records, nil
}

// DeleteItem removes an item with a version guard: the delete fails with
// ErrVersionConflict when the item changed since version was read.
func (c *Client) DeleteItem(ctx context.Context, key string, version int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+c.prefix+"/items/"+key, nil)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("If-Unmodified-Since-Version", strconv.Itoa(version))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	defer resp.Body.Close()
	c.recordBackoff(resp.Header)

	if resp.StatusCode != http.StatusNoContent {
		return statusError("delete item", resp)
	}
	return nil
}

// paged fetches all pages of an item listing, trusting the Total-Results
// header when present. max caps the result count; zero means unbounded.
func (c *Client) paged(ctx context.Context, op, path string, base url.Values, max int) ([]item, error) {
	var all []item
	start := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		limit := c.pageSize
		if max > 0 && max-len(all) < limit {
			limit = max - len(all)
		}

		q := url.Values{}
		for k, vs := range base {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		q.Set("limit", strconv.Itoa(limit))
		if start > 0 {
			q.Set("start", strconv.Itoa(start))
		}

		var page []item
		h, err := c.getJSON(ctx, op, path, q, &page)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		start += len(page)

		if max > 0 && len(all) >= max {
			all = all[:max]
			break
		}
		if total := headerInt(h, "Total-Results"); total > 0 {
			if start >= total {
				break
			}
		} else if len(page) < limit {
			break
		}
	}

	return all, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	c.recordBackoff(resp.Header)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return resp.Header, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Zotero-API-Key", c.apiKey)
	req.Header.Set("Zotero-API-Version", apiVersion)
}

// recordBackoff honours the server's load-shedding header on any response.
func (c *Client) recordBackoff(h http.Header) {
	if secs := headerInt(h, "Backoff"); secs > 0 {
		c.log.Warn("source requested backoff", logx.Int("seconds", secs))
		c.limiter.RecordBackoff(secs)
	}
}
