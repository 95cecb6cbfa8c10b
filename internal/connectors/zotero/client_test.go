package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL:     srv.URL,
		LibraryID:   "4455",
		LibraryType: "group",
		APIKey:      "zk-test",
		PageSize:    2,
	}, logx.Nop())
}

func wireItem(key, itemType, added string) map[string]any {
	return map[string]any{
		"key":     key,
		"version": 7,
		"links": map[string]any{
			"alternate": map[string]any{"href": "https://www.zotero.org/groups/4455/items/" + key},
		},
		"meta": map[string]any{
			"createdByUser": map[string]any{"username": "jdoe"},
			"numChildren":   1,
		},
		"data": map[string]any{
			"key":       key,
			"version":   7,
			"itemType":  itemType,
			"title":     "Title " + key,
			"dateAdded": added,
		},
	}
}

// TestClient_ListCollectionItems_Pagination tests that all pages are fetched
// and stitched together under the Total-Results contract.
func TestClient_ListCollectionItems_Pagination(t *testing.T) {
	var starts []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/4455/collections/COLL1/items/top", r.URL.Path)
		assert.Equal(t, "zk-test", r.Header.Get("Zotero-API-Key"))
		assert.Equal(t, "3", r.Header.Get("Zotero-API-Version"))
		assert.Equal(t, "dateAdded", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("direction"))

		start := r.URL.Query().Get("start")
		starts = append(starts, start)

		page := []map[string]any{
			wireItem("AAA", "journalArticle", "2024-03-05T10:00:00Z"),
			wireItem("BBB", "journalArticle", "2024-03-04T10:00:00Z"),
		}
		if start == "2" {
			page = []map[string]any{wireItem("CCC", "preprint", "2024-03-03T10:00:00Z")}
		}

		w.Header().Set("Total-Results", "3")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	})

	c := testClient(t, handler)
	records, err := c.ListCollectionItems(context.Background(), "COLL1")
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"", "2"}, starts)
	assert.Equal(t, "AAA", records[0].Key)
	assert.Equal(t, "CCC", records[2].Key)
	assert.Equal(t, "jdoe", records[0].AddedBy)
	assert.Equal(t, "https://www.zotero.org/groups/4455/items/AAA", records[0].AlternateLink)
}

// TestClient_ChildNotes_FiltersNonNotes tests that attachments never leak
// into the note list.
func TestClient_ChildNotes_FiltersNonNotes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/4455/items/AAA/children", r.URL.Path)

		note := wireItem("N1", "note", "2024-03-05T10:00:00Z")
		note["data"].(map[string]any)["note"] = "<p>Read this</p>"
		page := []map[string]any{
			note,
			wireItem("F1", "attachment", "2024-03-05T10:00:00Z"),
		}
		w.Header().Set("Total-Results", "2")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	})

	c := testClient(t, handler)
	notes, err := c.ChildNotes(context.Background(), "AAA")
	require.NoError(t, err)

	require.Len(t, notes, 1)
	assert.Equal(t, "N1", notes[0].Key)
	assert.Equal(t, "<p>Read this</p>", notes[0].HTML)
}

// TestClient_GetItem tests the single-item fetch.
func TestClient_GetItem(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/4455/items/AAA", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(wireItem("AAA", "journalArticle", "2024-03-05T10:00:00Z")))
	})

	c := testClient(t, handler)
	rec, err := c.GetItem(context.Background(), "AAA")
	require.NoError(t, err)

	assert.Equal(t, "AAA", rec.Key)
	assert.Equal(t, "Title AAA", rec.Title)
	assert.Equal(t, 7, rec.Version)
}

// TestClient_ListItems_RespectsLimit tests the capped listing used by the
// inspection command.
func TestClient_ListItems_RespectsLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/4455/items/top", r.URL.Path)
		assert.Equal(t, "-attachment", r.URL.Query().Get("itemType"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.Header().Set("Total-Results", "50")
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{
			wireItem("AAA", "journalArticle", "2024-03-05T10:00:00Z"),
		}))
	})

	c := testClient(t, handler)
	records, err := c.ListItems(context.Background(), driven.ItemQuery{ItemType: "-attachment", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// TestClient_DeleteItem_VersionGuard tests the conditional delete.
func TestClient_DeleteItem_VersionGuard(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/groups/4455/items/F1", r.URL.Path)
		assert.Equal(t, "7", r.Header.Get("If-Unmodified-Since-Version"))
		w.WriteHeader(http.StatusNoContent)
	})

	c := testClient(t, handler)
	require.NoError(t, c.DeleteItem(context.Background(), "F1", 7))
}

// TestClient_DeleteItem_Conflict tests the 412 mapping.
func TestClient_DeleteItem_Conflict(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	})

	c := testClient(t, handler)
	err := c.DeleteItem(context.Background(), "F1", 6)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

// TestClient_RateLimited tests that a 429 surfaces as a domain rate-limit
// error carrying the advised wait.
func TestClient_RateLimited(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c := testClient(t, handler)
	_, err := c.ListCollectionItems(context.Background(), "COLL1")
	require.Error(t, err)
	assert.True(t, domain.IsRateLimited(err))

	var rle *domain.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 30, int(rle.RetryAfter.Seconds()))
}

// TestClient_NotFound tests the 404 mapping.
func TestClient_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	c := testClient(t, handler)
	_, err := c.GetItem(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
}

// TestClient_StopsWithoutTotalHeader tests the fallback stop condition when
// the server omits Total-Results.
func TestClient_StopsWithoutTotalHeader(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{
			wireItem(fmt.Sprintf("K%d", calls), "journalArticle", "2024-03-05T10:00:00Z"),
		}))
	})

	c := testClient(t, handler)
	records, err := c.ListCollectionItems(context.Background(), "COLL1")
	require.NoError(t, err)

	// One short page (1 < page size 2) ends the listing.
	assert.Equal(t, 1, calls)
	assert.Len(t, records, 1)
}

// TestClient_UserLibraryPrefix tests the /users prefix selection.
func TestClient_UserLibraryPrefix(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/99/items/top", r.URL.Path)
		w.Header().Set("Total-Results", "0")
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{}))
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:     srv.URL,
		LibraryID:   "99",
		LibraryType: "user",
		APIKey:      "zk-test",
	}, logx.Nop())

	records, err := c.ListItems(context.Background(), driven.ItemQuery{})
	require.NoError(t, err)
	assert.Empty(t, records)
}
