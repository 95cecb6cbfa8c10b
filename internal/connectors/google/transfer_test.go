package google

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/logx"
)

const testFileID = "state-file-123"

// newTestTransfer builds a Transfer against a stub Drive endpoint.
func newTestTransfer(t *testing.T, handler http.HandlerFunc) *Transfer {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return newTransfer(svc, testFileID, logx.Nop())
}

// TestTransfer_Pull_DownloadsContent tests that Pull fetches the file media
// and returns it unchanged.
func TestTransfer_Pull_DownloadsContent(t *testing.T) {
	content := "subcollectionID,lastDate,channel\nABC123,2024-01-02T03:04:05Z,#papers\n"

	var gotPath, gotAlt string
	tr := newTestTransfer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAlt = r.URL.Query().Get("alt")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, content)
	})

	data, err := tr.Pull(context.Background())
	require.NoError(t, err)

	assert.Equal(t, content, string(data))
	assert.Contains(t, gotPath, testFileID)
	assert.Equal(t, "media", gotAlt)
}

// TestTransfer_Pull_NotFound tests that a missing Drive file surfaces as
// ErrNotFound.
func TestTransfer_Pull_NotFound(t *testing.T) {
	tr := newTestTransfer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"file not found"}}`)
	})

	_, err := tr.Pull(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

// TestTransfer_Push_UploadsMedia tests that Push replaces the file media
// with the given bytes, marked as CSV.
func TestTransfer_Push_UploadsMedia(t *testing.T) {
	payload := "subcollectionID,lastDate,channel\nABC123,2024-06-07T08:09:10Z,#papers\n"

	var gotMethod, gotPath, gotUpload, gotBody string
	tr := newTestTransfer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotUpload = r.URL.Query().Get("uploadType")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"`+testFileID+`"}`)
	})

	err := tr.Push(context.Background(), []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Contains(t, gotPath, testFileID)
	assert.NotEmpty(t, gotUpload)
	assert.Contains(t, gotBody, payload)
	assert.True(t, strings.Contains(gotBody, stateContentType))
}

// TestTransfer_Push_RateLimited tests that a 429 from Drive is classified
// as a rate-limit error.
func TestTransfer_Push_RateLimited(t *testing.T) {
	tr := newTestTransfer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"rate limit exceeded"}}`)
	})

	err := tr.Push(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.True(t, domain.IsRateLimited(err))
}

// TestTransfer_Pull_Forbidden tests that a permission failure maps onto the
// forbidden sentinel rather than a generic error.
func TestTransfer_Pull_Forbidden(t *testing.T) {
	tr := newTestTransfer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"insufficient permissions"}}`)
	})

	_, err := tr.Pull(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}
