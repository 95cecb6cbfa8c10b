package zotero

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// Common source API errors.
var (
	// ErrUnauthorized indicates a missing or invalid API key.
	ErrUnauthorized = errors.New("zotero: unauthorised (invalid API key)")

	// ErrForbidden indicates the key lacks access to the library.
	ErrForbidden = errors.New("zotero: forbidden (key lacks library access)")

	// ErrNotFound indicates the collection or item does not exist.
	ErrNotFound = errors.New("zotero: resource not found")

	// ErrVersionConflict indicates a guarded write lost against a newer
	// version of the item.
	ErrVersionConflict = errors.New("zotero: item modified since last read")
)

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized returns true if the error indicates bad credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// statusError maps a non-success response to a typed error. The body is
// read (bounded) for context; API error bodies are short plain text.
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case http.StatusPreconditionFailed:
		return fmt.Errorf("%s: %w", op, ErrVersionConflict)
	case http.StatusTooManyRequests:
		retryAfter := headerInt(resp.Header, "Retry-After")
		return fmt.Errorf("%s: %w", op, &domain.RateLimitError{
			RetryAfter: secondsDuration(retryAfter),
		})
	default:
		if detail == "" {
			return fmt.Errorf("%s: zotero: unexpected status %d", op, resp.StatusCode)
		}
		return fmt.Errorf("%s: zotero: unexpected status %d: %s", op, resp.StatusCode, detail)
	}
}

func secondsDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// headerInt parses an integer header value (Retry-After, Backoff,
// Total-Results). Anything non-numeric parses as zero.
func headerInt(h http.Header, key string) int {
	v := strings.TrimSpace(h.Get(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
