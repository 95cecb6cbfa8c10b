package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// Common Drive transfer errors.
var (
	// ErrUnauthorized indicates invalid or expired service-account credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates the service account lacks access to the file.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the Drive file does not exist or is not shared
	// with the service account.
	ErrNotFound = errors.New("google: file not found")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// IsNotFound returns true if the error indicates a missing Drive file.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

// wrapError converts a Google API error to a more specific error type.
// Rate limiting maps onto the shared domain classification so callers can
// use domain.IsRateLimited regardless of which backend produced the error.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return &domain.RateLimitError{}
	default:
		return err
	}
}
