package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrStateColumnMissing indicates the watermark table lacks a required column.
	// This is a configuration error and aborts the run.
	ErrStateColumnMissing = errors.New("required state column missing")

	// ErrWatermarkMalformed indicates a persisted watermark timestamp could not
	// be parsed. The run aborts before any detection starts.
	ErrWatermarkMalformed = errors.New("malformed watermark timestamp")

	// ErrRecordDateInvalid indicates a record carries no parsable timestamp.
	// The record is logged and excluded; the run continues.
	ErrRecordDateInvalid = errors.New("record has no parsable timestamp")

	// ErrNoCredentials indicates a required credential is absent from both
	// configuration and environment.
	ErrNoCredentials = errors.New("missing credentials")

	// ErrRateLimited indicates the remote service asked us to slow down.
	// Delivery retries on this class of error and nothing else.
	ErrRateLimited = errors.New("rate limited")

	// ErrChannelUnavailable indicates the chat channel could not be joined
	// or resolved.
	ErrChannelUnavailable = errors.New("channel unavailable")

	// ErrDirectoryUnavailable indicates the name/id directory could not be
	// loaded. Mention substitution degrades to a no-op.
	ErrDirectoryUnavailable = errors.New("directory unavailable")
)

// RateLimitError reports a transport-level rate limit, optionally carrying
// the wait the server advised before the next attempt.
type RateLimitError struct {
	// RetryAfter is the server-advised wait. Zero when the server gave none.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// Is lets errors.Is(err, ErrRateLimited) match wrapped RateLimitErrors.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// IsRateLimited reports whether err is a rate-limit signal from any transport.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
