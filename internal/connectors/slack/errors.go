package slack

import (
	"errors"
	"strings"

	"github.com/slack-go/slack"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// alreadyInChannel is the API's code for joining a channel the bot is
// already a member of. The contract treats it as success.
const alreadyInChannel = "already_in_channel"

// isAlreadyInChannel matches the already-a-member rejection. The API
// reports the code as the error string.
func isAlreadyInChannel(err error) bool {
	return err != nil && strings.Contains(err.Error(), alreadyInChannel)
}

// mapRateLimit converts the transport's typed rate-limit error into the
// domain form, carrying the server-advised wait. Returns nil for anything
// else.
func mapRateLimit(err error) error {
	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return &domain.RateLimitError{RetryAfter: rle.RetryAfter}
	}
	return nil
}
