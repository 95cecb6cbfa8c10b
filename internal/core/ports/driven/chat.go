package driven

import "context"

// ChatClient posts messages to the destination chat service.
type ChatClient interface {
	// JoinChannel makes the posting identity a member of the channel.
	// Already being a member is success, not an error.
	JoinChannel(ctx context.Context, channel string) error

	// PostMessage posts one message to a channel. Rate-limit rejections
	// must surface as domain rate-limit errors so the retry policy can
	// classify them.
	PostMessage(ctx context.Context, channel, text string) error
}
