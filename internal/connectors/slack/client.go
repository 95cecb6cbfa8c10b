// Package slack adapts the slack-go client to the chat ports. It covers
// exactly what delivery needs: joining a channel, posting messages, and
// reading the workspace member directory for the fuzzy mention mode.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// api is the slice of the slack-go client surface this package uses.
// *slack.Client satisfies it; tests substitute a fake.
type api interface {
	JoinConversationContext(ctx context.Context, channelID string) (*slack.Channel, string, []string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
}

var (
	_ driven.ChatClient        = (*Client)(nil)
	_ driven.DirectoryProvider = (*Client)(nil)
)

// Client posts to Slack channels. Channels may be referenced by id
// (posting and joining) or by #name (posting only - the join API wants ids,
// so a join failure on a named channel is logged and posting proceeds).
type Client struct {
	api api
	log logx.Logger
}

// NewClient creates a client from a bot token.
func NewClient(token string, log logx.Logger) *Client {
	return &Client{api: slack.New(token), log: log}
}

// newClientWithAPI wires a fake transport in tests.
func newClientWithAPI(a api, log logx.Logger) *Client {
	return &Client{api: a, log: log}
}

// JoinChannel makes the bot a member of the channel. Already being a member
// is success.
func (c *Client) JoinChannel(ctx context.Context, channel string) error {
	_, warning, _, err := c.api.JoinConversationContext(ctx, channel)
	if err != nil {
		if isAlreadyInChannel(err) {
			return nil
		}
		return wrapError("join channel", err)
	}
	if warning != "" && warning != alreadyInChannel {
		c.log.Debug("channel join warning", logx.String("channel", channel), logx.String("warning", warning))
	}
	return nil
}

// PostMessage posts one message. Rate-limit rejections map to domain
// rate-limit errors so the retry policy can classify them.
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return wrapError("post message", err)
	}
	return nil
}

// wrapError converts transport errors into the domain taxonomy.
func wrapError(op string, err error) error {
	if mapped := mapRateLimit(err); mapped != nil {
		return fmt.Errorf("%s: %w", op, mapped)
	}
	return fmt.Errorf("%s: %w", op, err)
}
