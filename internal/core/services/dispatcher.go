package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
	"github.com/zotcast/zotcast/internal/retry"
)

// DispatchConfig tunes delivery behaviour.
type DispatchConfig struct {
	// MaxAttempts and InitialDelay parameterise the rate-limit retry:
	// only rate-limit rejections are retried, with doubling delays.
	MaxAttempts  int
	InitialDelay time.Duration

	// MessageDelay is the fixed pause between consecutive chat posts.
	MessageDelay time.Duration

	// Recipients lists email destinations, one aggregated message each.
	Recipients []string

	// AbortOnFailure escalates an email failure to a run-fatal error, the
	// legacy behaviour, instead of counting it like a chat failure.
	AbortOnFailure bool
}

// Dispatcher delivers one collection's batch: the header and one chat
// message per record to the row's channel, plus one aggregated email per
// recipient. Individual send failures are counted, never raised; the batch
// always runs to completion.
type Dispatcher struct {
	chat    driven.ChatClient
	mailer  driven.MailSender
	policy  retry.Policy
	limiter *rate.Limiter
	cfg     DispatchConfig
	log     logx.Logger
}

// NewDispatcher creates a dispatcher. mailer may be nil when email
// delivery is disabled.
func NewDispatcher(chat driven.ChatClient, mailer driven.MailSender, cfg DispatchConfig, log logx.Logger) *Dispatcher {
	return &Dispatcher{
		chat:   chat,
		mailer: mailer,
		policy: retry.Policy{
			MaxAttempts:  cfg.MaxAttempts,
			InitialDelay: cfg.InitialDelay,
			Retryable:    domain.IsRateLimited,
		},
		limiter: rate.NewLimiter(rate.Every(cfg.MessageDelay), 1),
		cfg:     cfg,
		log:     log,
	}
}

// Dispatch sends the header and msgs for one state row. It returns how many
// sends succeeded and failed; the error is non-nil only for failures
// configured as run-fatal. Email is skipped for empty batches, the chat
// header is not: a quiet collection still announces itself.
func (d *Dispatcher) Dispatch(ctx context.Context, row domain.WatermarkRow, header string, msgs []domain.RenderedMessage, dry bool) (int, int, error) {
	var posted, failed int

	if row.Channel != "" {
		p, f := d.deliverChat(ctx, row.Channel, header, msgs, dry)
		posted, failed = posted+p, failed+f
	}

	if d.mailer != nil && len(d.cfg.Recipients) > 0 && len(msgs) > 0 {
		p, f, err := d.deliverEmail(ctx, row, header, msgs, dry)
		posted, failed = posted+p, failed+f
		if err != nil {
			return posted, failed, err
		}
	}

	return posted, failed, nil
}

// deliverChat joins the channel and posts the header followed by each
// record message. Join failures warn and posting proceeds: a private
// channel the bot was invited to cannot be joined but accepts posts.
func (d *Dispatcher) deliverChat(ctx context.Context, channel, header string, msgs []domain.RenderedMessage, dry bool) (int, int) {
	if dry {
		d.log.Info("dry run, would post header",
			logx.String("channel", channel),
			logx.String("text", header))
		for i := range msgs {
			d.log.Info("dry run, would post message",
				logx.String("channel", channel),
				logx.String("text", msgs[i].Chat))
		}
		return len(msgs) + 1, 0
	}

	if err := retry.Do(ctx, d.policy, func() error {
		return d.chat.JoinChannel(ctx, channel)
	}); err != nil {
		d.log.Warn("could not join channel, posting anyway",
			logx.String("channel", channel),
			logx.Err(err))
	}

	var posted, failed int
	if d.post(ctx, channel, header) {
		posted++
	} else {
		failed++
	}
	for i := range msgs {
		if d.post(ctx, channel, msgs[i].Chat) {
			posted++
		} else {
			failed++
		}
	}
	return posted, failed
}

// post sends one message under the retry policy, pacing consecutive posts
// with the configured delay. It reports success.
func (d *Dispatcher) post(ctx context.Context, channel, text string) bool {
	if err := d.limiter.Wait(ctx); err != nil {
		d.log.Error("message delivery aborted",
			logx.String("channel", channel),
			logx.Err(err))
		return false
	}
	if err := retry.Do(ctx, d.policy, func() error {
		return d.chat.PostMessage(ctx, channel, text)
	}); err != nil {
		d.log.Error("message delivery failed",
			logx.String("channel", channel),
			logx.Err(err))
		return false
	}
	return true
}

// deliverEmail sends one aggregated multipart message per recipient. A
// failed recipient never blocks the next one.
func (d *Dispatcher) deliverEmail(ctx context.Context, row domain.WatermarkRow, header string, msgs []domain.RenderedMessage, dry bool) (int, int, error) {
	subject := emailSubject(row, len(msgs))
	plain := emailPlainBody(header, msgs)
	htmlBody := emailHTMLBody(header, msgs)

	var posted, failed int
	for _, to := range d.cfg.Recipients {
		if dry {
			d.log.Info("dry run, would send email",
				logx.String("to", to),
				logx.String("subject", subject))
			posted++
			continue
		}

		err := d.mailer.Send(ctx, driven.MailMessage{To: to, Subject: subject, Plain: plain, HTML: htmlBody})
		if err != nil {
			failed++
			d.log.Error("email delivery failed",
				logx.String("to", to),
				logx.Err(err))
			if d.cfg.AbortOnFailure {
				return posted, failed, fmt.Errorf("email to %s: %w", to, err)
			}
			continue
		}
		posted++
		d.log.Info("email sent", logx.String("to", to))
	}
	return posted, failed, nil
}

// emailSubject labels the aggregated message with the destination and the
// batch size.
func emailSubject(row domain.WatermarkRow, n int) string {
	label := row.Channel
	if label == "" {
		label = row.CollectionID
	}
	noun := "new publications"
	if n == 1 {
		noun = "new publication"
	}
	return fmt.Sprintf("%s: %d %s", label, n, noun)
}

// emailPlainBody is the header followed by each record's plain block.
func emailPlainBody(header string, msgs []domain.RenderedMessage) string {
	parts := make([]string, 0, len(msgs)+1)
	parts = append(parts, header)
	for i := range msgs {
		parts = append(parts, msgs[i].Plain)
	}
	return strings.Join(parts, "\n\n")
}

// emailHTMLBody mirrors the plain body with div markup and a rule between
// records.
func emailHTMLBody(header string, msgs []domain.RenderedMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<div><b>%s</b></div>\n", html.EscapeString(header))
	for i := range msgs {
		b.WriteString("<hr>\n")
		b.WriteString(msgs[i].HTML)
		b.WriteString("\n")
	}
	return b.String()
}
