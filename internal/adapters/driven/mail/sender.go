// Package mail delivers aggregated run summaries over SMTP as multipart
// messages: a plain-text fallback with an HTML alternative.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// Config holds the SMTP endpoint and sender identity.
type Config struct {
	// Host is the SMTP server host.
	Host string

	// Port is the SMTP server port; zero selects the client default.
	Port int

	// Username and Password authenticate the session when Username is
	// non-empty; otherwise the session is unauthenticated.
	Username string
	Password string

	// From is the sender address on every message.
	From string
}

// Sender sends messages through a single SMTP endpoint. Each Send dials,
// delivers and closes; runs are infrequent enough that holding a connection
// open buys nothing.
type Sender struct {
	client *gomail.Client
	from   string
	log    logx.Logger
}

var _ driven.MailSender = (*Sender)(nil)

// NewSender builds a sender for the given endpoint.
func NewSender(cfg Config, log logx.Logger) (*Sender, error) {
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &Sender{client: client, from: cfg.From, log: log}, nil
}

// Send delivers one message.
func (s *Sender) Send(ctx context.Context, msg driven.MailMessage) error {
	m, err := buildMessage(s.from, msg)
	if err != nil {
		return err
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending to %s: %w", msg.To, err)
	}

	s.log.Debug("email sent",
		logx.String("to", msg.To),
		logx.String("subject", msg.Subject))

	return nil
}

// buildMessage assembles the multipart message. The HTML part is attached
// as an alternative only when present, so plain-only messages stay
// single-part.
func buildMessage(from string, msg driven.MailMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("setting sender %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting recipient %q: %w", msg.To, err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Plain)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}

	return m, nil
}
