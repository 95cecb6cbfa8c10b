package driven

import "context"

// MailMessage is one outbound email: a multipart body with a plain-text
// fallback and an HTML alternative, addressed to a single recipient.
type MailMessage struct {
	// To is the recipient address.
	To string

	// Subject is the message subject line.
	Subject string

	// Plain is the text/plain part.
	Plain string

	// HTML is the text/html alternative part.
	HTML string
}

// MailSender delivers aggregated run summaries over SMTP. One message per
// recipient; a failure for one recipient must not block the next.
type MailSender interface {
	// Send delivers a single message.
	Send(ctx context.Context, msg MailMessage) error
}
