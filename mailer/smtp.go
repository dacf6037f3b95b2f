package mailer

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTPSettings contains the settings used to authenticate with the outbound SMTP server.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sender is the part of gomail.Dialer that we use.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPTransport sends messages through an authenticated SMTP server.
type SMTPTransport struct {
	dialer sender
	from   string
}

// NewSMTPTransport returns a transport for the given SMTP settings.
func NewSMTPTransport(settings *SMTPSettings) *SMTPTransport {
	return &SMTPTransport{
		dialer: gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password),
		from:   settings.From,
	}
}

// buildMessage converts a message to its MIME representation.
func (t *SMTPTransport) buildMessage(msg *Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

// Send delivers a message. gomail doesn't support cancellation, so the context is only checked before
// dialing.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.dialer.DialAndSend(t.buildMessage(msg))
}
