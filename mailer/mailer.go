// Package mailer formats quiet hour reminders and hands them to an outbound transport.
package mailer

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/cyverse-de/quiet-hours/common"
)

// ReminderSubject is the subject line of every reminder email.
const ReminderSubject = "⏰ Your quiet hour is starting soon"

// Message is a single outgoing email.
type Message struct {
	To        string
	Subject   string
	Text      string
	HTML      string
	StartTime time.Time
	EndTime   time.Time
}

// Transport delivers a message to its recipient.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// DeliveryError indicates that a message could not be handed to the outbound transport.
type DeliveryError struct {
	To  string
	Err error
}

// Error returns the error message for a DeliveryError.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("unable to deliver reminder to %s: %s", e.To, e.Err)
}

// Unwrap returns the transport error.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Mailer sends quiet hour reminders, rendering times in a fixed display location.
type Mailer struct {
	transport Transport
	location  *time.Location
}

// New returns a new Mailer.
func New(transport Transport, location *time.Location) *Mailer {
	if location == nil {
		location = time.UTC
	}
	return &Mailer{transport: transport, location: location}
}

// FormatReminder builds the reminder for a quiet hour block running from start to end.
func FormatReminder(to string, start, end time.Time, location *time.Location) *Message {
	startLocal := common.FormatLocal(start, location)
	endLocal := common.FormatLocal(end, location)

	return &Message{
		To:      to,
		Subject: ReminderSubject,
		Text:    fmt.Sprintf("Your silent study block starts at %s and ends at %s.", startLocal, endLocal),
		HTML: fmt.Sprintf(
			"<p>Your silent study block starts at <b>%s</b> and ends at <b>%s</b>.</p>",
			html.EscapeString(startLocal),
			html.EscapeString(endLocal),
		),
		StartTime: start,
		EndTime:   end,
	}
}

// SendReminder formats and sends a reminder. Any failure is returned as a *DeliveryError.
func (m *Mailer) SendReminder(ctx context.Context, to string, start, end time.Time) error {
	msg := FormatReminder(to, start, end, m.location)
	if err := m.transport.Send(ctx, msg); err != nil {
		return &DeliveryError{To: to, Err: err}
	}
	return nil
}
