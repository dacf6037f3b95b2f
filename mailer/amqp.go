package mailer

import (
	"context"

	"github.com/cyverse-de/messaging/v9"
	"github.com/cyverse-de/quiet-hours/common"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// ReminderTemplate is the name of the email template used by the email service for reminders.
const ReminderTemplate = "quiet_hour_reminder"

// emailPublisher is the part of messaging.Client that we use.
type emailPublisher interface {
	PublishEmailRequestContext(ctx context.Context, request *messaging.EmailRequest) error
	Close()
}

// AMQPTransport publishes email requests to the DE email service over AMQP.
type AMQPTransport struct {
	client emailPublisher
}

// NewAMQPTransport connects to the AMQP broker and prepares the client for publishing. The client
// reconnects on its own if the connection to the broker is lost.
func NewAMQPTransport(settings *common.AMQPSettings) (*AMQPTransport, error) {
	wrapMsg := "unable to create the AMQP email transport"

	client, err := messaging.NewClient(settings.URI, true)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	go client.Listen()

	if err = client.SetupPublishing(settings.ExchangeName); err != nil {
		client.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &AMQPTransport{client: client}, nil
}

// emailRequest converts a message to an email service request.
func emailRequest(msg *Message) *messaging.EmailRequest {
	return &messaging.EmailRequest{
		TemplateName: ReminderTemplate,
		TemplateValues: map[string]interface{}{
			"startdate": common.FormatTimestamp(msg.StartTime),
			"enddate":   common.FormatTimestamp(msg.EndTime),
			"text":      msg.Text,
			"html":      msg.HTML,
		},
		Subject:   msg.Subject,
		ToAddress: msg.To,
	}
}

// Send publishes an email request for the message.
func (t *AMQPTransport) Send(ctx context.Context, msg *Message) error {
	err := t.client.PublishEmailRequestContext(ctx, emailRequest(msg))
	if errors.Is(err, amqp.ErrClosed) {
		return errors.Wrap(err, "the broker connection is closed; waiting for the client to reconnect")
	}
	return err
}

// Close closes the connection to the AMQP broker.
func (t *AMQPTransport) Close() error {
	if t.client != nil {
		t.client.Close()
	}
	return nil
}
