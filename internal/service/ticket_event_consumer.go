package service

import (
	"context"
	"fmt"

	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/pkg/mailer"
	"pin-support-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// TicketBroadcaster pushes ticket events to connected helpdesk agents.
type TicketBroadcaster interface {
	BroadcastTicket(eventType string, payload events.TicketPayload)
}

// EventForwarder relays events to another bus (NATS in production).
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type TicketEventSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// TicketEventConsumer drains the in-process bus. Every event goes to the
// helpdesk feed. Escalations are mailed directly when no forwarder is set;
// with a forwarder the mail is sent by the durable NATS consumer instead.
type TicketEventConsumer struct {
	source        TicketEventSource
	broadcaster   TicketBroadcaster
	forwarder     EventForwarder
	mailer        mailer.IEmailService
	helpdeskEmail string
	logger        logger.ILogger
}

func NewTicketEventConsumer(
	source TicketEventSource,
	broadcaster TicketBroadcaster,
	forwarder EventForwarder,
	mail mailer.IEmailService,
	helpdeskEmail string,
	log logger.ILogger,
) *TicketEventConsumer {
	return &TicketEventConsumer{
		source:        source,
		broadcaster:   broadcaster,
		forwarder:     forwarder,
		mailer:        mail,
		helpdeskEmail: helpdeskEmail,
		logger:        log,
	}
}

// Consume processes messages until ctx is done.
func (c *TicketEventConsumer) Consume(ctx context.Context) error {
	messages, err := c.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	c.logger.Info("TICKET_EVENTS", "Consumer started", nil)
	for msg := range messages {
		c.processMessage(ctx, msg)
	}
	return nil
}

func (c *TicketEventConsumer) processMessage(ctx context.Context, msg *message.Message) {
	ev, err := events.Decode(msg)
	if err != nil {
		c.logger.Error("TICKET_EVENTS", "Failed to decode event", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	if err := c.Handle(ctx, ev); err != nil {
		c.logger.Error("TICKET_EVENTS", "Failed to handle event", map[string]interface{}{
			"type":  ev.EventType(),
			"error": err.Error(),
		})
	}
	msg.Ack()
}

// Handle fans one event out. A failed forward or mail is reported but does
// not stop the broadcast.
func (c *TicketEventConsumer) Handle(ctx context.Context, ev events.Event) error {
	payload := events.TicketPayloadFrom(ev.Payload())
	if c.broadcaster != nil {
		c.broadcaster.BroadcastTicket(ev.EventType(), payload)
	}

	if c.forwarder != nil {
		if err := c.forwarder.Publish(ctx, ev); err != nil {
			return fmt.Errorf("forward %s: %w", ev.EventType(), err)
		}
		return nil
	}
	return c.Mail(ctx, ev)
}

// Mail sends escalations to the helpdesk mailbox; other events are ignored.
// It doubles as the NATS consumer handler, where a returned error triggers
// redelivery.
func (c *TicketEventConsumer) Mail(ctx context.Context, ev events.Event) error {
	if ev.EventType() != events.TypeTicketEscalated || c.mailer == nil || c.helpdeskEmail == "" {
		return nil
	}
	p := events.TicketPayloadFrom(ev.Payload())
	return c.mailer.SendTicket(c.helpdeskEmail, mailer.TicketMail{
		TicketID:     p.TicketID,
		Category:     p.Category,
		Summary:      p.Summary,
		Reason:       p.EscalationReason,
		RenderedText: p.RenderedText,
	})
}
