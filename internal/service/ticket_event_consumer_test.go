package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/pkg/mailer"
	"pin-support-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	got chan events.TicketPayload
}

func (f *fakeBroadcaster) BroadcastTicket(eventType string, payload events.TicketPayload) {
	f.got <- payload
}

type fakeMailer struct {
	to    []string
	mails []mailer.TicketMail
	err   error
}

func (f *fakeMailer) SendTicket(toEmail string, mail mailer.TicketMail) error {
	f.to = append(f.to, toEmail)
	f.mails = append(f.mails, mail)
	return f.err
}

func sampleEscalation() events.BaseEvent {
	return events.NewTicketEscalated(events.TicketPayload{
		TicketID:     "t-1",
		OrgID:        "org-1",
		Category:     "vpn",
		Summary:      "VPN down",
		RenderedText: "Summary: VPN down\n",
	})
}

func TestHandleMailsWithoutForwarder(t *testing.T) {
	b := &fakeBroadcaster{got: make(chan events.TicketPayload, 1)}
	m := &fakeMailer{}
	c := NewTicketEventConsumer(nil, b, nil, m, "helpdesk@example.com", logger.NewNopLogger())

	require.NoError(t, c.Handle(context.Background(), sampleEscalation()))
	assert.Equal(t, "t-1", (<-b.got).TicketID)
	require.Len(t, m.mails, 1)
	assert.Equal(t, "helpdesk@example.com", m.to[0])
	assert.Equal(t, "Summary: VPN down\n", m.mails[0].RenderedText)
}

func TestHandleForwardsInsteadOfMailing(t *testing.T) {
	m := &fakeMailer{}
	fwd := &recordingPublisher{}
	c := NewTicketEventConsumer(nil, nil, fwd, m, "helpdesk@example.com", logger.NewNopLogger())

	require.NoError(t, c.Handle(context.Background(), sampleEscalation()))
	assert.Len(t, fwd.events, 1)
	assert.Empty(t, m.mails)
}

func TestMailIgnoresClosedTicketsAndReportsErrors(t *testing.T) {
	m := &fakeMailer{err: errors.New("smtp down")}
	c := NewTicketEventConsumer(nil, nil, nil, m, "helpdesk@example.com", logger.NewNopLogger())

	closed := events.NewTicketClosed(events.TicketPayload{TicketID: "t-1"})
	require.NoError(t, c.Mail(context.Background(), closed))
	assert.Empty(t, m.mails)

	assert.EqualError(t, c.Mail(context.Background(), sampleEscalation()), "smtp down")
}

func TestConsumeFromBus(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()
	bus := events.NewBus(pubSub, "ticket_events")

	b := &fakeBroadcaster{got: make(chan events.TicketPayload, 1)}
	c := NewTicketEventConsumer(bus, b, nil, nil, "", logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Consume(ctx) }()

	require.Eventually(t, func() bool {
		_ = bus.Publish(ctx, sampleEscalation())
		select {
		case p := <-b.got:
			return p.TicketID == "t-1"
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}
