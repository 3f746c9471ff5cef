package mailer

import (
	"bytes"
	"errors"
	"testing"

	"pin-support-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func sampleMail() TicketMail {
	return TicketMail{
		TicketID:     "t-1",
		Category:     "vpn",
		Summary:      "VPN error 809",
		Reason:       "Exceeded max turns (6)",
		RenderedText: "Summary: VPN error 809\n<script>",
	}
}

func TestSendTicket(t *testing.T) {
	d := &fakeDialer{}
	svc := &emailService{dialer: d, senderEmail: "bot@example.com", logger: logger.NewNopLogger()}

	require.NoError(t, svc.SendTicket("helpdesk@example.com", sampleMail()))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"[Support][vpn] VPN error 809"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"helpdesk@example.com"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestSendTicketPropagatesDialError(t *testing.T) {
	d := &fakeDialer{err: errors.New("smtp down")}
	svc := &emailService{dialer: d, senderEmail: "bot@example.com", logger: logger.NewNopLogger()}

	assert.EqualError(t, svc.SendTicket("helpdesk@example.com", sampleMail()), "smtp down")
}
