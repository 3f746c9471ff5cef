package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPayloadSurvivesJSON(t *testing.T) {
	p := TicketPayload{
		TicketID:         "t-1",
		SessionID:        "s-1",
		OrgID:            "org",
		Category:         "vpn",
		Summary:          "VPN drops",
		EscalationReason: "Exceeded max turns (6)",
		RenderedText:     "Summary: VPN drops",
	}
	ev := NewTicketEscalated(p)
	assert.Equal(t, TypeTicketEscalated, ev.EventType())
	assert.False(t, ev.Timestamp().IsZero())

	raw, err := json.Marshal(ev.Payload())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, p, TicketPayloadFrom(decoded))
}

func TestTicketPayloadFromMissingKeys(t *testing.T) {
	got := TicketPayloadFrom(map[string]interface{}{"ticket_id": "t-1", "org_id": 42})
	assert.Equal(t, "t-1", got.TicketID)
	assert.Empty(t, got.OrgID)
}
