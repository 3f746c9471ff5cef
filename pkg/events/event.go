package events

import "time"

const (
	TypeTicketEscalated = "TICKET_ESCALATED"
	TypeTicketClosed    = "TICKET_CLOSED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TICKET_ESCALATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// TicketPayload is the subset of a ticket carried on the bus.
type TicketPayload struct {
	TicketID         string `json:"ticket_id"`
	SessionID        string `json:"session_id"`
	OrgID            string `json:"org_id"`
	Category         string `json:"category"`
	Summary          string `json:"summary"`
	EscalationReason string `json:"escalation_reason"`
	RenderedText     string `json:"rendered_text"`
}

func (p TicketPayload) toMap() map[string]interface{} {
	return map[string]interface{}{
		"ticket_id":         p.TicketID,
		"session_id":        p.SessionID,
		"org_id":            p.OrgID,
		"category":          p.Category,
		"summary":           p.Summary,
		"escalation_reason": p.EscalationReason,
		"rendered_text":     p.RenderedText,
	}
}

func NewTicketEscalated(p TicketPayload) BaseEvent {
	return BaseEvent{Type: TypeTicketEscalated, Data: p.toMap(), OccurredAt: time.Now()}
}

func NewTicketClosed(p TicketPayload) BaseEvent {
	return BaseEvent{Type: TypeTicketClosed, Data: p.toMap(), OccurredAt: time.Now()}
}

// TicketPayloadFrom reads a payload back from a decoded event map. Missing
// keys become empty strings.
func TicketPayloadFrom(data map[string]interface{}) TicketPayload {
	str := func(k string) string {
		s, _ := data[k].(string)
		return s
	}
	return TicketPayload{
		TicketID:         str("ticket_id"),
		SessionID:        str("session_id"),
		OrgID:            str("org_id"),
		Category:         str("category"),
		Summary:          str("summary"),
		EscalationReason: str("escalation_reason"),
		RenderedText:     str("rendered_text"),
	}
}
