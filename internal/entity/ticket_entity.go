package entity

import (
	"time"

	"pin-support-be/pkg/retrieval"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusCreated TicketStatus = "created"
	TicketStatusClosed  TicketStatus = "closed"
)

type Ticket struct {
	Id               uuid.UUID
	OrgId            string
	UserId           string
	SessionId        string
	Summary          string
	Category         string
	Impact           string
	Urgency          string
	Status           TicketStatus
	EscalationReason string
	RenderedText     string
	ErrorText        string
	User             map[string]any
	Device           map[string]any
	Diagnostics      map[string]any
	StepsAttempted   []string
	Citations        []retrieval.Citation
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	ClosedAt         *time.Time
}
