package dto

import (
	"time"

	"pin-support-be/pkg/retrieval"
	"pin-support-be/pkg/ticket"
)

const (
	ChatResponseQuestion = "question"
	ChatResponseAnswer   = "answer"
	ChatResponseTicket   = "ticket"
)

type CreateSessionRequest struct {
	OrgId  string `json:"org_id" validate:"required,max=64"`
	UserId string `json:"user_id" validate:"required,max=64"`
}

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

type ChatRequest struct {
	SessionId string         `json:"session_id" validate:"omitempty,max=64"`
	OrgId     string         `json:"org_id" validate:"required,max=64"`
	UserId    string         `json:"user_id" validate:"required,max=64"`
	Message   string         `json:"message" validate:"required"`
	Context   map[string]any `json:"context"`
}

// ChatResponse is exactly one of a question, an answer or a ticket, told
// apart by Type.
type ChatResponse struct {
	Type         string               `json:"type"`
	SessionId    string               `json:"session_id"`
	Message      string               `json:"message,omitempty"`
	NextQuestion string               `json:"next_question,omitempty"`
	Citations    []retrieval.Citation `json:"citations"`
	Collected    map[string]any       `json:"collected"`
	TicketId     string               `json:"ticket_id,omitempty"`
	Ticket       *ticket.Ticket       `json:"ticket,omitempty"`
	Rendered     string               `json:"rendered,omitempty"`
}

type SessionResponse struct {
	Id             string         `json:"id"`
	OrgId          string         `json:"org_id"`
	UserId         string         `json:"user_id"`
	Turns          int            `json:"turns"`
	Category       *string        `json:"category"`
	Status         string         `json:"status"`
	Collected      map[string]any `json:"collected"`
	StepsAttempted []string       `json:"steps_attempted"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at"`
}

type MessageResponse struct {
	Id        string               `json:"id"`
	Role      string               `json:"role"`
	Content   string               `json:"content"`
	Citations []retrieval.Citation `json:"citations"`
	CreatedAt time.Time            `json:"created_at"`
}
