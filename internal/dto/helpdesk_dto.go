package dto

import (
	"time"

	"pin-support-be/pkg/retrieval"
)

type ListSessionsRequest struct {
	OrgId string `query:"org_id" validate:"omitempty,max=64"`
	Limit int    `query:"limit" validate:"gte=0,lte=200"`
}

type ListTicketsRequest struct {
	OrgId  string `query:"org_id" validate:"omitempty,max=64"`
	Status string `query:"status" validate:"omitempty,oneof=created closed"`
	Limit  int    `query:"limit" validate:"gte=0,lte=200"`
}

type TicketSummaryResponse struct {
	Id               string    `json:"id"`
	SessionId        string    `json:"session_id"`
	OrgId            string    `json:"org_id"`
	Summary          string    `json:"summary"`
	Category         string    `json:"category"`
	Impact           string    `json:"impact"`
	Urgency          string    `json:"urgency"`
	Status           string    `json:"status"`
	EscalationReason string    `json:"escalation_reason"`
	CreatedAt        time.Time `json:"created_at"`
}

type TicketDetailResponse struct {
	TicketSummaryResponse
	UserId         string               `json:"user_id"`
	User           map[string]any       `json:"user"`
	Device         map[string]any       `json:"device"`
	Diagnostics    map[string]any       `json:"diagnostics"`
	StepsAttempted []string             `json:"steps_attempted"`
	ErrorText      string               `json:"error_text,omitempty"`
	Citations      []retrieval.Citation `json:"citations"`
	RenderedText   string               `json:"rendered_text"`
	ClosedAt       *time.Time           `json:"closed_at"`
}
