package entity

import (
	"time"

	"pin-support-be/pkg/retrieval"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type SupportMessage struct {
	Id        uuid.UUID
	SessionId string
	Role      string
	Content   string
	Citations []retrieval.Citation
	CreatedAt time.Time
}
