package contract

import (
	"context"

	"pin-support-be/internal/entity"
)

type SupportMessageRepository interface {
	Create(ctx context.Context, message *entity.SupportMessage) error
	// ListBySession returns the transcript oldest first.
	ListBySession(ctx context.Context, sessionId string) ([]*entity.SupportMessage, error)
}
