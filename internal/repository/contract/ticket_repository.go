package contract

import (
	"context"

	"pin-support-be/internal/entity"

	"github.com/google/uuid"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	Update(ctx context.Context, ticket *entity.Ticket) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	FindBySession(ctx context.Context, sessionId string) (*entity.Ticket, error)
	// ListByOrgAndStatus lists newest first; empty orgId or status matches all.
	ListByOrgAndStatus(ctx context.Context, orgId string, status entity.TicketStatus, limit int) ([]*entity.Ticket, error)
}
