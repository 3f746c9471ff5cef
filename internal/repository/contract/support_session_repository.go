package contract

import (
	"context"

	"pin-support-be/internal/entity"
)

type SupportSessionRepository interface {
	Create(ctx context.Context, session *entity.SupportSession) error
	Update(ctx context.Context, session *entity.SupportSession) error
	// FindById returns nil, nil when the session does not exist.
	FindById(ctx context.Context, id string) (*entity.SupportSession, error)
	ListOpenByOrg(ctx context.Context, orgId string, limit int) ([]*entity.SupportSession, error)
}
