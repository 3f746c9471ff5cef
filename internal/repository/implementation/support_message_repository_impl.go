package implementation

import (
	"context"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/mapper"
	"pin-support-be/internal/model"
	"pin-support-be/internal/repository/contract"
	"pin-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupportMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SupportMapper
}

func NewSupportMessageRepository(db *gorm.DB) contract.SupportMessageRepository {
	return &SupportMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewSupportMapper(),
	}
}

func (r *SupportMessageRepositoryImpl) Create(ctx context.Context, message *entity.SupportMessage) error {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *SupportMessageRepositoryImpl) ListBySession(ctx context.Context, sessionId string) ([]*entity.SupportMessage, error) {
	var models []*model.SupportMessage
	query := r.db.WithContext(ctx)
	for _, spec := range []specification.Specification{
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	} {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}
