package implementation

import (
	"context"
	"errors"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/mapper"
	"pin-support-be/internal/model"
	"pin-support-be/internal/repository/contract"
	"pin-support-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SupportSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SupportMapper
}

func NewSupportSessionRepository(db *gorm.DB) contract.SupportSessionRepository {
	return &SupportSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSupportMapper(),
	}
}

func (r *SupportSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SupportSessionRepositoryImpl) Create(ctx context.Context, session *entity.SupportSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SupportSessionRepositoryImpl) Update(ctx context.Context, session *entity.SupportSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SupportSessionRepositoryImpl) FindById(ctx context.Context, id string) (*entity.SupportSession, error) {
	var m model.SupportSession
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SupportSessionRepositoryImpl) ListOpenByOrg(ctx context.Context, orgId string, limit int) ([]*entity.SupportSession, error) {
	var models []*model.SupportSession
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByOrgID{OrgID: orgId},
		specification.ByStatus{Status: string(entity.SessionStatusOpen)},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.SupportSession, len(models))
	for i, m := range models {
		out[i] = r.mapper.SessionToEntity(m)
	}
	return out, nil
}
