package implementation

import (
	"context"
	"errors"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/mapper"
	"pin-support-be/internal/model"
	"pin-support-be/internal/repository/contract"
	"pin-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SupportMapper
}

func NewTicketRepository(db *gorm.DB) contract.TicketRepository {
	return &TicketRepositoryImpl{
		db:     db,
		mapper: mapper.NewSupportMapper(),
	}
}

func (r *TicketRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *entity.Ticket) error {
	if ticket.Id == uuid.Nil {
		ticket.Id = uuid.New()
	}
	m := r.mapper.TicketToModel(ticket)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*ticket = *r.mapper.TicketToEntity(m)
	return nil
}

func (r *TicketRepositoryImpl) Update(ctx context.Context, ticket *entity.Ticket) error {
	m := r.mapper.TicketToModel(ticket)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*ticket = *r.mapper.TicketToEntity(m)
	return nil
}

func (r *TicketRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Ticket, error) {
	var m model.Ticket
	if err := r.applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TicketToEntity(&m), nil
}

func (r *TicketRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *TicketRepositoryImpl) FindBySession(ctx context.Context, sessionId string) (*entity.Ticket, error) {
	return r.findOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *TicketRepositoryImpl) ListByOrgAndStatus(ctx context.Context, orgId string, status entity.TicketStatus, limit int) ([]*entity.Ticket, error) {
	var models []*model.Ticket
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByOrgID{OrgID: orgId},
		specification.ByStatus{Status: string(status)},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.TicketsToEntities(models), nil
}
