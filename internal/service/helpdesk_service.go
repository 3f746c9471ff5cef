package service

import (
	"context"
	"fmt"
	"time"

	"pin-support-be/internal/dto"
	"pin-support-be/internal/entity"
	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/repository/unitofwork"
	"pin-support-be/pkg/events"
	"pin-support-be/pkg/locker"

	"github.com/google/uuid"
)

const defaultListLimit = 50

type IHelpdeskService interface {
	ListOpenSessions(ctx context.Context, req *dto.ListSessionsRequest) ([]*dto.SessionResponse, error)
	ListTickets(ctx context.Context, req *dto.ListTicketsRequest) ([]*dto.TicketSummaryResponse, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*dto.TicketDetailResponse, error)
	CloseTicket(ctx context.Context, id uuid.UUID) (*dto.TicketDetailResponse, error)
}

type helpdeskService struct {
	uowFactory unitofwork.RepositoryFactory
	locker     locker.Locker
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewHelpdeskService(
	uowFactory unitofwork.RepositoryFactory,
	lock locker.Locker,
	publisher events.Publisher,
	log logger.ILogger,
) IHelpdeskService {
	return &helpdeskService{
		uowFactory: uowFactory,
		locker:     lock,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func (s *helpdeskService) ListOpenSessions(ctx context.Context, req *dto.ListSessionsRequest) ([]*dto.SessionResponse, error) {
	sessions, err := s.uowFactory.NewUnitOfWork(ctx).SessionRepository().ListOpenByOrg(ctx, req.OrgId, limitOrDefault(req.Limit))
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SessionResponse, len(sessions))
	for i, sess := range sessions {
		out[i] = toSessionResponse(sess)
	}
	return out, nil
}

func (s *helpdeskService) ListTickets(ctx context.Context, req *dto.ListTicketsRequest) ([]*dto.TicketSummaryResponse, error) {
	tickets, err := s.uowFactory.NewUnitOfWork(ctx).TicketRepository().
		ListByOrgAndStatus(ctx, req.OrgId, entity.TicketStatus(req.Status), limitOrDefault(req.Limit))
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TicketSummaryResponse, len(tickets))
	for i, t := range tickets {
		out[i] = toTicketSummary(t)
	}
	return out, nil
}

func (s *helpdeskService) GetTicket(ctx context.Context, id uuid.UUID) (*dto.TicketDetailResponse, error) {
	t, err := s.uowFactory.NewUnitOfWork(ctx).TicketRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTicketNotFound
	}
	return toTicketDetail(t), nil
}

// CloseTicket closes the ticket and its session in one transaction. Closing
// an already closed ticket returns it unchanged.
func (s *helpdeskService) CloseTicket(ctx context.Context, id uuid.UUID) (*dto.TicketDetailResponse, error) {
	lookup := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := lookup.TicketRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTicketNotFound
	}

	unlock, err := s.locker.Lock(ctx, existing.SessionId)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	t, err := uow.TicketRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTicketNotFound
	}
	if t.Status == entity.TicketStatusClosed {
		return toTicketDetail(t), nil
	}

	now := s.now()
	t.Status = entity.TicketStatusClosed
	t.ClosedAt = &now
	if err := uow.TicketRepository().Update(ctx, t); err != nil {
		return nil, fmt.Errorf("close ticket: %w", err)
	}

	sess, err := uow.SessionRepository().FindById(ctx, t.SessionId)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		sess.Status = entity.SessionStatusClosed
		if err := uow.SessionRepository().Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("close session: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("HELPDESK", "Ticket closed", map[string]interface{}{
		"ticket_id":  t.Id.String(),
		"session_id": t.SessionId,
	})
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewTicketClosed(ticketPayload(t))); err != nil {
			s.logger.Error("HELPDESK", "Failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	return toTicketDetail(t), nil
}

func toTicketSummary(t *entity.Ticket) *dto.TicketSummaryResponse {
	return &dto.TicketSummaryResponse{
		Id:               t.Id.String(),
		SessionId:        t.SessionId,
		OrgId:            t.OrgId,
		Summary:          t.Summary,
		Category:         t.Category,
		Impact:           t.Impact,
		Urgency:          t.Urgency,
		Status:           string(t.Status),
		EscalationReason: t.EscalationReason,
		CreatedAt:        t.CreatedAt,
	}
}

func toTicketDetail(t *entity.Ticket) *dto.TicketDetailResponse {
	return &dto.TicketDetailResponse{
		TicketSummaryResponse: *toTicketSummary(t),
		UserId:                t.UserId,
		User:                  t.User,
		Device:                t.Device,
		Diagnostics:           t.Diagnostics,
		StepsAttempted:        t.StepsAttempted,
		ErrorText:             t.ErrorText,
		Citations:             t.Citations,
		RenderedText:          t.RenderedText,
		ClosedAt:              t.ClosedAt,
	}
}
