package memory

import (
	"context"
	"sort"
	"time"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/repository/contract"

	"github.com/google/uuid"
)

type TicketRepository struct {
	store *Store
}

func NewTicketRepository(store *Store) contract.TicketRepository {
	return &TicketRepository{store: store}
}

func copyTicket(t *entity.Ticket) *entity.Ticket {
	c := *t
	c.User = cloneMap(t.User)
	c.Device = cloneMap(t.Device)
	c.Diagnostics = cloneMap(t.Diagnostics)
	c.StepsAttempted = cloneSlice(t.StepsAttempted)
	c.Citations = cloneSlice(t.Citations)
	return &c
}

func (r *TicketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	if ticket.Id == uuid.Nil {
		ticket.Id = uuid.New()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	r.store.set(ticketPrefix+ticket.Id.String(), copyTicket(ticket))
	return nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *entity.Ticket) error {
	now := time.Now()
	ticket.UpdatedAt = &now
	r.store.set(ticketPrefix+ticket.Id.String(), copyTicket(ticket))
	return nil
}

func (r *TicketRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	v, ok := r.store.get(ticketPrefix + id.String())
	if !ok {
		return nil, nil
	}
	return copyTicket(v.(*entity.Ticket)), nil
}

func (r *TicketRepository) FindBySession(ctx context.Context, sessionId string) (*entity.Ticket, error) {
	var latest *entity.Ticket
	for _, v := range r.store.itemsWithPrefix(ticketPrefix) {
		t := v.(*entity.Ticket)
		if t.SessionId != sessionId {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyTicket(latest), nil
}

func (r *TicketRepository) ListByOrgAndStatus(ctx context.Context, orgId string, status entity.TicketStatus, limit int) ([]*entity.Ticket, error) {
	out := []*entity.Ticket{}
	for _, v := range r.store.itemsWithPrefix(ticketPrefix) {
		t := v.(*entity.Ticket)
		if orgId != "" && t.OrgId != orgId {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, copyTicket(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
