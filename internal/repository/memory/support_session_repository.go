package memory

import (
	"context"
	"sort"
	"time"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/repository/contract"
)

type SupportSessionRepository struct {
	store *Store
}

func NewSupportSessionRepository(store *Store) contract.SupportSessionRepository {
	return &SupportSessionRepository{store: store}
}

func copySession(s *entity.SupportSession) *entity.SupportSession {
	c := *s
	if s.Category != nil {
		category := *s.Category
		c.Category = &category
	}
	c.Collected = cloneMap(s.Collected)
	c.StepsAttempted = cloneSlice(s.StepsAttempted)
	if s.UpdatedAt != nil {
		updated := *s.UpdatedAt
		c.UpdatedAt = &updated
	}
	return &c
}

func (r *SupportSessionRepository) Create(ctx context.Context, session *entity.SupportSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.store.set(sessionPrefix+session.Id, copySession(session))
	return nil
}

func (r *SupportSessionRepository) Update(ctx context.Context, session *entity.SupportSession) error {
	now := time.Now()
	session.UpdatedAt = &now
	r.store.set(sessionPrefix+session.Id, copySession(session))
	return nil
}

func (r *SupportSessionRepository) FindById(ctx context.Context, id string) (*entity.SupportSession, error) {
	v, ok := r.store.get(sessionPrefix + id)
	if !ok {
		return nil, nil
	}
	return copySession(v.(*entity.SupportSession)), nil
}

func (r *SupportSessionRepository) ListOpenByOrg(ctx context.Context, orgId string, limit int) ([]*entity.SupportSession, error) {
	var out []*entity.SupportSession
	for _, v := range r.store.itemsWithPrefix(sessionPrefix) {
		s := v.(*entity.SupportSession)
		if s.Status != entity.SessionStatusOpen {
			continue
		}
		if orgId != "" && s.OrgId != orgId {
			continue
		}
		out = append(out, copySession(s))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lastActivity(out[i]).After(lastActivity(out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func lastActivity(s *entity.SupportSession) time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}
