package session

import (
	"context"
	"strings"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Manager handles session lookup and creation
type Manager struct {
	createUnknown bool
}

// NewManager creates a session manager. With createUnknown set, a session id
// that does not exist yet is created under that id instead of being rejected.
func NewManager(createUnknown bool) *Manager {
	return &Manager{createUnknown: createUnknown}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Create persists a new open session.
func (m *Manager) Create(ctx context.Context, uow unitofwork.UnitOfWork, id, orgId, userId string) (*entity.SupportSession, error) {
	if strings.TrimSpace(id) == "" {
		id = NewID()
	}
	s := entity.NewSupportSession(id, orgId, userId)
	if err := uow.SessionRepository().Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadOrCreate returns the stored session, or creates one when the id is
// unknown and the manager allows it. It returns nil, nil for an unknown id
// otherwise, and for a session owned by another org. A foreign session id is
// never re-created.
func (m *Manager) LoadOrCreate(ctx context.Context, uow unitofwork.UnitOfWork, id, orgId, userId string) (*entity.SupportSession, error) {
	s, err := uow.SessionRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if s != nil {
		if s.OrgId != orgId {
			return nil, nil
		}
		return s, nil
	}
	if !m.createUnknown {
		return nil, nil
	}
	return m.Create(ctx, uow, id, orgId, userId)
}

// Save persists the session after a mutation.
func (m *Manager) Save(ctx context.Context, uow unitofwork.UnitOfWork, s *entity.SupportSession) error {
	return uow.SessionRepository().Update(ctx, s)
}
