package session

import (
	"context"
	"testing"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreatePolicies(t *testing.T) {
	ctx := context.Background()
	uow := memory.NewRepositoryFactory(memory.NewStore()).NewUnitOfWork(ctx)

	rejecting := NewManager(false)
	s, err := rejecting.LoadOrCreate(ctx, uow, "client-id", "org", "user")
	require.NoError(t, err)
	assert.Nil(t, s)

	creating := NewManager(true)
	s, err = creating.LoadOrCreate(ctx, uow, "client-id", "org", "user")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "client-id", s.Id)
	assert.Equal(t, entity.SessionStatusOpen, s.Status)

	s.Turns = 3
	require.NoError(t, creating.Save(ctx, uow, s))

	again, err := rejecting.LoadOrCreate(ctx, uow, "client-id", "org", "other-user")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, 3, again.Turns)
	assert.Equal(t, "org", again.OrgId)
}

func TestLoadOrCreateHidesOtherOrgSessions(t *testing.T) {
	ctx := context.Background()
	uow := memory.NewRepositoryFactory(memory.NewStore()).NewUnitOfWork(ctx)
	creating := NewManager(true)

	owned, err := creating.LoadOrCreate(ctx, uow, "shared-id", "org-1", "user")
	require.NoError(t, err)
	require.NotNil(t, owned)

	for _, m := range []*Manager{NewManager(false), creating} {
		s, err := m.LoadOrCreate(ctx, uow, "shared-id", "org-2", "user")
		require.NoError(t, err)
		assert.Nil(t, s)
	}

	stored, err := uow.SessionRepository().FindById(ctx, "shared-id")
	require.NoError(t, err)
	assert.Equal(t, "org-1", stored.OrgId)
}

func TestCreateGeneratesId(t *testing.T) {
	ctx := context.Background()
	uow := memory.NewRepositoryFactory(memory.NewStore()).NewUnitOfWork(ctx)

	s, err := NewManager(false).Create(ctx, uow, "  ", "org", "user")
	require.NoError(t, err)
	assert.Len(t, s.Id, 36)
}
