package memory

import (
	"context"
	"testing"
	"time"

	"pin-support-be/internal/entity"
	"pin-support-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTripIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	repo := NewSupportSessionRepository(NewStore())

	s := entity.NewSupportSession("s-1", "org", "user")
	s.Collected["os"] = "Windows"
	s.SetCategory("vpn")
	require.NoError(t, repo.Create(ctx, s))

	s.Collected["os"] = "Linux"

	got, err := repo.FindById(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Windows", got.Collected["os"])
	assert.Equal(t, "vpn", got.CategoryOrEmpty())

	got.StepsAttempted = append(got.StepsAttempted, "rebooted")
	again, err := repo.FindById(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, again.StepsAttempted)
}

func TestSessionFindMissing(t *testing.T) {
	got, err := NewSupportSessionRepository(NewStore()).FindById(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListOpenByOrg(t *testing.T) {
	ctx := context.Background()
	repo := NewSupportSessionRepository(NewStore())

	open := entity.NewSupportSession("a", "org-1", "u")
	escalated := entity.NewSupportSession("b", "org-1", "u")
	escalated.Status = entity.SessionStatusEscalated
	other := entity.NewSupportSession("c", "org-2", "u")
	for _, s := range []*entity.SupportSession{open, escalated, other} {
		require.NoError(t, repo.Create(ctx, s))
	}

	got, err := repo.ListOpenByOrg(ctx, "org-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Id)

	all, err := repo.ListOpenByOrg(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMessagesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSupportMessageRepository(NewStore())

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &entity.SupportMessage{
			SessionId: "s-1",
			Role:      entity.MessageRoleUser,
			Content:   content,
		}))
	}

	got, err := repo.ListBySession(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "third", got[2].Content)
	assert.NotEqual(t, got[0].Id, got[1].Id)

	empty, err := repo.ListBySession(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTicketLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(NewStore())

	older := &entity.Ticket{OrgId: "org", SessionId: "s-1", Status: entity.TicketStatusCreated, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &entity.Ticket{OrgId: "org", SessionId: "s-2", Status: entity.TicketStatusClosed, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	byId, err := repo.FindById(ctx, older.Id)
	require.NoError(t, err)
	require.NotNil(t, byId)
	assert.Equal(t, "s-1", byId.SessionId)

	bySession, err := repo.FindBySession(ctx, "s-2")
	require.NoError(t, err)
	require.NotNil(t, bySession)
	assert.Equal(t, newer.Id, bySession.Id)

	list, err := repo.ListByOrgAndStatus(ctx, "org", "", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.Id, list[0].Id)

	created, err := repo.ListByOrgAndStatus(ctx, "org", entity.TicketStatusCreated, 0)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, older.Id, created[0].Id)
}

func TestKnowledgeNearestChunks(t *testing.T) {
	ctx := context.Background()
	repo := NewKnowledgeRepository(NewStore())

	require.NoError(t, repo.SaveDocument(ctx, &entity.KnowledgeDocument{Id: "vpn", Title: "VPN", SourcePath: "kb/vpn.md"}))
	require.NoError(t, repo.SaveChunks(ctx, []*entity.KnowledgeChunk{
		{Id: "vpn:b", DocumentId: "vpn", SectionTitle: "Errors", Text: "error 809", Embedding: []float32{1, 0}},
		{Id: "vpn:a", DocumentId: "vpn", SectionTitle: "Setup", Text: "install", Embedding: []float32{0, 1}},
		{Id: "vpn:c", DocumentId: "vpn", SectionTitle: "Pending", Text: "not embedded"},
	}))

	count, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	neighbors, err := repo.NearestChunks(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, "vpn:b", neighbors[0].Chunk.ID)
	assert.Equal(t, "kb/vpn.md", neighbors[0].Chunk.SourcePath)
	assert.Equal(t, "VPN", neighbors[0].Chunk.DocumentTitle)
	assert.InDelta(t, 0, neighbors[0].Distance, 1e-9)
	assert.InDelta(t, 1, neighbors[1].Distance, 1e-9)

	dims, err := repo.EmbeddingDimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, dims)

	chunks, err := repo.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "vpn:a", chunks[0].ID)
}

func TestUnitOfWorkTransactionState(t *testing.T) {
	uow := NewRepositoryFactory(NewStore()).NewUnitOfWork(context.Background())

	assert.Error(t, uow.Commit())
	require.NoError(t, uow.Begin(context.Background()))
	assert.Error(t, uow.Begin(context.Background()))
	require.NoError(t, uow.Rollback())
	assert.Error(t, uow.Rollback())
}

var _ retrieval.VectorIndex = (*KnowledgeRepository)(nil)
