package contract

import (
	"context"

	"pin-support-be/internal/entity"
	"pin-support-be/pkg/retrieval"
)

// KnowledgeRepository reads the already-ingested knowledge base and feeds
// both retrieval backends.
type KnowledgeRepository interface {
	retrieval.ChunkSource
	retrieval.VectorIndex

	SaveDocument(ctx context.Context, doc *entity.KnowledgeDocument) error
	SaveChunks(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	CountChunks(ctx context.Context) (int64, error)
}
