package mapper

import (
	"pin-support-be/internal/entity"
	"pin-support-be/internal/model"
	"pin-support-be/pkg/retrieval"

	"github.com/pgvector/pgvector-go"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) DocumentToModel(d *entity.KnowledgeDocument) *model.KnowledgeDocument {
	if d == nil {
		return nil
	}
	return &model.KnowledgeDocument{
		Id:         d.Id,
		Title:      d.Title,
		Category:   d.Category,
		SourcePath: d.SourcePath,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *KnowledgeMapper) ChunkToModel(c *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}
	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}
	return &model.KnowledgeChunk{
		Id:           c.Id,
		DocumentId:   c.DocumentId,
		SectionTitle: c.SectionTitle,
		Text:         c.Text,
		Embedding:    embedding,
		CreatedAt:    c.CreatedAt,
	}
}

// ChunkToRetrieval flattens a chunk and its preloaded document into the shape
// the retrieval engines rank.
func (m *KnowledgeMapper) ChunkToRetrieval(c *model.KnowledgeChunk) retrieval.Chunk {
	out := retrieval.Chunk{
		ID:           c.Id,
		SectionTitle: c.SectionTitle,
		Text:         c.Text,
	}
	if c.Document != nil {
		out.DocumentTitle = c.Document.Title
		out.SourcePath = c.Document.SourcePath
	}
	return out
}
