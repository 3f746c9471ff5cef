package memory

import (
	"context"
	"sort"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/repository/contract"
	"pin-support-be/pkg/retrieval"
)

type KnowledgeRepository struct {
	store *Store
}

func NewKnowledgeRepository(store *Store) contract.KnowledgeRepository {
	return &KnowledgeRepository{store: store}
}

func (r *KnowledgeRepository) SaveDocument(ctx context.Context, doc *entity.KnowledgeDocument) error {
	c := *doc
	r.store.set(documentPrefix+doc.Id, &c)
	return nil
}

func (r *KnowledgeRepository) SaveChunks(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	for _, chunk := range chunks {
		c := *chunk
		c.Embedding = cloneSlice(chunk.Embedding)
		r.store.set(chunkPrefix+chunk.Id, &c)
	}
	return nil
}

func (r *KnowledgeRepository) CountChunks(ctx context.Context) (int64, error) {
	return int64(len(r.store.itemsWithPrefix(chunkPrefix))), nil
}

func (r *KnowledgeRepository) toRetrieval(c *entity.KnowledgeChunk) retrieval.Chunk {
	out := retrieval.Chunk{
		ID:           c.Id,
		SectionTitle: c.SectionTitle,
		Text:         c.Text,
	}
	if v, ok := r.store.get(documentPrefix + c.DocumentId); ok {
		doc := v.(*entity.KnowledgeDocument)
		out.SourcePath = doc.SourcePath
		out.DocumentTitle = doc.Title
	}
	return out
}

func (r *KnowledgeRepository) chunks() []*entity.KnowledgeChunk {
	items := r.store.itemsWithPrefix(chunkPrefix)
	out := make([]*entity.KnowledgeChunk, len(items))
	for i, v := range items {
		out[i] = v.(*entity.KnowledgeChunk)
	}
	return out
}

func (r *KnowledgeRepository) ListChunks(ctx context.Context) ([]retrieval.Chunk, error) {
	stored := r.chunks()
	out := make([]retrieval.Chunk, len(stored))
	for i, c := range stored {
		out[i] = r.toRetrieval(c)
	}
	return out, nil
}

// NearestChunks is a linear scan using cosine distance, matching the pgvector
// <=> operator.
func (r *KnowledgeRepository) NearestChunks(ctx context.Context, vector []float32, limit int) ([]retrieval.Neighbor, error) {
	if limit <= 0 {
		limit = retrieval.DefaultTopK
	}
	out := []retrieval.Neighbor{}
	for _, c := range r.chunks() {
		if len(c.Embedding) == 0 {
			continue
		}
		out = append(out, retrieval.Neighbor{
			Chunk:    r.toRetrieval(c),
			Distance: retrieval.CosineDistance(vector, c.Embedding),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *KnowledgeRepository) EmbeddingDimensions(ctx context.Context) ([]int, error) {
	seen := map[int]bool{}
	dims := []int{}
	for _, c := range r.chunks() {
		if len(c.Embedding) == 0 || seen[len(c.Embedding)] {
			continue
		}
		seen[len(c.Embedding)] = true
		dims = append(dims, len(c.Embedding))
	}
	sort.Ints(dims)
	return dims, nil
}
