package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pin-support-be/pkg/embedding"
)

// VectorEngine embeds the query and runs a cosine KNN search over the chunk
// embeddings.
type VectorEngine struct {
	index     VectorIndex
	embedder  embedding.EmbeddingProvider
	dimension int
}

var _ Engine = (*VectorEngine)(nil)

func NewVectorEngine(index VectorIndex, embedder embedding.EmbeddingProvider, dimension int) *VectorEngine {
	return &VectorEngine{
		index:     index,
		embedder:  embedder,
		dimension: dimension,
	}
}

// Validate checks that every stored embedding has the configured dimension.
func (e *VectorEngine) Validate(ctx context.Context) error {
	dims, err := e.index.EmbeddingDimensions(ctx)
	if err != nil {
		return fmt.Errorf("%w: inspect embeddings: %v", ErrInvalidIndex, err)
	}
	for _, d := range dims {
		if d != e.dimension {
			return fmt.Errorf("%w: stored embedding dimension %d, configured %d", ErrInvalidIndex, d, e.dimension)
		}
	}
	return nil
}

func (e *VectorEngine) Retrieve(ctx context.Context, query string, topK int) ([]Citation, float64, error) {
	topK = normalizeTopK(topK)

	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, 0, err
	}
	if len(vectors) != 1 {
		return nil, 0, fmt.Errorf("embedding returned %d vectors for 1 query", len(vectors))
	}

	neighbors, err := e.index.NearestChunks(ctx, vectors[0], topK)
	if err != nil {
		return nil, 0, fmt.Errorf("nearest chunks: %w", err)
	}
	if len(neighbors) == 0 {
		return []Citation{}, 0, nil
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Chunk.ID < neighbors[j].Chunk.ID
	})

	scored := make([]scoredChunk, len(neighbors))
	for i, n := range neighbors {
		scored[i] = scoredChunk{chunk: n.Chunk, score: math.Max(0, 1-n.Distance)}
	}

	citations := rank(scored, topK)
	return citations, bestScore(citations), nil
}

// CosineDistance is 1 minus the cosine similarity of a and b, matching the
// pgvector <=> operator. Zero vectors are treated as maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
