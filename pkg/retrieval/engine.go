package retrieval

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// DefaultTopK is used when a caller asks for zero or fewer results.
const DefaultTopK = 5

const maxSnippetLength = 240

// ErrInvalidIndex marks a knowledge index that cannot serve queries, e.g. an
// embedding dimension that does not match the configured one.
var ErrInvalidIndex = errors.New("invalid retrieval index")

// Citation is a scored reference to a knowledge excerpt.
type Citation struct {
	SourceID string  `json:"source_id"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
}

// Engine ranks knowledge excerpts against a query. Citations come back in
// non-increasing score order; the second value is the score of the first
// citation, or 0 when nothing matched.
type Engine interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Citation, float64, error)
}

// Chunk is one indexed section of a knowledge base document.
type Chunk struct {
	ID            string
	SourcePath    string
	DocumentTitle string
	SectionTitle  string
	Text          string
}

// Neighbor is a chunk returned by a nearest-neighbour search with its cosine
// distance to the query vector.
type Neighbor struct {
	Chunk    Chunk
	Distance float64
}

// ChunkSource lists every indexed chunk.
type ChunkSource interface {
	ListChunks(ctx context.Context) ([]Chunk, error)
}

// VectorIndex answers nearest-neighbour queries over chunk embeddings.
type VectorIndex interface {
	NearestChunks(ctx context.Context, vector []float32, limit int) ([]Neighbor, error)
	EmbeddingDimensions(ctx context.Context) ([]int, error)
}

type scoredChunk struct {
	chunk Chunk
	score float64
}

func normalizeTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	return topK
}

// rank orders by score descending and chunk id ascending, then keeps topK.
func rank(scored []scoredChunk, topK int) []Citation {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].chunk.ID < scored[j].chunk.ID
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	citations := make([]Citation, 0, len(scored))
	for _, s := range scored {
		citations = append(citations, NewCitation(s.chunk, s.score))
	}
	return citations
}

func bestScore(citations []Citation) float64 {
	if len(citations) == 0 {
		return 0
	}
	return citations[0].Score
}

// NewCitation builds the citation shown to users for a matched chunk.
func NewCitation(c Chunk, score float64) Citation {
	sourceID := c.SourcePath
	title := c.DocumentTitle
	if c.SectionTitle != "" {
		sourceID = sourceID + "#" + c.SectionTitle
		title = title + " — " + c.SectionTitle
	}
	return Citation{
		SourceID: sourceID,
		Title:    title,
		Snippet:  Snippet(c.Text),
		Score:    clampScore(score),
	}
}

// Snippet flattens text onto one line and caps it at 240 characters, adding
// "..." when it had to cut.
func Snippet(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	runes := []rune(s)
	if len(runes) <= maxSnippetLength {
		return s
	}
	return strings.TrimRight(string(runes[:maxSnippetLength]), " \t") + "..."
}

func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
