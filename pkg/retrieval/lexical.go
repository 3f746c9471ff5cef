package retrieval

import (
	"context"
	"fmt"
)

// LexicalEngine scores chunks by TF-IDF cosine similarity. The index is built
// once and is read-only afterwards.
type LexicalEngine struct {
	chunks []Chunk
	index  *tfidfIndex
}

var _ Engine = (*LexicalEngine)(nil)

func NewLexicalEngine(chunks []Chunk) *LexicalEngine {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return &LexicalEngine{
		chunks: chunks,
		index:  buildTFIDF(texts),
	}
}

// BuildLexicalEngine loads every chunk from src and indexes it.
func BuildLexicalEngine(ctx context.Context, src ChunkSource) (*LexicalEngine, error) {
	chunks, err := src.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge chunks: %w", err)
	}
	return NewLexicalEngine(chunks), nil
}

// Size is the number of indexed chunks.
func (e *LexicalEngine) Size() int {
	return len(e.chunks)
}

func (e *LexicalEngine) Retrieve(ctx context.Context, query string, topK int) ([]Citation, float64, error) {
	topK = normalizeTopK(topK)
	if len(e.chunks) == 0 {
		return []Citation{}, 0, nil
	}

	q := e.index.vectorize(query)
	if len(q) == 0 {
		return []Citation{}, 0, nil
	}

	var scored []scoredChunk
	for i, doc := range e.index.documents {
		if s := cosine(q, doc); s > 0 {
			scored = append(scored, scoredChunk{chunk: e.chunks[i], score: s})
		}
	}

	citations := rank(scored, topK)
	return citations, bestScore(citations), nil
}
