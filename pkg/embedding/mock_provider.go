package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// MockProvider hashes words into a fixed number of buckets. Texts sharing
// words get similar vectors, which is enough for local runs and tests.
type MockProvider struct {
	Dimension int
}

var _ EmbeddingProvider = (*MockProvider)(nil)

func NewMockProvider(dimension int) *MockProvider {
	if dimension <= 0 {
		dimension = 768
	}
	return &MockProvider{Dimension: dimension}
}

func (p *MockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, p.Dimension)
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			vec[h.Sum32()%uint32(p.Dimension)]++
		}
		out[i] = normalizeVector(vec)
	}
	return out, nil
}
