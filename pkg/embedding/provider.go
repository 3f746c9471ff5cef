package embedding

import (
	"context"
	"math"

	"pin-support-be/pkg/capability"

	"golang.org/x/time/rate"
)

// EmbeddingProvider turns texts into vectors, one per input and in input
// order. Transport failures and non-success responses come back as
// *capability.Error.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type rateLimitedProvider struct {
	next    EmbeddingProvider
	limiter *rate.Limiter
}

// WithRateLimit throttles calls to next. A nil limiter returns next unchanged.
func WithRateLimit(next EmbeddingProvider, limiter *rate.Limiter) EmbeddingProvider {
	if limiter == nil {
		return next
	}
	return &rateLimitedProvider{next: next, limiter: limiter}
}

func (p *rateLimitedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, capability.Wrap("ratelimit", "embed", 0, err)
	}
	return p.next.Embed(ctx, texts)
}

// normalizeVector scales vec to unit length so pgvector cosine distances are
// comparable across providers.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
