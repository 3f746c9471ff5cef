package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pin-support-be/pkg/capability"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIEmbeddingModel produces 1536-dimensional vectors.
const DefaultOpenAIEmbeddingModel = openai.SmallEmbedding3

// OpenAIProvider embeds through any OpenAI-compatible /embeddings endpoint.
type OpenAIProvider struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

var _ EmbeddingProvider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(apiKey, baseURL, model string, timeout time.Duration) *OpenAIProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	embeddingModel := DefaultOpenAIEmbeddingModel
	if model != "" {
		embeddingModel = openai.EmbeddingModel(model)
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(cfg),
		model:   embeddingModel,
		timeout: timeout,
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, capability.Wrap("openai", "embed", openAIStatus(err), err)
	}
	if len(resp.Data) != len(texts) {
		return nil, capability.Wrap("openai", "embed", 0, fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts)))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, capability.Wrap("openai", "embed", 0, fmt.Errorf("embedding index %d out of range", d.Index))
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
