package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pin-support-be/pkg/capability"
	"pin-support-be/pkg/embedding"
)

type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

var _ embedding.EmbeddingProvider = (*JinaProvider)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaProvider(apiKey string, timeout time.Duration) *JinaProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: "https://api.jina.ai/v1/embeddings",
		model:   "jina-embeddings-v2-base-en", // 768 dimensions
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *JinaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	jsonData, err := json.Marshal(embeddingRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, capability.Wrap("jina", "embed", 0, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, capability.Wrap("jina", "embed", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, capability.Wrap("jina", "embed", resp.StatusCode, errors.New(string(bodyBytes)))
	}

	var jinaResp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &jinaResp); err != nil {
		return nil, capability.Wrap("jina", "embed", resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if jinaResp.Error != nil {
		return nil, capability.Wrap("jina", "embed", resp.StatusCode, errors.New(jinaResp.Error.Message))
	}
	if len(jinaResp.Data) != len(texts) {
		return nil, capability.Wrap("jina", "embed", resp.StatusCode,
			fmt.Errorf("got %d embeddings for %d texts", len(jinaResp.Data), len(texts)))
	}

	out := make([][]float32, len(texts))
	for _, d := range jinaResp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, capability.Wrap("jina", "embed", resp.StatusCode, fmt.Errorf("embedding index %d out of range", d.Index))
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
