package embedding

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
)

const (
	geminiModel    = "text-embedding-004"
	geminiTaskType = "RETRIEVAL_QUERY"
)

type geminiRequestPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model    string               `json:"model"`
	Content  geminiRequestContent `json:"content"`
	TaskType string               `json:"task_type,omitempty"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiBatchResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

type GeminiProvider struct {
	ApiKey  string
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

var _ EmbeddingProvider = (*GeminiProvider)(nil)

func NewGeminiProvider(apiKey string, timeout time.Duration) *GeminiProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiProvider{
		ApiKey:  apiKey,
		BaseURL: "https://generativelanguage.googleapis.com/v1",
		Timeout: timeout,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	batch := geminiBatchRequest{Requests: make([]geminiEmbedRequest, len(texts))}
	for i, text := range texts {
		batch.Requests[i] = geminiEmbedRequest{
			Model:    "models/" + geminiModel,
			Content:  geminiRequestContent{Parts: []geminiRequestPart{{Text: text}}},
			TaskType: geminiTaskType,
		}
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:batchEmbedContents", p.BaseURL, geminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, capability.Wrap("gemini", "embed", 0, err)
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, capability.Wrap("gemini", "embed", res.StatusCode, err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, capability.Wrap("gemini", "embed", res.StatusCode, errors.New(string(resByte)))
	}

	var parsed geminiBatchResponse
	if err := json.Unmarshal(resByte, &parsed); err != nil {
		return nil, capability.Wrap("gemini", "embed", res.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, capability.Wrap("gemini", "embed", res.StatusCode,
			fmt.Errorf("got %d embeddings for %d texts", len(parsed.Embeddings), len(texts)))
	}

	out := make([][]float32, len(parsed.Embeddings))
	for i, e := range parsed.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
