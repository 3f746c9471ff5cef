package factory

import (
	"fmt"
	"time"

	"pin-support-be/pkg/embedding"
	"pin-support-be/pkg/embedding/jina"
)

type Config struct {
	Provider  string
	Dimension int
	Timeout   time.Duration

	OllamaBaseURL string
	OllamaModel   string
	GeminiAPIKey  string
	JinaAPIKey    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

func NewEmbeddingProvider(cfg Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "", "mock":
		return embedding.NewMockProvider(cfg.Dimension), nil
	case "ollama":
		return embedding.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires an API key")
		}
		return embedding.NewGeminiProvider(cfg.GeminiAPIKey, cfg.Timeout), nil
	case "jina":
		if cfg.JinaAPIKey == "" {
			return nil, fmt.Errorf("jina embedding provider requires an API key")
		}
		return jina.NewJinaProvider(cfg.JinaAPIKey, cfg.Timeout), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an API key")
		}
		return embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
