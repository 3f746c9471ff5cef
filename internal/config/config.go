package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks a startup problem the process must not serve with.
var ErrConfiguration = errors.New("configuration error")

const (
	UnknownSessionCreate = "create"
	UnknownSessionReject = "reject"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	LockDriverLocal = "local"
	LockDriverRedis = "redis"

	RagBackendVector  = "vector"
	RagBackendLexical = "lexical"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Support  SupportConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type SMTPConfig struct {
	Host          string
	Port          int
	Email         string
	Password      string
	SenderName    string
	HelpdeskEmail string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	Jina         string
	HuggingFace  string
	JWTSecret    string
}

type AIConfig struct {
	EmbeddingProvider    string // "mock", "ollama", "gemini", "jina", "openai"
	OllamaBaseURL        string
	OllamaModel          string
	OpenAIBaseURL        string
	OpenAIEmbeddingModel string
	LLMProvider          string // "mock", "ollama", "openai", "huggingface"
	LLMModel             string // e.g. "llama3", "gpt-4o-mini"
	CapabilityTimeout    time.Duration
	CapabilityRateLimit  float64 // requests per second, 0 disables throttling
}

type SupportConfig struct {
	FlowConfigPath       string
	KnowledgeSeedPath    string
	RagBackend           string
	RagTopK              int
	RagMinScore          float64
	RagEmbeddingDim      int
	MaxTurnsEscalate     int
	UnknownSessionPolicy string
	SessionLockDriver    string
	SessionLockTTL       time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvAsInt("SMTP_PORT", 587),
			Email:         getEnv("SMTP_EMAIL", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			SenderName:    getEnv("SMTP_SENDER_NAME", "Support Assistant"),
			HelpdeskEmail: getEnv("HELPDESK_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    strings.ToLower(getEnv("EMBEDDING_PROVIDER", "mock")),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", ""),
			LLMProvider:          strings.ToLower(getEnv("LLM_PROVIDER", "mock")),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			CapabilityTimeout:    getEnvAsDuration("CAPABILITY_TIMEOUT", 30*time.Second),
			CapabilityRateLimit:  getEnvAsFloat("CAPABILITY_RATE_LIMIT", 0),
		},
		Support: SupportConfig{
			FlowConfigPath:       getEnv("FLOW_CONFIG_PATH", "configs/flows.yaml"),
			KnowledgeSeedPath:    getEnv("KB_SEED_PATH", "configs/kb_seed.yaml"),
			RagBackend:           strings.ToLower(getEnv("RAG_BACKEND", RagBackendVector)),
			RagTopK:              getEnvAsInt("RAG_TOP_K", 5),
			RagMinScore:          getEnvAsFloat("RAG_MIN_SCORE", 0.12),
			RagEmbeddingDim:      getEnvAsInt("RAG_EMBEDDING_DIM", 768),
			MaxTurnsEscalate:     getEnvAsInt("MAX_TURNS_BEFORE_ESCALATE", 6),
			UnknownSessionPolicy: strings.ToLower(getEnv("UNKNOWN_SESSION_POLICY", UnknownSessionCreate)),
			SessionLockDriver:    strings.ToLower(getEnv("SESSION_LOCK_DRIVER", LockDriverLocal)),
			SessionLockTTL:       getEnvAsDuration("SESSION_LOCK_TTL", 2*time.Minute),
		},
	}
}

// Validate reports every invalid setting at once, each wrapped in ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrConfiguration}, args...)...))
	}

	switch c.Database.Driver {
	case StorageDriverPostgres:
		if c.Database.Connection == "" {
			fail("DB_CONNECTION_STRING is required when STORAGE_DRIVER=postgres")
		}
	case StorageDriverMemory:
	default:
		fail("unknown STORAGE_DRIVER %q", c.Database.Driver)
	}

	switch c.Support.RagBackend {
	case RagBackendVector, RagBackendLexical:
	default:
		fail("unknown RAG_BACKEND %q", c.Support.RagBackend)
	}
	if c.Support.RagTopK <= 0 {
		fail("RAG_TOP_K must be positive, got %d", c.Support.RagTopK)
	}
	if c.Support.RagMinScore < 0 || c.Support.RagMinScore > 1 {
		fail("RAG_MIN_SCORE must be within [0,1], got %v", c.Support.RagMinScore)
	}
	if c.Support.RagEmbeddingDim <= 0 {
		fail("RAG_EMBEDDING_DIM must be positive, got %d", c.Support.RagEmbeddingDim)
	}
	if c.Support.MaxTurnsEscalate <= 0 {
		fail("MAX_TURNS_BEFORE_ESCALATE must be positive, got %d", c.Support.MaxTurnsEscalate)
	}

	switch c.Support.UnknownSessionPolicy {
	case UnknownSessionCreate, UnknownSessionReject:
	default:
		fail("unknown UNKNOWN_SESSION_POLICY %q", c.Support.UnknownSessionPolicy)
	}

	switch c.Support.SessionLockDriver {
	case LockDriverLocal:
	case LockDriverRedis:
		if c.App.RedisURL == "" {
			fail("REDIS_URL is required when SESSION_LOCK_DRIVER=redis")
		}
	default:
		fail("unknown SESSION_LOCK_DRIVER %q", c.Support.SessionLockDriver)
	}

	if c.Ai.CapabilityTimeout <= 0 {
		fail("CAPABILITY_TIMEOUT must be positive")
	}
	if c.Ai.CapabilityRateLimit < 0 {
		fail("CAPABILITY_RATE_LIMIT must not be negative")
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
