package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pin-support-be/internal/config"
	"pin-support-be/internal/controller"
	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/pkg/mailer"
	"pin-support-be/internal/repository/memory"
	"pin-support-be/internal/repository/unitofwork"
	"pin-support-be/internal/service"
	"pin-support-be/internal/websocket"
	"pin-support-be/pkg/database"
	"pin-support-be/pkg/embedding"
	embeddingFactory "pin-support-be/pkg/embedding/factory"
	"pin-support-be/pkg/events"
	"pin-support-be/pkg/flow"
	"pin-support-be/pkg/llm"
	llmFactory "pin-support-be/pkg/llm/factory"
	"pin-support-be/pkg/locker"
	pktNats "pin-support-be/pkg/nats"
	"pin-support-be/pkg/policy"
	"pin-support-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	ticketTopic = "support.tickets"

	// TicketMailerDurable names the NATS durable consumer that mails escalations.
	TicketMailerDurable = "ticket-mailer"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	SupportController  controller.ISupportController
	HelpdeskController controller.IHelpdeskController

	// Background workers (run by main.go)
	TicketConsumer *service.TicketEventConsumer
	WebSocketHub   *websocket.Hub
	NatsSubscriber *pktNats.Subscriber

	closers []func() error
}

// NewContainer wires every dependency. Any error it returns is fatal: the
// process must not serve with a broken flow file, retrieval index or storage.
// Connections opened before a failing step are closed before it returns.
func NewContainer(ctx context.Context, cfg *config.Config) (_ *Container, err error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}
	defer c.closeOnError(&err)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 1. Storage
	uowFactory, db, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}
	if db != nil {
		c.closers = append(c.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	// 2. Flows
	registry, err := flow.LoadRegistry(cfg.Support.FlowConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	sysLogger.Info("Bootstrap", "Flow registry loaded", map[string]interface{}{
		"path":       cfg.Support.FlowConfigPath,
		"categories": registry.Categories(),
	})

	// 3. Capabilities
	embedder, llmProvider, err := newCapabilities(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("Bootstrap", "Capabilities ready", map[string]interface{}{
		"embedding_provider": cfg.Ai.EmbeddingProvider,
		"llm_provider":       cfg.Ai.LLMProvider,
		"llm_model":          cfg.Ai.LLMModel,
	})

	// 4. Knowledge base (the in-memory store starts empty and is seeded here)
	if cfg.Database.Driver == config.StorageDriverMemory {
		if err := seedMemoryKnowledge(ctx, cfg, uowFactory, embedder, sysLogger); err != nil {
			return nil, err
		}
	}

	engine, err := newRetrievalEngine(ctx, cfg, uowFactory, embedder)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("Bootstrap", "Retrieval engine ready", map[string]interface{}{"backend": cfg.Support.RagBackend})

	// 5. Infrastructure
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		rdb, err = newRedis(ctx, cfg.App.RedisURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rdb.Close)
	}

	var sessionLocker locker.Locker = locker.NewLocalLocker()
	if cfg.Support.SessionLockDriver == config.LockDriverRedis {
		sessionLocker = locker.NewRedisLocker(rdb, cfg.Support.SessionLockTTL)
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, pubSub.Close)
	bus := events.NewBus(pubSub, ticketTopic)

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("nats publisher: %w", err)
		}
		c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		forwarder = natsPub

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("nats subscriber: %w", err)
		}
		c.closers = append(c.closers, func() error { natsSub.Close(); return nil })
		c.NatsSubscriber = natsSub
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	}

	wsLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "helpdesk_ws.log"))
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 6. Services
	supportService := service.NewSupportService(
		uowFactory,
		registry,
		engine,
		llmProvider,
		policy.NewEscalationPolicy(cfg.Support.MaxTurnsEscalate, cfg.Support.RagMinScore),
		sessionLocker,
		bus,
		sysLogger,
		service.SupportConfig{
			TopK:                  cfg.Support.RagTopK,
			CapabilityTimeout:     cfg.Ai.CapabilityTimeout,
			CreateUnknownSessions: cfg.Support.UnknownSessionPolicy == config.UnknownSessionCreate,
			LockWait:              cfg.Support.SessionLockTTL,
		},
	)
	helpdeskService := service.NewHelpdeskService(uowFactory, sessionLocker, bus, sysLogger)

	c.TicketConsumer = service.NewTicketEventConsumer(
		bus,
		c.WebSocketHub,
		forwarder,
		emailService,
		cfg.SMTP.HelpdeskEmail,
		sysLogger,
	)

	// 7. Controllers
	c.SupportController = controller.NewSupportController(supportService)
	c.HelpdeskController = controller.NewHelpdeskController(helpdeskService, c.WebSocketHub, cfg.Keys.JWTSecret, sysLogger)

	return c, nil
}

func (c *Container) closeOnError(err *error) {
	if *err == nil {
		return
	}
	if closeErr := c.Close(); closeErr != nil {
		c.Logger.Warn("Bootstrap", "Cleanup after failed start", map[string]interface{}{
			"error": closeErr.Error(),
		})
	}
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}

func newStorage(cfg *config.Config) (unitofwork.RepositoryFactory, *gorm.DB, error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		return memory.NewRepositoryFactory(memory.NewStore()), nil, nil
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return unitofwork.NewRepositoryFactory(db), db, nil
}

func newCapabilities(cfg *config.Config) (embedding.EmbeddingProvider, llm.LLMProvider, error) {
	embedder, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.Config{
		Provider:      cfg.Ai.EmbeddingProvider,
		Dimension:     cfg.Support.RagEmbeddingDim,
		Timeout:       cfg.Ai.CapabilityTimeout,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OllamaModel:   cfg.Ai.OllamaModel,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		JinaAPIKey:    cfg.Keys.Jina,
		OpenAIAPIKey:  cfg.Keys.OpenAI,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		OpenAIModel:   cfg.Ai.OpenAIEmbeddingModel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}

	llmCfg := llmFactory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		Timeout:  cfg.Ai.CapabilityTimeout,
	}
	switch cfg.Ai.LLMProvider {
	case "ollama":
		llmCfg.BaseURL = cfg.Ai.OllamaBaseURL
	case "openai":
		llmCfg.BaseURL = cfg.Ai.OpenAIBaseURL
		llmCfg.APIKey = cfg.Keys.OpenAI
	case "huggingface":
		llmCfg.APIKey = cfg.Keys.HuggingFace
	}
	llmProvider, err := llmFactory.NewLLMProvider(llmCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}

	if cfg.Ai.CapabilityRateLimit > 0 {
		burst := int(cfg.Ai.CapabilityRateLimit)
		if burst < 1 {
			burst = 1
		}
		embedder = embedding.WithRateLimit(embedder, rate.NewLimiter(rate.Limit(cfg.Ai.CapabilityRateLimit), burst))
		llmProvider = llm.WithRateLimit(llmProvider, rate.NewLimiter(rate.Limit(cfg.Ai.CapabilityRateLimit), burst))
	}

	return embedder, llmProvider, nil
}

func seedMemoryKnowledge(
	ctx context.Context,
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	log logger.ILogger,
) error {
	if _, err := os.Stat(cfg.Support.KnowledgeSeedPath); errors.Is(err, os.ErrNotExist) {
		log.Warn("Bootstrap", "No knowledge seed found, starting with an empty knowledge base", map[string]interface{}{
			"path": cfg.Support.KnowledgeSeedPath,
		})
		return nil
	}

	seed, err := service.LoadKnowledgeSeed(cfg.Support.KnowledgeSeedPath)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}

	// The lexical backend never reads embeddings.
	if cfg.Support.RagBackend != config.RagBackendVector {
		embedder = nil
	}
	n, err := service.NewKnowledgeService(uowFactory, embedder, log).Seed(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed knowledge base: %w", err)
	}
	log.Info("Bootstrap", "Knowledge base seeded", map[string]interface{}{"chunks": n})
	return nil
}

func newRetrievalEngine(
	ctx context.Context,
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
) (retrieval.Engine, error) {
	repo := uowFactory.NewUnitOfWork(ctx).KnowledgeRepository()

	if cfg.Support.RagBackend == config.RagBackendLexical {
		engine, err := retrieval.BuildLexicalEngine(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
		}
		return engine, nil
	}

	engine := retrieval.NewVectorEngine(repo, embedder, cfg.Support.RagEmbeddingDim)
	if err := engine.Validate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	return engine, nil
}

func newRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}
