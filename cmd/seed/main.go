package main

import (
	"context"
	"flag"
	"log"

	"pin-support-be/internal/config"
	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/repository/unitofwork"
	"pin-support-be/internal/service"
	"pin-support-be/pkg/database"
	"pin-support-be/pkg/embedding/factory"
)

// seed ingests the knowledge base YAML into Postgres. Pass -skip-embeddings
// when the lexical backend is used.
func main() {
	cfg := config.Load()
	path := flag.String("file", cfg.Support.KnowledgeSeedPath, "knowledge seed YAML")
	skipEmbeddings := flag.Bool("skip-embeddings", cfg.Support.RagBackend == config.RagBackendLexical, "store chunks without embeddings")
	flag.Parse()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	seed, err := service.LoadKnowledgeSeed(*path)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	svcLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer svcLogger.Sync()

	knowledge := service.NewKnowledgeService(unitofwork.NewRepositoryFactory(db), nil, svcLogger)
	if !*skipEmbeddings {
		embedder, err := factory.NewEmbeddingProvider(factory.Config{
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
			log.Fatalf("Error: %v", err)
		}
		knowledge = service.NewKnowledgeService(unitofwork.NewRepositoryFactory(db), embedder, svcLogger)
	}

	n, err := knowledge.Seed(context.Background(), seed)
	if err != nil {
		log.Fatalf("Error: seeding failed: %v", err)
	}
	log.Printf("Success: %d chunks from %d documents stored.", n, len(seed.Documents))
}
