package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/repository/unitofwork"
	"pin-support-be/pkg/embedding"

	"gopkg.in/yaml.v3"
)

const embedBatchSize = 32

// KnowledgeSeed is an already-chunked knowledge base: one entry per document,
// one section per chunk.
type KnowledgeSeed struct {
	Documents []SeedDocument `yaml:"documents"`
}

type SeedDocument struct {
	DocId      string        `yaml:"doc_id"`
	Title      string        `yaml:"title"`
	Category   string        `yaml:"category"`
	SourcePath string        `yaml:"source_path"`
	Sections   []SeedSection `yaml:"sections"`
}

type SeedSection struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

func LoadKnowledgeSeed(path string) (*KnowledgeSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge seed: %w", err)
	}
	var seed KnowledgeSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse knowledge seed %s: %w", path, err)
	}
	for i, d := range seed.Documents {
		if strings.TrimSpace(d.DocId) == "" || strings.TrimSpace(d.SourcePath) == "" {
			return nil, fmt.Errorf("knowledge seed %s: document %d needs doc_id and source_path", path, i)
		}
	}
	return &seed, nil
}

// ChunkID is stable across re-seeding so upserts replace rather than duplicate.
func ChunkID(docId, heading, sourcePath string) string {
	sum := sha1.Sum([]byte(docId + "|" + heading + "|" + sourcePath))
	return docId + ":" + hex.EncodeToString(sum[:])[:16]
}

type IKnowledgeService interface {
	Seed(ctx context.Context, seed *KnowledgeSeed) (int, error)
}

type knowledgeService struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
	logger     logger.ILogger
}

// NewKnowledgeService seeds without embeddings when embedder is nil; such
// chunks are only visible to the lexical backend.
func NewKnowledgeService(uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, log logger.ILogger) IKnowledgeService {
	return &knowledgeService{
		uowFactory: uowFactory,
		embedder:   embedder,
		logger:     log,
	}
}

func (s *knowledgeService) Seed(ctx context.Context, seed *KnowledgeSeed) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.KnowledgeRepository()
	total := 0

	for _, d := range seed.Documents {
		title := d.Title
		if title == "" {
			title = d.DocId
		}
		doc := &entity.KnowledgeDocument{
			Id:         d.DocId,
			Title:      title,
			Category:   d.Category,
			SourcePath: d.SourcePath,
			CreatedAt:  time.Now(),
		}

		var chunks []*entity.KnowledgeChunk
		var texts []string
		for _, sec := range d.Sections {
			body := strings.TrimSpace(sec.Body)
			if body == "" {
				continue
			}
			heading := sec.Heading
			if heading == "" {
				heading = "Section"
			}
			chunks = append(chunks, &entity.KnowledgeChunk{
				Id:           ChunkID(d.DocId, heading, d.SourcePath),
				DocumentId:   d.DocId,
				SectionTitle: heading,
				Text:         body,
				CreatedAt:    time.Now(),
			})
			texts = append(texts, fmt.Sprintf("%s — %s\n\n%s", title, heading, body))
		}

		if err := s.embed(ctx, chunks, texts); err != nil {
			return total, fmt.Errorf("embed %s: %w", d.DocId, err)
		}
		if err := repo.SaveDocument(ctx, doc); err != nil {
			return total, fmt.Errorf("save document %s: %w", d.DocId, err)
		}
		if err := repo.SaveChunks(ctx, chunks); err != nil {
			return total, fmt.Errorf("save chunks %s: %w", d.DocId, err)
		}

		total += len(chunks)
		s.logger.Info("KNOWLEDGE", "Document seeded", map[string]interface{}{"doc_id": d.DocId, "chunks": len(chunks)})
	}
	return total, nil
}

func (s *knowledgeService) embed(ctx context.Context, chunks []*entity.KnowledgeChunk, texts []string) error {
	if s.embedder == nil {
		return nil
	}
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		vectors, err := s.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return err
		}
		if len(vectors) != end-start {
			return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), end-start)
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}
