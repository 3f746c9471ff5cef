package implementation

import (
	"context"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/mapper"
	"pin-support-be/internal/model"
	"pin-support-be/internal/repository/contract"
	"pin-support-be/internal/repository/specification"
	"pin-support-be/pkg/retrieval"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KnowledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeRepository(db *gorm.DB) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeRepositoryImpl) SaveDocument(ctx context.Context, doc *entity.KnowledgeDocument) error {
	m := r.mapper.DocumentToModel(doc)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}

func (r *KnowledgeRepositoryImpl) SaveChunks(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}
	return r.db.WithContext(ctx).
		Omit("Document").
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(models).Error
}

func (r *KnowledgeRepositoryImpl) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.KnowledgeChunk{}).Count(&count).Error
	return count, err
}

func (r *KnowledgeRepositoryImpl) ListChunks(ctx context.Context) ([]retrieval.Chunk, error) {
	var models []*model.KnowledgeChunk
	err := specification.OrderBy{Field: "id"}.
		Apply(r.db.WithContext(ctx)).
		Omit("embedding").
		Preload("Document").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]retrieval.Chunk, len(models))
	for i, m := range models {
		out[i] = r.mapper.ChunkToRetrieval(m)
	}
	return out, nil
}

// NearestChunks orders by pgvector cosine distance (<=>), chunk id second.
func (r *KnowledgeRepositoryImpl) NearestChunks(ctx context.Context, vector []float32, limit int) ([]retrieval.Neighbor, error) {
	if limit <= 0 {
		limit = retrieval.DefaultTopK
	}

	type ranked struct {
		Id       string
		Distance float64
	}
	var rows []ranked

	queryVector := pgvector.NewVector(vector)
	err := specification.WithEmbedding{}.Apply(r.db.WithContext(ctx)).
		Model(&model.KnowledgeChunk{}).
		Select("id, (embedding <=> ?) AS distance", queryVector).
		Order("distance ASC").
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []retrieval.Neighbor{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.Id
	}
	var models []*model.KnowledgeChunk
	err = r.db.WithContext(ctx).
		Omit("embedding").
		Preload("Document").
		Where("id IN ?", ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	byId := make(map[string]*model.KnowledgeChunk, len(models))
	for _, m := range models {
		byId[m.Id] = m
	}

	out := make([]retrieval.Neighbor, 0, len(rows))
	for _, row := range rows {
		m, ok := byId[row.Id]
		if !ok {
			continue
		}
		out = append(out, retrieval.Neighbor{
			Chunk:    r.mapper.ChunkToRetrieval(m),
			Distance: row.Distance,
		})
	}
	return out, nil
}

func (r *KnowledgeRepositoryImpl) EmbeddingDimensions(ctx context.Context) ([]int, error) {
	var dims []int
	err := specification.WithEmbedding{}.Apply(r.db.WithContext(ctx)).
		Model(&model.KnowledgeChunk{}).
		Distinct().
		Pluck("vector_dims(embedding)", &dims).Error
	return dims, err
}
