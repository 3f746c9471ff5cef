package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type KnowledgeDocument struct {
	Id         string    `gorm:"type:varchar(64);primaryKey"`
	Title      string    `gorm:"type:text;not null"`
	Category   string    `gorm:"type:varchar(50);index"`
	SourcePath string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (KnowledgeDocument) TableName() string {
	return "kb_documents"
}

// KnowledgeChunk leaves the vector column unsized so the configured embedding
// dimension is checked at startup instead of by the schema.
type KnowledgeChunk struct {
	Id           string             `gorm:"type:varchar(64);primaryKey"`
	DocumentId   string             `gorm:"type:varchar(64);not null;index"`
	Document     *KnowledgeDocument `gorm:"foreignKey:DocumentId"`
	SectionTitle string             `gorm:"type:text"`
	Text         string             `gorm:"type:text;not null"`
	Embedding    *pgvector.Vector   `gorm:"type:vector"`
	CreatedAt    time.Time          `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "kb_chunks"
}
