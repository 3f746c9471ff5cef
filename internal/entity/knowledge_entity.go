package entity

import "time"

type KnowledgeDocument struct {
	Id         string
	Title      string
	Category   string
	SourcePath string
	CreatedAt  time.Time
}

type KnowledgeChunk struct {
	Id           string
	DocumentId   string
	SectionTitle string
	Text         string
	Embedding    []float32
	CreatedAt    time.Time
}
