package specification

import "gorm.io/gorm"

type ByOrgID struct {
	OrgID string
}

func (s ByOrgID) Apply(db *gorm.DB) *gorm.DB {
	if s.OrgID == "" {
		return db
	}
	return db.Where("org_id = ?", s.OrgID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	if s.Status == "" {
		return db
	}
	return db.Where("status = ?", s.Status)
}

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// WithEmbedding keeps only chunks that have been embedded.
type WithEmbedding struct{}

func (s WithEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NOT NULL")
}
