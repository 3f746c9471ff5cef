package model

import (
	"time"

	"pin-support-be/pkg/retrieval"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Ticket struct {
	Id               uuid.UUID                               `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgId            string                                  `gorm:"type:varchar(100);not null;index:idx_tickets_org_status"`
	UserId           string                                  `gorm:"type:varchar(100);not null"`
	SessionId        string                                  `gorm:"type:varchar(64);not null;index"`
	Summary          string                                  `gorm:"type:text;not null"`
	Category         string                                  `gorm:"type:varchar(50);not null"`
	Impact           string                                  `gorm:"type:varchar(10);not null;default:'medium'"`
	Urgency          string                                  `gorm:"type:varchar(10);not null;default:'medium'"`
	Status           string                                  `gorm:"type:varchar(20);not null;default:'created';index:idx_tickets_org_status"`
	EscalationReason string                                  `gorm:"type:text;not null"`
	RenderedText     string                                  `gorm:"type:text;not null"`
	ErrorText        string                                  `gorm:"type:text"`
	User             datatypes.JSONMap                       `gorm:"type:jsonb"`
	Device           datatypes.JSONMap                       `gorm:"type:jsonb"`
	Diagnostics      datatypes.JSONMap                       `gorm:"type:jsonb"`
	StepsAttempted   datatypes.JSONSlice[string]             `gorm:"type:jsonb"`
	Citations        datatypes.JSONSlice[retrieval.Citation] `gorm:"type:jsonb"`
	CreatedAt        time.Time                               `gorm:"autoCreateTime"`
	UpdatedAt        time.Time                               `gorm:"autoUpdateTime"`
	ClosedAt         *time.Time
}

func (Ticket) TableName() string {
	return "tickets"
}
