package model

import (
	"time"

	"gorm.io/datatypes"
)

type SupportSession struct {
	Id             string                      `gorm:"type:varchar(64);primaryKey"`
	OrgId          string                      `gorm:"type:varchar(100);not null;index:idx_support_sessions_org_status"`
	UserId         string                      `gorm:"type:varchar(100);not null;index"`
	Turns          int                         `gorm:"not null;default:0"`
	Category       *string                     `gorm:"type:varchar(50)"`
	Status         string                      `gorm:"type:varchar(20);not null;default:'open';index:idx_support_sessions_org_status"`
	Collected      datatypes.JSONMap           `gorm:"type:jsonb"`
	StepsAttempted datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime"`
}

func (SupportSession) TableName() string {
	return "support_sessions"
}
