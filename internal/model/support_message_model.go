package model

import (
	"time"

	"pin-support-be/pkg/retrieval"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SupportMessage struct {
	Id        uuid.UUID                               `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string                                  `gorm:"type:varchar(64);not null;index"`
	Role      string                                  `gorm:"type:varchar(20);not null"`
	Content   string                                  `gorm:"type:text;not null"`
	Citations datatypes.JSONSlice[retrieval.Citation] `gorm:"type:jsonb"`
	CreatedAt time.Time                               `gorm:"autoCreateTime"`
}

func (SupportMessage) TableName() string {
	return "support_messages"
}
