package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConversationThread is the identity record for one logical conversation.
// ThreadId is the externally visible token and never changes once set.
type ConversationThread struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId     string            `gorm:"type:varchar(255);uniqueIndex;not null"`
	OwnerId      *uuid.UUID        `gorm:"type:uuid;index"` // null for anonymous threads
	WorkflowKind string            `gorm:"type:varchar(50);not null;default:'chatbot';index"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	IsActive     bool              `gorm:"default:true"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

func (ConversationThread) TableName() string {
	return "conversation_threads"
}
