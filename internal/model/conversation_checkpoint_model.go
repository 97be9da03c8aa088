package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConversationCheckpoint is one immutable snapshot of conversation state.
// CheckpointId is unique per thread, not globally. Deleting a parent clears
// the children's ParentId instead of cascading, so children survive as roots.
type ConversationCheckpoint struct {
	Id                 uuid.UUID               `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId           uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_thread_checkpoint;index:idx_thread_created"`
	Thread             ConversationThread      `gorm:"foreignKey:ThreadId;constraint:OnDelete:CASCADE"`
	CheckpointId       string                  `gorm:"type:varchar(255);not null;uniqueIndex:idx_thread_checkpoint"`
	ParentId           *uuid.UUID              `gorm:"type:uuid"`
	Parent             *ConversationCheckpoint `gorm:"foreignKey:ParentId;constraint:OnDelete:SET NULL"`
	State              datatypes.JSONMap       `gorm:"type:jsonb;not null"`
	CheckpointMetadata datatypes.JSONMap       `gorm:"type:jsonb"`
	Version            int                     `gorm:"not null;default:1"`
	CreatedAt          time.Time               `gorm:"autoCreateTime;index:idx_thread_created"`
}

func (ConversationCheckpoint) TableName() string {
	return "conversation_checkpoints"
}
