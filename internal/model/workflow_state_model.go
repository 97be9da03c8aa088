package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	WorkflowStatusPending    = "pending"
	WorkflowStatusInProgress = "in_progress"
	WorkflowStatusCompleted  = "completed"
	WorkflowStatusFailed     = "failed"
)

// WorkflowState is a one-to-one progress tracker per thread for non-chat
// workflows (e.g. long-running generation jobs).
type WorkflowState struct {
	Id           uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId     uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	Thread       ConversationThread `gorm:"foreignKey:ThreadId;constraint:OnDelete:CASCADE"`
	CurrentStep  string             `gorm:"type:varchar(100);not null;default:''"`
	ProgressData datatypes.JSONMap  `gorm:"type:jsonb"`
	Status       string             `gorm:"type:varchar(20);not null;default:'pending'"`
	ErrorMessage string             `gorm:"type:text"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime"`
}

func (WorkflowState) TableName() string {
	return "workflow_states"
}
