package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversationThread struct {
	Id           uuid.UUID
	ThreadId     string
	OwnerId      *uuid.UUID
	WorkflowKind string
	Metadata     map[string]interface{}
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAnonymous reports whether the thread has no authenticated owner yet.
func (t *ConversationThread) IsAnonymous() bool {
	return t.OwnerId == nil
}
