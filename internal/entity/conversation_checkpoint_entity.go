package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversationCheckpoint struct {
	Id                 uuid.UUID
	ThreadId           uuid.UUID
	CheckpointId       string
	ParentId           *uuid.UUID
	State              map[string]interface{}
	CheckpointMetadata map[string]interface{}
	Version            int
	CreatedAt          time.Time
}
