package entity

import (
	"time"

	"github.com/google/uuid"
)

type WorkflowState struct {
	Id           uuid.UUID
	ThreadId     uuid.UUID
	CurrentStep  string
	ProgressData map[string]interface{}
	Status       string
	ErrorMessage string
	UpdatedAt    time.Time
}
