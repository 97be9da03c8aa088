package contract

import (
	"context"

	"ai-conversation-be/internal/entity"
	"ai-conversation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationCheckpointRepository interface {
	// Upsert inserts the checkpoint or, when a row with the same
	// (thread_id, checkpoint_id) already exists, overwrites its mutable
	// fields. The entity is refreshed with the winning row.
	Upsert(ctx context.Context, checkpoint *entity.ConversationCheckpoint) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationCheckpoint, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationCheckpoint, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type WorkflowStateRepository interface {
	// Save creates the per-thread progress row or updates the existing one.
	Save(ctx context.Context, state *entity.WorkflowState) error
	FindByThreadId(ctx context.Context, threadId uuid.UUID) (*entity.WorkflowState, error)
}
