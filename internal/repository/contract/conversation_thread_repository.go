package contract

import (
	"context"

	"ai-conversation-be/internal/entity"
	"ai-conversation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationThreadRepository interface {
	Create(ctx context.Context, thread *entity.ConversationThread) error
	Update(ctx context.Context, thread *entity.ConversationThread) error
	// Delete removes the thread and, via FK cascade, all its checkpoints.
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationThread, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationThread, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
