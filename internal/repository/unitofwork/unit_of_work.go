package unitofwork

import (
	"context"

	"ai-conversation-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationThreadRepository() contract.ConversationThreadRepository
	ConversationCheckpointRepository() contract.ConversationCheckpointRepository
	WorkflowStateRepository() contract.WorkflowStateRepository
}
