package implementation

import (
	"context"
	"errors"

	"ai-conversation-be/internal/entity"
	"ai-conversation-be/internal/mapper"
	"ai-conversation-be/internal/model"
	"ai-conversation-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkflowStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewWorkflowStateRepository(db *gorm.DB) contract.WorkflowStateRepository {
	return &WorkflowStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *WorkflowStateRepositoryImpl) Save(ctx context.Context, state *entity.WorkflowState) error {
	m := r.mapper.WorkflowStateToModel(state)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "thread_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_step", "progress_data", "status", "error_message", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	var saved model.WorkflowState
	if err := r.db.WithContext(ctx).Where("thread_id = ?", m.ThreadId).First(&saved).Error; err != nil {
		return err
	}

	*state = *r.mapper.WorkflowStateToEntity(&saved)
	return nil
}

func (r *WorkflowStateRepositoryImpl) FindByThreadId(ctx context.Context, threadId uuid.UUID) (*entity.WorkflowState, error) {
	var m model.WorkflowState
	err := r.db.WithContext(ctx).Where("thread_id = ?", threadId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.WorkflowStateToEntity(&m), nil
}
