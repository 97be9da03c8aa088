package implementation

import (
	"context"
	"errors"

	"ai-conversation-be/internal/entity"
	"ai-conversation-be/internal/mapper"
	"ai-conversation-be/internal/model"
	"ai-conversation-be/internal/repository/contract"
	"ai-conversation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationCheckpointRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationCheckpointRepository(db *gorm.DB) contract.ConversationCheckpointRepository {
	return &ConversationCheckpointRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationCheckpointRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationCheckpointRepositoryImpl) Upsert(ctx context.Context, checkpoint *entity.ConversationCheckpoint) error {
	m := r.mapper.CheckpointToModel(checkpoint)

	// Conflict target is the per-thread uniqueness key. Mutable fields are
	// overwritten; id and created_at keep the original row's values so
	// "latest" ordering is not disturbed by a re-save.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "thread_id"}, {Name: "checkpoint_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"parent_id", "state", "checkpoint_metadata", "version",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the winning row (id/created_at of the
	// original insert on conflict).
	var saved model.ConversationCheckpoint
	err = r.db.WithContext(ctx).
		Where("thread_id = ? AND checkpoint_id = ?", m.ThreadId, m.CheckpointId).
		First(&saved).Error
	if err != nil {
		return err
	}

	*checkpoint = *r.mapper.CheckpointToEntity(&saved)
	return nil
}

func (r *ConversationCheckpointRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ConversationCheckpoint{}, id).Error
}

func (r *ConversationCheckpointRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationCheckpoint, error) {
	var m model.ConversationCheckpoint
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CheckpointToEntity(&m), nil
}

func (r *ConversationCheckpointRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationCheckpoint, error) {
	var models []*model.ConversationCheckpoint
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConversationCheckpoint, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CheckpointToEntity(m)
	}
	return entities, nil
}

func (r *ConversationCheckpointRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ConversationCheckpoint{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
