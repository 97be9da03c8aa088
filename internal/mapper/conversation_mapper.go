package mapper

import (
	"ai-conversation-be/internal/entity"
	"ai-conversation-be/internal/model"

	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Thread Mappers

func (m *ConversationMapper) ThreadToEntity(t *model.ConversationThread) *entity.ConversationThread {
	if t == nil {
		return nil
	}

	return &entity.ConversationThread{
		Id:           t.Id,
		ThreadId:     t.ThreadId,
		OwnerId:      t.OwnerId,
		WorkflowKind: t.WorkflowKind,
		Metadata:     map[string]interface{}(t.Metadata),
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (m *ConversationMapper) ThreadToModel(t *entity.ConversationThread) *model.ConversationThread {
	if t == nil {
		return nil
	}

	return &model.ConversationThread{
		Id:           t.Id,
		ThreadId:     t.ThreadId,
		OwnerId:      t.OwnerId,
		WorkflowKind: t.WorkflowKind,
		Metadata:     datatypes.JSONMap(t.Metadata),
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// Checkpoint Mappers

func (m *ConversationMapper) CheckpointToEntity(c *model.ConversationCheckpoint) *entity.ConversationCheckpoint {
	if c == nil {
		return nil
	}

	return &entity.ConversationCheckpoint{
		Id:                 c.Id,
		ThreadId:           c.ThreadId,
		CheckpointId:       c.CheckpointId,
		ParentId:           c.ParentId,
		State:              map[string]interface{}(c.State),
		CheckpointMetadata: map[string]interface{}(c.CheckpointMetadata),
		Version:            c.Version,
		CreatedAt:          c.CreatedAt,
	}
}

func (m *ConversationMapper) CheckpointToModel(c *entity.ConversationCheckpoint) *model.ConversationCheckpoint {
	if c == nil {
		return nil
	}

	return &model.ConversationCheckpoint{
		Id:                 c.Id,
		ThreadId:           c.ThreadId,
		CheckpointId:       c.CheckpointId,
		ParentId:           c.ParentId,
		State:              datatypes.JSONMap(c.State),
		CheckpointMetadata: datatypes.JSONMap(c.CheckpointMetadata),
		Version:            c.Version,
		CreatedAt:          c.CreatedAt,
	}
}

// Workflow State Mappers

func (m *ConversationMapper) WorkflowStateToEntity(w *model.WorkflowState) *entity.WorkflowState {
	if w == nil {
		return nil
	}

	return &entity.WorkflowState{
		Id:           w.Id,
		ThreadId:     w.ThreadId,
		CurrentStep:  w.CurrentStep,
		ProgressData: map[string]interface{}(w.ProgressData),
		Status:       w.Status,
		ErrorMessage: w.ErrorMessage,
		UpdatedAt:    w.UpdatedAt,
	}
}

func (m *ConversationMapper) WorkflowStateToModel(w *entity.WorkflowState) *model.WorkflowState {
	if w == nil {
		return nil
	}

	return &model.WorkflowState{
		Id:           w.Id,
		ThreadId:     w.ThreadId,
		CurrentStep:  w.CurrentStep,
		ProgressData: datatypes.JSONMap(w.ProgressData),
		Status:       w.Status,
		ErrorMessage: w.ErrorMessage,
		UpdatedAt:    w.UpdatedAt,
	}
}
