package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-conversation-be/internal/dto"
	"ai-conversation-be/internal/entity"
	"ai-conversation-be/internal/model"
	"ai-conversation-be/internal/repository/specification"
	"ai-conversation-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IProgressService interface {
	Consume(ctx context.Context) error
}

// progressService keeps the per-thread workflow_states row current. It runs
// off the turn-saved topic so the chat path never waits on it.
type progressService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewProgressService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IProgressService {
	return &progressService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (ps *progressService) Consume(ctx context.Context) error {
	messages, err := ps.pubSub.Subscribe(ctx, ps.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ps.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ps *progressService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishTurnSavedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn message: %v", err)
		msg.Ack() // invalid payloads are not retriable
		return
	}

	uow := ps.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: payload.ThreadToken})
	if err != nil {
		log.Printf("[ERROR] Failed to look up thread %s: %v", payload.ThreadToken, err)
		msg.Nack()
		return
	}
	if thread == nil {
		// Thread cleared between publish and consume. Nothing to track.
		msg.Ack()
		return
	}

	existing, err := uow.WorkflowStateRepository().FindByThreadId(ctx, thread.Id)
	if err != nil {
		log.Printf("[ERROR] Failed to load workflow state for thread %s: %v", payload.ThreadToken, err)
		msg.Nack()
		return
	}

	state := existing
	if state == nil {
		state = &entity.WorkflowState{
			Id:       uuid.New(),
			ThreadId: thread.Id,
		}
	}
	state.CurrentStep = "turn_saved"
	state.Status = model.WorkflowStatusInProgress
	state.ErrorMessage = ""
	state.ProgressData = map[string]interface{}{
		"last_checkpoint_id": payload.CheckpointId,
		"message_count":      payload.MessageCount,
	}
	state.UpdatedAt = time.Now()

	if err := uow.WorkflowStateRepository().Save(ctx, state); err != nil {
		log.Printf("[ERROR] Failed to save workflow state for thread %s: %v", payload.ThreadToken, err)
		msg.Nack()
		return
	}

	msg.Ack()
}
