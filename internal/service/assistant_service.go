package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-conversation-be/internal/constant"
	"ai-conversation-be/internal/dto"
	"ai-conversation-be/internal/pkg/logger"
	"ai-conversation-be/internal/repository/contract"
	"ai-conversation-be/pkg/checkpoint"
	"ai-conversation-be/pkg/events"
	"ai-conversation-be/pkg/llm"
	natspkg "ai-conversation-be/pkg/nats"
	"ai-conversation-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Caller identifies who is talking: the session key comes from the client
// cookie, the user id from a verified JWT when one was presented.
type Caller struct {
	SessionKey string
	UserId     *uuid.UUID
}

type IAssistantService interface {
	SendChat(ctx context.Context, caller Caller, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetChatHistory(ctx context.Context, caller Caller, threadId string) ([]*dto.GetChatHistoryResponse, error)
	ClearConversation(ctx context.Context, caller Caller, threadId string) (*dto.ClearConversationResponse, error)
}

type assistantService struct {
	saver        *checkpoint.Saver
	llmProvider  llm.LLMProvider
	sessionStore contract.SessionStore
	publisher    *natspkg.Publisher
	pubSub       *gochannel.GoChannel
	historyLimit int
	log          logger.ILogger
}

func NewAssistantService(
	saver *checkpoint.Saver,
	llmProvider llm.LLMProvider,
	sessionStore contract.SessionStore,
	publisher *natspkg.Publisher,
	pubSub *gochannel.GoChannel,
	historyLimit int,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		saver:        saver,
		llmProvider:  llmProvider,
		sessionStore: sessionStore,
		publisher:    publisher,
		pubSub:       pubSub,
		historyLimit: historyLimit,
		log:          log,
	}
}

// SendChat runs one conversation turn: load the latest checkpoint, ask the
// model, and persist the extended message list as a child checkpoint. A model
// failure returns a canned reply and persists nothing, so a retry replays the
// same turn against an unchanged history.
func (as *assistantService) SendChat(ctx context.Context, caller Caller, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	token, err := as.resolveThreadToken(ctx, caller, request.ThreadId, true)
	if err != nil {
		return nil, err
	}

	cfg := checkpoint.Config{
		ThreadID:     token,
		OwnerID:      caller.UserId,
		WorkflowKind: constant.WorkflowKindChatbot,
	}

	prev, err := as.saver.GetTuple(ctx, cfg)
	if err != nil {
		return nil, err
	}

	history := checkpoint.ProjectHistory(prev)
	llmHistory := as.buildLLMHistory(history, request.Chat)

	reply, err := as.llmProvider.Chat(ctx, llmHistory)
	if err != nil {
		as.log.Error("assistant_service", "llm call failed, returning fallback reply", map[string]interface{}{
			"thread_id": token,
			"error":     err.Error(),
		})
		return &dto.SendChatResponse{
			ThreadId:  token,
			Role:      constant.ChatRoleAssistant,
			Reply:     constant.AssistantFallbackReply,
			CreatedAt: time.Now(),
		}, nil
	}

	messages := previousMessages(prev)
	messages = append(messages,
		checkpoint.HumanMessage{ID: uuid.New().String(), Content: request.Chat},
		checkpoint.AIMessage{ID: uuid.New().String(), Content: reply},
	)

	state := map[string]interface{}{
		"id": uuid.New().String(),
		"channel_values": map[string]interface{}{
			"messages": messages,
		},
	}
	if prev != nil {
		if parentID, ok := prev.Checkpoint["id"].(string); ok && parentID != "" {
			state["parent_checkpoint_id"] = parentID
		}
	}

	metadata := map[string]interface{}{
		"source": "chat",
		"step":   len(messages),
	}

	saved, err := as.saver.Put(ctx, cfg, state, metadata, map[string]int{"messages": len(messages)})
	if err != nil {
		return nil, fmt.Errorf("failed to save conversation turn: %w", err)
	}

	as.announceTurn(ctx, token, saved, len(messages))

	return &dto.SendChatResponse{
		ThreadId:  token,
		Role:      constant.ChatRoleAssistant,
		Reply:     reply,
		CreatedAt: time.Now(),
	}, nil
}

// GetChatHistory projects the latest checkpoint into the flat role/content
// transcript. A caller with no session and no token gets an empty history
// without a thread being minted for them.
func (as *assistantService) GetChatHistory(ctx context.Context, caller Caller, threadId string) ([]*dto.GetChatHistoryResponse, error) {
	token, err := as.resolveThreadToken(ctx, caller, threadId, false)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return []*dto.GetChatHistoryResponse{}, nil
	}

	tuple, err := as.saver.GetTuple(ctx, checkpoint.Config{ThreadID: token, OwnerID: caller.UserId})
	if err != nil {
		return nil, err
	}

	history := checkpoint.ProjectHistory(tuple)
	response := make([]*dto.GetChatHistoryResponse, 0, len(history))
	for _, h := range history {
		response = append(response, &dto.GetChatHistoryResponse{
			Role:    h.Role,
			Content: h.Content,
		})
	}
	return response, nil
}

// ClearConversation drops the thread with all its checkpoints and forgets the
// session mapping, so the next message starts a fresh thread.
func (as *assistantService) ClearConversation(ctx context.Context, caller Caller, threadId string) (*dto.ClearConversationResponse, error) {
	token, err := as.resolveThreadToken(ctx, caller, threadId, false)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return &dto.ClearConversationResponse{Cleared: false}, nil
	}

	if err := as.saver.DeleteThread(ctx, checkpoint.Config{ThreadID: token}); err != nil {
		return nil, err
	}

	if caller.SessionKey != "" {
		if err := as.sessionStore.Delete(ctx, caller.SessionKey); err != nil {
			as.log.Warn("assistant_service", "failed to drop session mapping", map[string]interface{}{
				"session_key": caller.SessionKey,
				"error":       err.Error(),
			})
		}
	}

	return &dto.ClearConversationResponse{ThreadId: token, Cleared: true}, nil
}

// resolveThreadToken picks the conversation identity for this call. An
// explicit token from the request always wins; otherwise the session mapping
// is consulted, and on the write path a missing mapping mints a new token.
func (as *assistantService) resolveThreadToken(ctx context.Context, caller Caller, requested string, mint bool) (string, error) {
	if requested != "" {
		return requested, nil
	}

	if caller.SessionKey != "" {
		sess, found, err := as.sessionStore.Get(ctx, caller.SessionKey)
		if err != nil {
			return "", err
		}
		if found && sess.ThreadToken != "" {
			return sess.ThreadToken, nil
		}
	}

	if !mint {
		return "", nil
	}

	token := uuid.New().String()
	if caller.SessionKey != "" {
		sess := &store.Session{
			ID:           caller.SessionKey,
			ThreadToken:  token,
			WorkflowKind: constant.WorkflowKindChatbot,
		}
		if caller.UserId != nil {
			sess.UserID = caller.UserId.String()
		}
		if err := as.sessionStore.Save(ctx, sess); err != nil {
			return "", err
		}
	}
	return token, nil
}

func (as *assistantService) buildLLMHistory(history []checkpoint.HistoryMessage, chat string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    constant.ChatRoleSystem,
		Content: constant.AssistantSystemPromptV1,
	})

	trimmed := history
	if as.historyLimit > 0 && len(trimmed) > as.historyLimit {
		trimmed = trimmed[len(trimmed)-as.historyLimit:]
	}
	for _, h := range trimmed {
		messages = append(messages, llm.Message{Role: h.Role, Content: h.Content})
	}

	messages = append(messages, llm.Message{Role: constant.ChatRoleUser, Content: chat})
	return messages
}

// announceTurn emits the turn-saved event on both fabrics. Delivery failures
// are logged and swallowed; the turn is already committed.
func (as *assistantService) announceTurn(ctx context.Context, token string, saved *checkpoint.Tuple, messageCount int) {
	checkpointID, _ := saved.Checkpoint["id"].(string)

	if as.publisher != nil {
		if err := as.publisher.Publish(ctx, events.TurnSaved(token, checkpointID, messageCount)); err != nil {
			as.log.Warn("assistant_service", "failed to publish turn event to nats", map[string]interface{}{
				"thread_id": token,
				"error":     err.Error(),
			})
		}
	}

	if as.pubSub != nil {
		payload, err := json.Marshal(dto.PublishTurnSavedMessage{
			ThreadToken:  token,
			CheckpointId: checkpointID,
			MessageCount: messageCount,
		})
		if err == nil {
			err = as.pubSub.Publish(constant.TopicTurnSaved, message.NewMessage(watermill.NewUUID(), payload))
		}
		if err != nil {
			as.log.Warn("assistant_service", "failed to publish turn progress message", map[string]interface{}{
				"thread_id": token,
				"error":     err.Error(),
			})
		}
	}
}

func previousMessages(prev *checkpoint.Tuple) []interface{} {
	if prev == nil {
		return nil
	}
	channelValues, ok := prev.Checkpoint["channel_values"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := channelValues["messages"].([]interface{})
	if !ok {
		return nil
	}
	return raw
}
