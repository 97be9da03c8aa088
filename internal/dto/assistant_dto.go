package dto

import "time"

type SendChatRequest struct {
	ThreadId string `json:"thread_id"`
	Chat     string `json:"chat" validate:"required"`
}

type SendChatResponse struct {
	ThreadId  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}

type GetChatHistoryResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClearConversationResponse struct {
	ThreadId string `json:"thread_id"`
	Cleared  bool   `json:"cleared"`
}

// PublishTurnSavedMessage is the watermill payload emitted after each
// committed turn; the progress consumer keys workflow state off it.
type PublishTurnSavedMessage struct {
	ThreadToken  string `json:"thread_token"`
	CheckpointId string `json:"checkpoint_id"`
	MessageCount int    `json:"message_count"`
}
