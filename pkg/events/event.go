package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "conversation.turn.saved").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain implementation for events built inline.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// TurnSaved announces that a conversation turn was checkpointed. External
// consumers (analytics, moderation) subscribe to this; the chat path never
// depends on them.
func TurnSaved(threadToken, checkpointID string, messageCount int) Event {
	return BaseEvent{
		Type: "conversation.turn.saved",
		Data: map[string]interface{}{
			"thread_id":     threadToken,
			"checkpoint_id": checkpointID,
			"message_count": messageCount,
		},
		OccurredAt: time.Now(),
	}
}
