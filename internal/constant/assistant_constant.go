package constant

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

const (
	WorkflowKindChatbot = "chatbot"

	// Watermill topic for the in-process workflow progress consumer.
	TopicTurnSaved = "CONVERSATION_TURN_SAVED"
)

const AssistantSystemPromptV1 = `You are a helpful customer assistant for a digital services company.
Answer in the language the user writes in. Be concise and factual.
If you do not know something, say so instead of inventing an answer.
You have access to the full conversation so far; use it to stay consistent
with what was already said.`

// AssistantFallbackReply is returned when the model call fails. The turn is
// NOT persisted in that case so the history never records the failure.
const AssistantFallbackReply = "Sorry, I am having trouble responding right now. Please try again in a moment."
