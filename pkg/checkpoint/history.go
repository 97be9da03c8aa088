package checkpoint

import (
	"fmt"
	"regexp"
	"strings"
)

// HistoryMessage is one displayable conversation turn.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Tool failures that leaked into persisted state are operational noise, not
// conversation content, and must never surface in displayed history.
var transientFailureMarkers = []string{
	"error searching",
	"error embedding",
	"resource_exhausted",
	"429 resource_exhausted",
	"quota exceeded",
	"error:",
}

var (
	reContentField = regexp.MustCompile(`content='([^']*)'`)
	reTextField    = regexp.MustCompile(`'text':\s*'([^']*)'`)
)

// ProjectHistory reconstructs a clean role-tagged message list from a saved
// checkpoint. Messages it cannot parse, messages with empty content, and
// transient tool-failure noise are dropped; order is preserved.
func ProjectHistory(tuple *Tuple) []HistoryMessage {
	if tuple == nil {
		return []HistoryMessage{}
	}

	channelValues, _ := tuple.Checkpoint["channel_values"].(map[string]interface{})
	messages, _ := channelValues["messages"].([]interface{})

	history := make([]HistoryMessage, 0, len(messages))
	for _, raw := range messages {
		role, content, ok := projectMessage(raw)
		if !ok || content == "" {
			continue
		}
		if isTransientFailure(content) {
			continue
		}
		history = append(history, HistoryMessage{Role: role, Content: content})
	}
	return history
}

func projectMessage(raw interface{}) (string, string, bool) {
	switch msg := raw.(type) {
	case Message:
		// Live message objects should not survive serialization, but
		// project them anyway.
		return roleForType(msg.MessageType()), textContent(msg.MessageContent()), true

	case map[string]interface{}:
		msgType, _ := msg["type"].(string)
		if msgType == "" {
			msgType, _ = msg["role"].(string)
		}
		return roleForType(msgType), textContent(msg["content"]), true

	case string:
		// Legacy records stored free-text renderings of message objects.
		// Recover role and content by pattern extraction, best effort.
		content, ok := contentFromStringified(msg)
		if !ok {
			return "", "", false
		}
		return roleFromStringified(msg), content, true
	}

	return "", "", false
}

// roleForType defaults unrecognized types to user rather than assistant, so
// unknown content is never attributed to the agent.
func roleForType(msgType string) string {
	switch msgType {
	case "human", "user":
		return RoleUser
	case "ai", "assistant":
		return RoleAssistant
	}
	return RoleUser
}

func textContent(content interface{}) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return c
	case []interface{}:
		// Flatten text parts; a list with no recoverable text drops the
		// message entirely.
		var parts []string
		for _, part := range c {
			switch p := part.(type) {
			case string:
				parts = append(parts, p)
			case map[string]interface{}:
				if text, ok := p["text"].(string); ok {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, "\n")
	}
	return fmt.Sprint(content)
}

func contentFromStringified(msg string) (string, bool) {
	if m := reContentField.FindStringSubmatch(msg); m != nil {
		return m[1], true
	}
	if m := reTextField.FindStringSubmatch(msg); m != nil {
		return m[1], true
	}
	if strings.Contains(msg, "content=''") || strings.Contains(msg, `content=""`) {
		return "", true
	}
	return "", false
}

func roleFromStringified(msg string) string {
	if strings.HasPrefix(msg, "HumanMessage") || strings.Contains(msg, "HumanMessage(") {
		return RoleUser
	}
	if strings.HasPrefix(msg, "AIMessage") || strings.Contains(msg, "AIMessage(") {
		return RoleAssistant
	}
	if strings.Contains(msg, "function_call") || strings.Contains(msg, "tool_calls") {
		return RoleAssistant
	}
	return RoleUser
}

func isTransientFailure(content string) bool {
	lowered := strings.ToLower(content)
	for _, marker := range transientFailureMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
