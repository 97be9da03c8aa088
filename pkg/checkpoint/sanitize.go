package checkpoint

// LegacyMissingToolCallID marks tool messages persisted before tool_call_id
// became mandatory.
const LegacyMissingToolCallID = "legacy_missing_id"

// SanitizeState repairs legacy persisted state on the read path: tool-role
// messages missing tool_call_id are patched with a sentinel in a
// shallow-copied structure. The stored record is never mutated; when nothing
// needs patching the original reference is returned as-is.
func SanitizeState(state map[string]interface{}) map[string]interface{} {
	if state == nil {
		return state
	}

	channelValues, ok := state["channel_values"].(map[string]interface{})
	if !ok || len(channelValues) == 0 {
		return state
	}

	messages, ok := channelValues["messages"].([]interface{})
	if !ok || len(messages) == 0 {
		return state
	}

	sanitized := make([]interface{}, 0, len(messages))
	modified := false
	for _, raw := range messages {
		msg, isMap := raw.(map[string]interface{})
		if isMap {
			if msgType, _ := msg["type"].(string); msgType == "tool" {
				if _, hasID := msg["tool_call_id"]; !hasID {
					patched := make(map[string]interface{}, len(msg)+1)
					for k, v := range msg {
						patched[k] = v
					}
					patched["tool_call_id"] = LegacyMissingToolCallID
					sanitized = append(sanitized, patched)
					modified = true
					continue
				}
			}
		}
		sanitized = append(sanitized, raw)
	}

	if !modified {
		return state
	}

	newState := make(map[string]interface{}, len(state))
	for k, v := range state {
		newState[k] = v
	}
	newChannelValues := make(map[string]interface{}, len(channelValues))
	for k, v := range channelValues {
		newChannelValues[k] = v
	}
	newChannelValues["messages"] = sanitized
	newState["channel_values"] = newChannelValues
	return newState
}
