package checkpoint

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSONablePrimitives(t *testing.T) {
	assert.Nil(t, ToJSONable(nil))
	assert.Equal(t, "hello", ToJSONable("hello"))
	assert.Equal(t, 42, ToJSONable(42))
	assert.Equal(t, 3.14, ToJSONable(3.14))
	assert.Equal(t, true, ToJSONable(true))
}

func TestToJSONableTime(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-01T12:30:00Z", ToJSONable(ts))
}

func TestToJSONableHumanMessage(t *testing.T) {
	msg := HumanMessage{
		Content: "hi there",
		ID:      "msg-1",
	}

	out, ok := ToJSONable(msg).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "human", out["type"])
	assert.Equal(t, "hi there", out["content"])
	assert.Equal(t, "msg-1", out["id"])
	_, hasName := out["name"]
	assert.False(t, hasName, "empty name must be omitted")
}

func TestToJSONableAIMessageWithToolCalls(t *testing.T) {
	msg := AIMessage{
		Content: "calling a tool",
		ToolCalls: []ToolCall{
			{ID: "call-1", Name: "search", Args: map[string]interface{}{"query": "weather"}},
		},
		UsageMetadata: map[string]interface{}{"input_tokens": 10},
	}

	out, ok := ToJSONable(msg).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "ai", out["type"])
	calls, ok := out["tool_calls"].([]interface{})
	require.True(t, ok)
	require.Len(t, calls, 1)

	call := calls[0].(map[string]interface{})
	assert.Equal(t, "call-1", call["id"])
	assert.Equal(t, "search", call["name"])
	assert.Equal(t, map[string]interface{}{"query": "weather"}, call["args"])
	assert.Equal(t, map[string]interface{}{"input_tokens": 10}, out["usage_metadata"])
}

func TestToJSONableToolMessageAlwaysCarriesCallID(t *testing.T) {
	out, ok := ToJSONable(ToolMessage{Content: "result"}).(map[string]interface{})
	require.True(t, ok)

	id, has := out["tool_call_id"]
	assert.True(t, has, "tool_call_id must be present even when empty")
	assert.Equal(t, "", id)
}

func TestToJSONableGenericMessageType(t *testing.T) {
	out := ToJSONable(GenericMessage{Content: "x"}).(map[string]interface{})
	assert.Equal(t, "unknown", out["type"])

	out = ToJSONable(GenericMessage{RawType: "function", Content: "x"}).(map[string]interface{})
	assert.Equal(t, "function", out["type"])
}

func TestToJSONableContentParts(t *testing.T) {
	msg := AIMessage{
		Content: []interface{}{
			"first line",
			map[string]interface{}{"type": "text", "text": "second line"},
			map[string]interface{}{"type": "image", "url": "ignored"},
		},
	}

	out := ToJSONable(msg).(map[string]interface{})
	assert.Equal(t, "first line\nsecond line", out["content"])
}

func TestToJSONableChainMapFlattens(t *testing.T) {
	cm := NewChainMap(
		map[string]interface{}{"a": 1, "b": "front"},
		map[string]interface{}{"b": "back", "c": 3},
	)

	out, ok := ToJSONable(cm).(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, 1, out["a"])
	assert.Equal(t, "front", out["b"], "front scope wins on collision")
	assert.Equal(t, 3, out["c"])
}

func TestToJSONableNestedStructures(t *testing.T) {
	state := map[string]interface{}{
		"channel_values": map[string]interface{}{
			"messages": []interface{}{
				HumanMessage{Content: "question"},
				AIMessage{Content: "answer"},
			},
		},
		"ts": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	out := ToJSONable(state).(map[string]interface{})
	cv := out["channel_values"].(map[string]interface{})
	messages := cv["messages"].([]interface{})
	assert.Equal(t, "question", messages[0].(map[string]interface{})["content"])
	assert.Equal(t, "answer", messages[1].(map[string]interface{})["content"])
	assert.Equal(t, "2025-01-01T00:00:00Z", out["ts"])

	// The whole result must survive a round trip through encoding/json.
	_, err := json.Marshal(out)
	assert.NoError(t, err)
}

func TestToJSONableTypedCollections(t *testing.T) {
	assert.Equal(t, []interface{}{"a", "b"}, ToJSONable([]string{"a", "b"}))
	assert.Equal(t, map[string]interface{}{"1": "one"}, ToJSONable(map[int]string{1: "one"}))
}

func TestToJSONableFallbackToString(t *testing.T) {
	ch := make(chan int)
	out := ToJSONable(struct{ C chan int }{C: ch})
	_, isString := out.(string)
	assert.True(t, isString, "unencodable values fall back to their string rendering")
}

func TestToJSONableIdempotent(t *testing.T) {
	state := map[string]interface{}{
		"channel_values": map[string]interface{}{
			"messages": []interface{}{
				ToolMessage{Content: "out", ToolCallID: "c1"},
			},
		},
	}

	once := ToJSONable(state)
	twice := ToJSONable(once)
	assert.Equal(t, once, twice)
}
