package checkpoint

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStatePatchesLegacyToolMessages(t *testing.T) {
	state := map[string]interface{}{
		"channel_values": map[string]interface{}{
			"messages": []interface{}{
				map[string]interface{}{"type": "human", "content": "hi"},
				map[string]interface{}{"type": "tool", "content": "result"},
				map[string]interface{}{"type": "tool", "content": "ok", "tool_call_id": "call-7"},
			},
		},
	}

	out := SanitizeState(state)
	messages := out["channel_values"].(map[string]interface{})["messages"].([]interface{})

	patched := messages[1].(map[string]interface{})
	assert.Equal(t, LegacyMissingToolCallID, patched["tool_call_id"])

	intact := messages[2].(map[string]interface{})
	assert.Equal(t, "call-7", intact["tool_call_id"])
}

func TestSanitizeStateDoesNotMutateInput(t *testing.T) {
	original := map[string]interface{}{"type": "tool", "content": "result"}
	state := map[string]interface{}{
		"channel_values": map[string]interface{}{
			"messages": []interface{}{original},
		},
	}

	out := SanitizeState(state)
	require.NotNil(t, out)

	_, leaked := original["tool_call_id"]
	assert.False(t, leaked, "stored record must stay untouched")
}

func TestSanitizeStateReturnsSameRefWhenClean(t *testing.T) {
	state := map[string]interface{}{
		"channel_values": map[string]interface{}{
			"messages": []interface{}{
				map[string]interface{}{"type": "human", "content": "hi"},
				map[string]interface{}{"type": "tool", "content": "r", "tool_call_id": "c"},
			},
		},
	}

	out := SanitizeState(state)
	assert.Equal(t,
		reflect.ValueOf(state).Pointer(),
		reflect.ValueOf(out).Pointer(),
		"unchanged state returns the original reference")
}

func TestSanitizeStateEdgeShapes(t *testing.T) {
	assert.Nil(t, SanitizeState(nil))

	empty := map[string]interface{}{}
	assert.Equal(t,
		reflect.ValueOf(empty).Pointer(),
		reflect.ValueOf(SanitizeState(empty)).Pointer())

	noMessages := map[string]interface{}{"channel_values": map[string]interface{}{}}
	out := SanitizeState(noMessages)
	assert.NotNil(t, out)

	// Non-map entries pass through untouched.
	mixed := map[string]interface{}{
		"channel_values": map[string]interface{}{
			"messages": []interface{}{"stringified legacy message", 42},
		},
	}
	out = SanitizeState(mixed)
	messages := out["channel_values"].(map[string]interface{})["messages"].([]interface{})
	assert.Equal(t, "stringified legacy message", messages[0])
	assert.Equal(t, 42, messages[1])
}
