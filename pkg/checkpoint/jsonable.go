package checkpoint

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ToJSONable converts any value reachable from an agent turn's state graph
// into a JSON-safe tree. It is total: it never fails, falling back to a
// string rendering for anything it cannot model. Applying it to its own
// output is a no-op.
func ToJSONable(v interface{}) interface{} {
	switch obj := v.(type) {
	case nil:
		return nil

	case Message:
		return serializeMessage(obj)

	case *ChainMap:
		if obj == nil {
			return nil
		}
		return ToJSONable(obj.Flatten())

	case ChainMap:
		return ToJSONable(obj.Flatten())

	case time.Time:
		return obj.Format(time.RFC3339Nano)

	case map[string]interface{}:
		out := make(map[string]interface{}, len(obj))
		for k, val := range obj {
			out[k] = ToJSONable(val)
		}
		return out

	case []interface{}:
		out := make([]interface{}, len(obj))
		for i, val := range obj {
			out[i] = ToJSONable(val)
		}
		return out

	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return obj
	}

	// Generic maps and sequences (typed slices, non-string keyed maps, sets
	// modelled as maps) are walked reflectively. Set-like inputs have no
	// defined output order.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return ToJSONable(rv.Elem().Interface())

	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = ToJSONable(iter.Value().Interface())
		}
		return out

	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = ToJSONable(rv.Index(i).Interface())
		}
		return out
	}

	// Anything that already encodes cleanly passes through unchanged.
	if _, err := json.Marshal(v); err == nil {
		return v
	}
	return fmt.Sprint(v)
}

func serializeMessage(msg Message) map[string]interface{} {
	out := map[string]interface{}{
		"type":    msg.MessageType(),
		"content": flattenMessageContent(msg.MessageContent()),
	}

	var id, name string
	var kwargs map[string]interface{}

	switch m := msg.(type) {
	case HumanMessage:
		id, name, kwargs = m.ID, m.Name, m.AdditionalKwargs
	case SystemMessage:
		id, name, kwargs = m.ID, m.Name, m.AdditionalKwargs
	case ToolMessage:
		id, name, kwargs = m.ID, m.Name, m.AdditionalKwargs
		// tool_call_id is required for reconstructing the tool loop later,
		// even when empty.
		out["tool_call_id"] = m.ToolCallID
		if m.Artifact != nil {
			out["artifact"] = ToJSONable(m.Artifact)
		}
	case AIMessage:
		id, name, kwargs = m.ID, m.Name, m.AdditionalKwargs
		if len(m.ToolCalls) > 0 {
			calls := make([]interface{}, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				calls[i] = map[string]interface{}{
					"id":   tc.ID,
					"name": tc.Name,
					"args": ToJSONable(tc.Args),
				}
			}
			out["tool_calls"] = calls
		}
		if m.UsageMetadata != nil {
			out["usage_metadata"] = ToJSONable(m.UsageMetadata)
		}
	case GenericMessage:
		id, name, kwargs = m.ID, m.Name, m.AdditionalKwargs
	}

	if id != "" {
		out["id"] = id
	}
	if name != "" {
		out["name"] = name
	}
	if len(kwargs) > 0 {
		out["additional_kwargs"] = ToJSONable(kwargs)
	}

	return out
}

// flattenMessageContent extracts text from provider content-part lists
// (plain strings, or objects carrying a "text" field) joined by newlines.
// Lists with no text parts are stringified rather than dropped.
func flattenMessageContent(content interface{}) interface{} {
	parts, ok := content.([]interface{})
	if !ok {
		if s, isStr := content.(string); isStr {
			return s
		}
		return ToJSONable(content)
	}

	var textParts []string
	for _, part := range parts {
		switch p := part.(type) {
		case string:
			textParts = append(textParts, p)
		case map[string]interface{}:
			if text, found := p["text"].(string); found {
				textParts = append(textParts, text)
			}
		}
	}

	if len(textParts) == 0 {
		return fmt.Sprint(parts)
	}
	return strings.Join(textParts, "\n")
}
