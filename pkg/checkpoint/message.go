package checkpoint

// Message is the closed set of conversation message kinds handled by the
// serializer. Content is interface{} because providers return either a plain
// string or a list of content parts.
type Message interface {
	MessageType() string
	MessageContent() interface{}
}

// ToolCall is a tool invocation requested by an assistant message.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]interface{}
}

type HumanMessage struct {
	Content          interface{}
	ID               string
	Name             string
	AdditionalKwargs map[string]interface{}
}

func (m HumanMessage) MessageType() string         { return "human" }
func (m HumanMessage) MessageContent() interface{} { return m.Content }

type AIMessage struct {
	Content          interface{}
	ID               string
	Name             string
	ToolCalls        []ToolCall
	UsageMetadata    map[string]interface{}
	AdditionalKwargs map[string]interface{}
}

func (m AIMessage) MessageType() string         { return "ai" }
func (m AIMessage) MessageContent() interface{} { return m.Content }

type SystemMessage struct {
	Content          interface{}
	ID               string
	Name             string
	AdditionalKwargs map[string]interface{}
}

func (m SystemMessage) MessageType() string         { return "system" }
func (m SystemMessage) MessageContent() interface{} { return m.Content }

type ToolMessage struct {
	Content          interface{}
	ID               string
	Name             string
	ToolCallID       string
	Artifact         interface{}
	AdditionalKwargs map[string]interface{}
}

func (m ToolMessage) MessageType() string         { return "tool" }
func (m ToolMessage) MessageContent() interface{} { return m.Content }

// GenericMessage covers message kinds outside the closed set. RawType is the
// tag read off the original object; empty means "unknown".
type GenericMessage struct {
	RawType          string
	Content          interface{}
	ID               string
	Name             string
	AdditionalKwargs map[string]interface{}
}

func (m GenericMessage) MessageType() string {
	if m.RawType == "" {
		return "unknown"
	}
	return m.RawType
}

func (m GenericMessage) MessageContent() interface{} { return m.Content }
