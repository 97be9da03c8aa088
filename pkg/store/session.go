package store

// Session is the per-client conversation session. It carries the durable
// thread token handed to the checkpoint store; minting happens here, at the
// layer above the store, because the store itself refuses to invent tokens.
type Session struct {
	ID           string `json:"id"`      // client session key (cookie value)
	UserID       string `json:"user_id"` // empty for anonymous sessions
	ThreadToken  string `json:"thread_token"`
	WorkflowKind string `json:"workflow_kind"`
}
