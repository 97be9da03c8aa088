package contract

import (
	"context"

	"ai-conversation-be/pkg/store"
)

// SessionStore maps a client session key to its minted thread token. Backed
// by in-process cache or Redis depending on deployment.
type SessionStore interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, sessionID string) (*store.Session, bool, error)
	Delete(ctx context.Context, sessionID string) error
}
