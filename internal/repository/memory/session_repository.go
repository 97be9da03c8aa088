package memory

import (
	"context"
	"time"

	"ai-conversation-be/internal/repository/contract"
	"ai-conversation-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() contract.SessionStore {
	// Default expiration of 24 hours so an anonymous visitor keeps the same
	// thread token across a day of page loads; expired items purged every
	// 10 minutes.
	c := cache.New(24*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}
