package memory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-conversation-be/internal/repository/contract"
	"ai-conversation-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "chat:session:"

// RedisSessionRepository is the multi-instance variant of the session store:
// thread tokens survive process restarts and are shared across replicas.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client) contract.SessionStore {
	return &RedisSessionRepository{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.ID, data, r.ttl).Err()
}

func (r *RedisSessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, err
	}
	return &session, true, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
