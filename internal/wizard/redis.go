// internal/wizard/redis.go
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps each section under a session-scoped Redis key with a
// TTL, for deployments where the wizard runs on a shared terminal.
type RedisStorage struct {
	client  *redis.Client
	session string
	ttl     time.Duration
}

func NewRedisStorage(client *redis.Client, sessionID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, session: sessionID, ttl: ttl}
}

func (r *RedisStorage) key(blob string) string {
	return fmt.Sprintf("wizard:%s:%s", r.session, blob)
}

func (r *RedisStorage) readBlob(ctx context.Context, blob string, out interface{}) error {
	data, err := r.client.Get(ctx, r.key(blob)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", blob, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", blob, err)
	}
	return nil
}

func (r *RedisStorage) writeBlob(ctx context.Context, blob string, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", blob, err)
	}
	if err := r.client.Set(ctx, r.key(blob), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", blob, err)
	}
	return nil
}

func (r *RedisStorage) Load(ctx context.Context) (State, error) {
	state := NewState()

	if err := r.readBlob(ctx, keyInitial, &state.Identity); err != nil {
		return State{}, err
	}
	if err := r.readBlob(ctx, keyBasic, &state.BasicInfo); err != nil {
		return State{}, err
	}
	if err := r.readBlob(ctx, keyContact, &state.Contact); err != nil {
		return State{}, err
	}
	if err := r.readBlob(ctx, keyPersonal, &state.Personal); err != nil {
		return State{}, err
	}
	if err := r.readBlob(ctx, keyAccount, &state.Account); err != nil {
		return State{}, err
	}

	var global globalBlob
	if err := r.readBlob(ctx, keyGlobal, &global); err != nil {
		return State{}, err
	}
	state.CurrentStep = global.CurrentStep

	return state, nil
}

func (r *RedisStorage) Save(ctx context.Context, state State) error {
	if err := r.writeBlob(ctx, keyInitial, state.Identity); err != nil {
		return err
	}
	if err := r.writeBlob(ctx, keyBasic, state.BasicInfo); err != nil {
		return err
	}
	if err := r.writeBlob(ctx, keyContact, state.Contact); err != nil {
		return err
	}
	if err := r.writeBlob(ctx, keyPersonal, state.Personal); err != nil {
		return err
	}
	if err := r.writeBlob(ctx, keyAccount, state.Account); err != nil {
		return err
	}
	return r.writeBlob(ctx, keyGlobal, globalBlob{CurrentStep: state.CurrentStep})
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	keys := make([]string, 0, len(allKeys))
	for _, blob := range allKeys {
		keys = append(keys, r.key(blob))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear wizard state: %w", err)
	}
	return nil
}
