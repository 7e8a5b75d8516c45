package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(storeID int64, sessionID string) string
}

// RedisSnapshotStore keeps one JSON snapshot per session under the
// namespaced "cart" key, refreshing its TTL on every save.
type RedisSnapshotStore struct {
	kv  kvStore
	ttl time.Duration
}

func NewRedisSnapshotStore(kv kvStore, ttl time.Duration) (*RedisSnapshotStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisSnapshotStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, key SessionKey) (*Snapshot, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(key.StoreID, key.SessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, key SessionKey, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return s.kv.Set(ctx, s.kv.CartKey(key.StoreID, key.SessionID), string(payload), s.ttl)
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, key SessionKey) error {
	return s.kv.Del(ctx, s.kv.CartKey(key.StoreID, key.SessionID))
}
