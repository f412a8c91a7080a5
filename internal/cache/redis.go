package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"tickerbrief/internal/model"
)

// StaleRetention is how long an entry outlives its TTL so it can still be
// served under degradation before Redis drops it.
const StaleRetention = 7 * 24 * time.Hour

type redisEnvelope struct {
	Payload    json.RawMessage `json:"payload"`
	FetchedAt  time.Time       `json:"fetched_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
}

// RedisStore keeps entries in Redis with an expiry longer than the freshness
// TTL, so Get can distinguish fresh, stale and absent.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "tickerbrief:"}
}

func (s *RedisStore) Get(ctx context.Context, symbol string, kind model.DataKind) (*Entry, error) {
	key := s.prefix + entryKey(symbol, kind)

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupt entries are a cache miss, never a caller-visible failure.
		slog.Warn("discarding malformed cache entry", "key", key, "error", err)
		s.client.Del(ctx, key)
		return nil, nil
	}

	return &Entry{
		Payload:   env.Payload,
		FetchedAt: env.FetchedAt,
		TTL:       time.Duration(env.TTLSeconds) * time.Second,
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, symbol string, kind model.DataKind, payload []byte, ttl time.Duration) error {
	env := redisEnvelope{
		Payload:    payload,
		FetchedAt:  time.Now(),
		TTLSeconds: int64(ttl / time.Second),
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+entryKey(symbol, kind), raw, ttl+StaleRetention).Err()
}

func (s *RedisStore) Invalidate(ctx context.Context, symbol string, kind model.DataKind) error {
	return s.client.Del(ctx, s.prefix+entryKey(symbol, kind)).Err()
}

func (s *RedisStore) InvalidateAll(ctx context.Context, symbol string) error {
	keys := make([]string, 0, len(model.Kinds))
	for _, kind := range model.Kinds {
		keys = append(keys, s.prefix+entryKey(symbol, kind))
	}
	return s.client.Del(ctx, keys...).Err()
}
