package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

// RedisStore implements Store on Redis. Entries carry no TTL; stale days are
// simply never asked for again, matching the other backends.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects to Redis at addr and verifies the connection.
func NewRedis(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "cache: redis ping %s", addr)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context, province string, day time.Time) (*model.Bundle, error) {
	key := Key(province, day)
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: redis load %s", key)
	}

	var bundle model.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		zap.L().Warn("cache: dropping corrupt redis entry",
			zap.String("key", key),
			zap.Error(err),
		)
		_ = s.client.Del(ctx, key).Err()
		return nil, nil
	}
	return &bundle, nil
}

func (s *RedisStore) Save(ctx context.Context, province string, day time.Time, bundle *model.Bundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "cache: marshal bundle")
	}
	key := Key(province, day)
	return eris.Wrapf(s.client.Set(ctx, key, data, 0).Err(), "cache: redis save %s", key)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
