package spectra

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the tokens of a profile in a redis hash, so that several
// processes or hosts share the same session.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

// NewRedisStore returns a RedisStore holding the tokens of profile in the
// hash "aurora:session:<profile>".
func NewRedisStore(rdb redis.Cmdable, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{rdb: rdb, key: "aurora:session:" + profile}
}

// Key returns the redis hash key.
func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cannot read %s from redis: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("cannot write %s to redis: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("cannot delete %s from redis: %w", key, err)
	}
	return nil
}
