package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Simplici0/supportquote/internal/pricing"
)

const keyPrefix = "quote:"

// RedisStore keeps quotes as JSON under quote:<id> with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// ConnectRedis opens a client and pings it with exponential backoff until
// it answers or maxElapsed passes.
func ConnectRedis(ctx context.Context, opts *redis.Options, maxElapsed time.Duration, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(opts)

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = maxElapsed
	retryPolicy.MaxInterval = 5 * time.Second

	err := backoff.RetryNotify(
		func() error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			log.Warn("redis not reachable, retrying",
				zap.String("addr", opts.Addr),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*pricing.Quote, error) {
	data, err := s.client.GetEx(ctx, keyPrefix+id, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}

	var q pricing.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal quote %s: %w", id, err)
	}
	return &q, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, q *pricing.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote %s: %w", id, err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}
