package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository.attempt")

// AttemptRepository counts attempts per key inside a fixed window.
type AttemptRepository interface {
	// Hit records one attempt for key and returns the number of attempts in the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

type redisAttemptRepository struct {
	rdb    *redis.Client
	prefix string
}

// NewAttemptRepository creates a new Redis-based AttemptRepository. Keys are stored under
// "attempts:<prefix>:<key>".
func NewAttemptRepository(rdb *redis.Client, prefix string) AttemptRepository {
	return &redisAttemptRepository{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (r *redisAttemptRepository) key(key string) string {
	return fmt.Sprintf("attempts:%s:%s", r.prefix, key)
}

// Hit increments the counter and starts the window on the first attempt. A counter that
// somehow lost its expiry gets one again, so a key never blocks forever.
func (r *redisAttemptRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, span := tracer.Start(ctx, "AttemptRepository.Hit")
	defer span.End()

	attemptKey := r.key(key)
	pipe := r.rdb.Pipeline()
	incr := pipe.Incr(ctx, attemptKey)
	ttl := pipe.TTL(ctx, attemptKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count attempt: %w", err)
	}

	if ttl.Val() < 0 {
		if err := r.rdb.Expire(ctx, attemptKey, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set attempt window: %w", err)
		}
	}
	return incr.Val(), nil
}

// Reset forgets every attempt recorded for key.
func (r *redisAttemptRepository) Reset(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "AttemptRepository.Reset")
	defer span.End()

	return r.rdb.Del(ctx, r.key(key)).Err()
}
