package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptPrefix = "login_attempts:"

// LoginAttemptRepository counts failed logins per username inside a window.
type LoginAttemptRepository interface {
	Count(ctx context.Context, username string) (int64, error)
	RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error)
	Reset(ctx context.Context, username string) error
}

type loginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository returns a Redis-backed implementation.
func NewLoginAttemptRepository(client *redis.Client) LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

func (r *loginAttemptRepository) Count(ctx context.Context, username string) (int64, error) {
	n, err := r.client.Get(ctx, loginAttemptKey(username)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read login attempts: %w", err)
	}
	return n, nil
}

// RecordFailure increments the counter. The window starts at the first
// failure and is not extended by later ones.
func (r *loginAttemptRepository) RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	key := loginAttemptKey(username)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return incr.Val(), nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, username string) error {
	if err := r.client.Del(ctx, loginAttemptKey(username)).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func loginAttemptKey(username string) string {
	return loginAttemptPrefix + username
}
