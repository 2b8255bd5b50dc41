package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle tracks failed login attempts per username and client IP in
// redis. It hardens the login endpoint against online guessing; it is not
// an authorization cache and never influences capability checks.
type Throttle struct {
	client *redis.Client
	logger *slog.Logger
	limit  int
	window time.Duration
}

// NewThrottle constructs a Throttle. A nil client disables throttling.
func NewThrottle(client *redis.Client, logger *slog.Logger, limit int, window time.Duration) *Throttle {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Throttle{client: client, logger: logger, limit: limit, window: window}
}

func (t *Throttle) key(username, ip string) string {
	return fmt.Sprintf("login_fail:%s:%s", username, ip)
}

// Blocked reports whether the username+IP pair has exhausted its attempts.
// Redis unavailability fails open: login still works, only the guard drops.
func (t *Throttle) Blocked(ctx context.Context, username, ip string) bool {
	if t == nil || t.client == nil {
		return false
	}
	count, err := t.client.Get(ctx, t.key(username, ip)).Int()
	if err != nil {
		if err != redis.Nil && t.logger != nil {
			t.logger.Warn("login throttle read", slog.Any("error", err))
		}
		return false
	}
	return count >= t.limit
}

// NoteFailure records one failed attempt for the pair.
func (t *Throttle) NoteFailure(ctx context.Context, username, ip string) {
	if t == nil || t.client == nil {
		return
	}
	key := t.key(username, ip)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("login throttle incr", slog.Any("error", err))
		}
		return
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil && t.logger != nil {
			t.logger.Warn("login throttle expire", slog.Any("error", err))
		}
	}
}

// Reset clears the counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, username, ip string) {
	if t == nil || t.client == nil {
		return
	}
	if err := t.client.Del(ctx, t.key(username, ip)).Err(); err != nil && t.logger != nil {
		t.logger.Warn("login throttle reset", slog.Any("error", err))
	}
}
