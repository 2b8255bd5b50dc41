package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestThrottle(t *testing.T) (*Throttle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewThrottle(client, nil, 2, time.Minute), mr
}

func TestThrottleBlocksAtLimit(t *testing.T) {
	throttle, _ := newTestThrottle(t)
	ctx := context.Background()

	assert.False(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))
	throttle.NoteFailure(ctx, "alice", "10.0.0.1")
	assert.False(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))
	throttle.NoteFailure(ctx, "alice", "10.0.0.1")
	assert.True(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))

	// Separate pairs keep separate counters.
	assert.False(t, throttle.Blocked(ctx, "alice", "10.0.0.2"))
	assert.False(t, throttle.Blocked(ctx, "bob", "10.0.0.1"))
}

func TestThrottleWindowExpires(t *testing.T) {
	throttle, mr := newTestThrottle(t)
	ctx := context.Background()

	throttle.NoteFailure(ctx, "alice", "10.0.0.1")
	throttle.NoteFailure(ctx, "alice", "10.0.0.1")
	assert.True(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))
}

func TestThrottleReset(t *testing.T) {
	throttle, _ := newTestThrottle(t)
	ctx := context.Background()

	throttle.NoteFailure(ctx, "alice", "10.0.0.1")
	throttle.NoteFailure(ctx, "alice", "10.0.0.1")
	assert.True(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))

	throttle.Reset(ctx, "alice", "10.0.0.1")
	assert.False(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))
}

func TestThrottleNilIsDisabled(t *testing.T) {
	var throttle *Throttle
	ctx := context.Background()
	assert.False(t, throttle.Blocked(ctx, "alice", "10.0.0.1"))
	throttle.NoteFailure(ctx, "alice", "10.0.0.1")
	throttle.Reset(ctx, "alice", "10.0.0.1")
}
