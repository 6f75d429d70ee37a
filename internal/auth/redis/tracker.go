// Package redis stores login failure counters in Redis so every replica sees the same lock state.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/attendance-management/internal/auth"
	goredis "github.com/redis/go-redis/v9"
)

// KEYS[1] failure counter, KEYS[2] lock marker.
// ARGV: until_ms, max_attempts, window_ms, lock_ms
var registerFailureScript = goredis.NewScript(`
local max_attempts = tonumber(ARGV[2])
local window_ms = tonumber(ARGV[3])
local lock_ms = tonumber(ARGV[4])

local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], window_ms)
end

if count >= max_attempts then
  redis.call("SET", KEYS[2], ARGV[1], "PX", lock_ms)
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`)

type AttemptTracker struct {
	client goredis.UniversalClient
	prefix string
	policy auth.LockoutPolicy
	now    func() time.Time
}

func NewAttemptTracker(client goredis.UniversalClient, prefix string, policy auth.LockoutPolicy) *AttemptTracker {
	if prefix == "" {
		prefix = "login"
	}
	return &AttemptTracker{client: client, prefix: prefix, policy: policy, now: time.Now}
}

func (t *AttemptTracker) failKey(key string) string { return t.prefix + ":fail:" + key }
func (t *AttemptTracker) lockKey(key string) string { return t.prefix + ":lock:" + key }

func (t *AttemptTracker) Locked(ctx context.Context, key string) (time.Time, bool, error) {
	if t.client == nil {
		return time.Time{}, false, errors.New("redis client is not configured")
	}
	raw, err := t.client.Get(ctx, t.lockKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read lock: %w", err)
	}
	untilMs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse lock value %q: %w", raw, err)
	}
	return time.UnixMilli(untilMs), true, nil
}

func (t *AttemptTracker) RegisterFailure(ctx context.Context, key string) (time.Time, bool, error) {
	if t.client == nil {
		return time.Time{}, false, errors.New("redis client is not configured")
	}
	until := t.now().Add(t.policy.LockDuration).Truncate(time.Millisecond)
	locked, err := registerFailureScript.Run(ctx, t.client,
		[]string{t.failKey(key), t.lockKey(key)},
		until.UnixMilli(),
		t.policy.MaxAttempts,
		t.policy.Window.Milliseconds(),
		t.policy.LockDuration.Milliseconds(),
	).Int64()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("register failure: %w", err)
	}
	if locked == 1 {
		return until, true, nil
	}
	return time.Time{}, false, nil
}

func (t *AttemptTracker) Reset(ctx context.Context, key string) error {
	if t.client == nil {
		return errors.New("redis client is not configured")
	}
	return t.client.Del(ctx, t.failKey(key), t.lockKey(key)).Err()
}
