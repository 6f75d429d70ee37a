package auth

import (
	"context"
	"sync"
	"time"
)

type LockoutPolicy struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

type attemptWindow struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// expired reports whether the entry no longer affects any login decision.
func (e *attemptWindow) expired(now time.Time, window time.Duration) bool {
	if now.Before(e.lockedUntil) {
		return false
	}
	return !e.lockedUntil.IsZero() || now.Sub(e.windowStart) >= window
}

// sweepEvery is the number of recorded failures between passes that drop lapsed entries.
const sweepEvery = 256

// MemoryAttemptTracker keeps failure counters in process memory. Counters are lost on restart and are not shared between replicas.
type MemoryAttemptTracker struct {
	sync.Mutex
	policy  LockoutPolicy
	entries map[string]*attemptWindow
	now     func() time.Time
	calls   int
}

func NewMemoryAttemptTracker(policy LockoutPolicy, now func() time.Time) *MemoryAttemptTracker {
	if now == nil {
		now = time.Now
	}
	return &MemoryAttemptTracker{
		policy:  policy,
		entries: make(map[string]*attemptWindow),
		now:     now,
	}
}

func (t *MemoryAttemptTracker) Locked(_ context.Context, key string) (time.Time, bool, error) {
	t.Lock()
	defer t.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return time.Time{}, false, nil
	}
	now := t.now()
	if now.Before(e.lockedUntil) {
		return e.lockedUntil, true, nil
	}
	if e.expired(now, t.policy.Window) {
		delete(t.entries, key)
	}
	return time.Time{}, false, nil
}

func (t *MemoryAttemptTracker) RegisterFailure(_ context.Context, key string) (time.Time, bool, error) {
	t.Lock()
	defer t.Unlock()

	now := t.now()
	t.calls++
	if t.calls%sweepEvery == 0 {
		t.sweep(now)
	}

	e, ok := t.entries[key]
	if !ok || e.expired(now, t.policy.Window) {
		e = &attemptWindow{windowStart: now}
		t.entries[key] = e
	}

	e.count++
	if e.count >= t.policy.MaxAttempts {
		e.lockedUntil = now.Add(t.policy.LockDuration)
		return e.lockedUntil, true, nil
	}
	return time.Time{}, false, nil
}

// sweep drops every lapsed entry. Callers hold the lock.
func (t *MemoryAttemptTracker) sweep(now time.Time) {
	for key, e := range t.entries {
		if e.expired(now, t.policy.Window) {
			delete(t.entries, key)
		}
	}
}

// Len returns the number of tracked employee numbers.
func (t *MemoryAttemptTracker) Len() int {
	t.Lock()
	defer t.Unlock()
	return len(t.entries)
}

func (t *MemoryAttemptTracker) Reset(_ context.Context, key string) error {
	t.Lock()
	delete(t.entries, key)
	t.Unlock()
	return nil
}

// NopAttemptTracker never locks an account.
type NopAttemptTracker struct{}

func (NopAttemptTracker) Locked(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (NopAttemptTracker) RegisterFailure(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (NopAttemptTracker) Reset(context.Context, string) error {
	return nil
}
