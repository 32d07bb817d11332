package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Debouncer opens at most one window per period. Acquire returns true only for
// the caller that opened the current window.
type Debouncer interface {
	Acquire(ctx context.Context) (bool, error)
}

// MemoryDebouncer is a process-local Debouncer.
type MemoryDebouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
	now    func() time.Time
}

func NewMemoryDebouncer(window time.Duration) *MemoryDebouncer {
	return &MemoryDebouncer{window: window, now: time.Now}
}

// WithClock swaps the time source, for tests.
func (d *MemoryDebouncer) WithClock(now func() time.Time) *MemoryDebouncer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
	return d
}

func (d *MemoryDebouncer) Acquire(_ context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.now()
	if !d.last.IsZero() && t.Sub(d.last) < d.window {
		return false, nil
	}
	d.last = t
	return true, nil
}

// Reset closes the current window.
func (d *MemoryDebouncer) Reset() {
	d.mu.Lock()
	d.last = time.Time{}
	d.mu.Unlock()
}

// RedisDebouncer shares one window between every console process pointed at
// the same Redis key. When Redis is unreachable it degrades to a local window
// and reports the error alongside the local decision.
type RedisDebouncer struct {
	client   redis.Cmdable
	key      string
	window   time.Duration
	fallback *MemoryDebouncer
}

func NewRedisDebouncer(client redis.Cmdable, key string, window time.Duration) *RedisDebouncer {
	return &RedisDebouncer{
		client:   client,
		key:      key,
		window:   window,
		fallback: NewMemoryDebouncer(window),
	}
}

func (d *RedisDebouncer) Acquire(ctx context.Context) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key, "1", d.window).Result()
	if err != nil {
		local, _ := d.fallback.Acquire(ctx)
		return local, fmt.Errorf("redis debounce %s: %w", d.key, err)
	}
	return ok, nil
}
