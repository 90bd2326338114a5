package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const notifyKeyPrefix = "itsm:sla:notified:"

// NotifyOnceMarker records that a notification was sent. MarkOnce returns true only for
// the first caller within ttl.
type NotifyOnceMarker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// NewNotifyOnceMarker picks Redis when available and memory otherwise.
func NewNotifyOnceMarker(r *Redis) NotifyOnceMarker {
	if r.Enabled() {
		return &redisNotifyMarker{client: r.Client}
	}
	return NewMemoryNotifyMarker(time.Now)
}

type redisNotifyMarker struct {
	client *redis.Client
}

func (m *redisNotifyMarker) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return m.client.SetNX(ctx, notifyKeyPrefix+key, 1, ttl).Result()
}

// MemoryNotifyMarker is the in-process NotifyOnceMarker.
type MemoryNotifyMarker struct {
	mu      sync.Mutex
	now     func() time.Time
	expires map[string]time.Time
}

// NewMemoryNotifyMarker builds a marker using now as its clock.
func NewMemoryNotifyMarker(now func() time.Time) *MemoryNotifyMarker {
	return &MemoryNotifyMarker{now: now, expires: map[string]time.Time{}}
}

// MarkOnce implements NotifyOnceMarker.
func (m *MemoryNotifyMarker) MarkOnce(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.expires {
		if !now.Before(exp) {
			delete(m.expires, k)
		}
	}
	if _, marked := m.expires[key]; marked {
		return false, nil
	}
	m.expires[key] = now.Add(ttl)
	return true, nil
}
