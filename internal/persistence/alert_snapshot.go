package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/itsm-service/internal/domain"
)

const (
	alertSnapshotKey = "itsm:sla:alerts:latest"
	maxWatchRetries  = 5
)

// AlertSnapshot is the result of one scheduled evaluation.
type AlertSnapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Alerts      []domain.SLAAlert `json:"alerts"`
}

// AlertSnapshotStore keeps the newest evaluation result. Save reports false when a
// snapshot generated at or after snap is already stored.
type AlertSnapshotStore interface {
	Save(ctx context.Context, snap AlertSnapshot) (bool, error)
	Latest(ctx context.Context) (*AlertSnapshot, error)
}

// NewAlertSnapshotStore picks Redis when available and memory otherwise.
func NewAlertSnapshotStore(r *Redis, ttl time.Duration) AlertSnapshotStore {
	if r.Enabled() {
		return &redisAlertSnapshotStore{client: r.Client, ttl: ttl}
	}
	return &MemoryAlertSnapshotStore{}
}

type redisAlertSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisAlertSnapshotStore) Save(ctx context.Context, snap AlertSnapshot) (bool, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return false, err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		stored := false
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := readSnapshot(ctx, tx)
			if err != nil {
				return err
			}
			if current != nil && !snap.GeneratedAt.After(current.GeneratedAt) {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, alertSnapshotKey, payload, s.ttl)
				return nil
			})
			if err == nil {
				stored = true
			}
			return err
		}, alertSnapshotKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return stored, err
	}
	return false, err
}

func (s *redisAlertSnapshotStore) Latest(ctx context.Context) (*AlertSnapshot, error) {
	return readSnapshot(ctx, s.client)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readSnapshot(ctx context.Context, c stringGetter) (*AlertSnapshot, error) {
	raw, err := c.Get(ctx, alertSnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap AlertSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// MemoryAlertSnapshotStore is the in-process AlertSnapshotStore.
type MemoryAlertSnapshotStore struct {
	mu     sync.RWMutex
	latest *AlertSnapshot
}

// Save stores snap unless a newer one is present.
func (s *MemoryAlertSnapshotStore) Save(_ context.Context, snap AlertSnapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != nil && !snap.GeneratedAt.After(s.latest.GeneratedAt) {
		return false, nil
	}
	stored := AlertSnapshot{
		GeneratedAt: snap.GeneratedAt,
		Alerts:      append([]domain.SLAAlert(nil), snap.Alerts...),
	}
	s.latest = &stored
	return true, nil
}

// Latest returns the stored snapshot or nil.
func (s *MemoryAlertSnapshotStore) Latest(_ context.Context) (*AlertSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, nil
	}
	out := AlertSnapshot{
		GeneratedAt: s.latest.GeneratedAt,
		Alerts:      append([]domain.SLAAlert(nil), s.latest.Alerts...),
	}
	return &out, nil
}
