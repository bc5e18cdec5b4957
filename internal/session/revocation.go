package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"daylog/internal/cache"
)

// Revocations is the sign-out denylist of token ids. Entries only need to
// outlive the token they revoke.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocations keeps the denylist in process. Entries are never
// evicted early: a revocation only goes away once its token has expired.
type MemoryRevocations struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

var _ cache.Cleaner = (*MemoryRevocations)(nil)

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{until: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !until.After(m.now()) {
		return nil
	}
	if prev, ok := m.until[tokenID]; !ok || until.After(prev) {
		m.until[tokenID] = until
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.until[tokenID]
	return ok && m.now().Before(until), nil
}

// CleanExpired drops revocations whose tokens have expired.
func (m *MemoryRevocations) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, until := range m.until {
		if !now.Before(until) {
			delete(m.until, id)
			removed++
		}
	}
	return removed
}

// RedisRevocations shares the denylist between server instances.
type RedisRevocations struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocations connects to url (redis:// or rediss://).
func NewRedisRevocations(ctx context.Context, url string) (*RedisRevocations, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisRevocations{client: client, prefix: "daylog:revoked:"}, nil
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}
	return nil
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, r.prefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read revocation: %w", err)
	}
	return true, nil
}

func (r *RedisRevocations) Close() error {
	return r.client.Close()
}
