// Package ratelimit throttles mutating requests per client over a fixed
// one-minute window.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"daylog/internal/cache"
	"daylog/internal/observability"
)

const (
	defaultPerMinute = 60
	idleWindows      = 10
)

// Limiter counts requests per key in fixed windows. It holds no goroutine of
// its own; register it with a cache.Manager so idle keys are swept.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    int
	window   time.Duration
	rejected atomic.Int64
	now      func() time.Time
}

type bucket struct {
	opened time.Time
	seen   time.Time
	count  int
}

var _ cache.Cleaner = (*Limiter)(nil)

// Config holds rate limiter configuration. A non-positive RequestsPerMinute
// falls back to 60.
type Config struct {
	RequestsPerMinute int
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultPerMinute
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   cfg.RequestsPerMinute,
		window:  time.Minute,
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it fits the
// current window.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.opened) >= rl.window {
		rl.buckets[key] = &bucket{opened: now, seen: now, count: 1}
		return true
	}

	b.seen = now
	if b.count >= rl.limit {
		rl.rejected.Add(1)
		return false
	}
	b.count++
	return true
}

// RetryAfter returns the whole seconds until key's window reopens.
func (rl *Limiter) RetryAfter(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		return 0
	}
	left := rl.window - rl.now().Sub(b.opened)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// CleanExpired forgets keys idle for ten windows.
func (rl *Limiter) CleanExpired() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idleWindows * rl.window)
	removed := 0
	for key, b := range rl.buckets {
		if b.seen.Before(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of tracked keys.
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Rejected returns how many requests have been refused since start.
func (rl *Limiter) Rejected() int64 {
	return rl.rejected.Load()
}

// Middleware limits POST, PUT, PATCH and DELETE requests keyed by keyOf.
// Reads pass through. onLimit renders the refusal; nil writes a plain 429.
func (rl *Limiter) Middleware(keyOf func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			key := keyOf(r)
			if rl.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}

			observability.RecordRateLimited()
			if secs := rl.RetryAfter(key); secs > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			if onLimit == nil {
				http.Error(w, "Too many changes, slow down.", http.StatusTooManyRequests)
				return
			}
			onLimit(w, r)
		})
	}
}
