package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter admits at most a fixed number of events per key per window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a per-key token bucket held in process memory.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	window  time.Duration
	now     func() time.Time
}

// NewMemory allows n events per window per key, refilling evenly.
func NewMemory(n int, window time.Duration) *Memory {
	if n < 1 {
		n = 1
	}
	return &Memory{
		entries: make(map[string]*entry),
		limit:   rate.Every(window / time.Duration(n)),
		burst:   n,
		window:  window,
		now:     time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// Prune drops keys idle for longer than one window; their buckets are full
// again so forgetting them changes nothing.
func (m *Memory) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.window)
	removed := 0
	for k, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Redis is a fixed-window counter shared by every instance using the same
// Redis server.
type Redis struct {
	rdb    *redis.Client
	n      int64
	window time.Duration
	prefix string
}

func NewRedis(rdb *redis.Client, n int, window time.Duration, prefix string) *Redis {
	if n < 1 {
		n = 1
	}
	return &Redis{rdb: rdb, n: int64(n), window: window, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return fmt.Sprintf("%s:%s", r.prefix, k)
}

// Allow counts the attempt and sets the window TTL in one transaction. NX
// leaves a running window alone but repairs a key left without a TTL.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.key(key)
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count attempt: %w", err)
	}
	return incr.Val() <= r.n, nil
}
