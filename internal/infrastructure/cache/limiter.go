package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowLimiter allows limit hits per subject in each fixed window.
// Counters live in Redis so every process shares them.
type RedisWindowLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	limit     int
	window    time.Duration
	now       func() time.Time
}

// NewRedisWindowLimiter creates the limiter. A limit of zero or less
// allows everything.
func NewRedisWindowLimiter(client redis.Cmdable, keyPrefix string, limit int, window time.Duration) *RedisWindowLimiter {
	return &RedisWindowLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		now:       time.Now,
	}
}

func (l *RedisWindowLimiter) key(subject string) string {
	start := l.now().UTC().Truncate(l.window).Unix()
	return l.keyPrefix + subject + ":" + strconv.FormatInt(start, 10)
}

// Allow counts one hit for subject
func (l *RedisWindowLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	key := l.key(subject)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("count %s: %w", key, err)
	}
	return incr.Val() <= int64(l.limit), nil
}

// InMemoryWindowLimiter is the single-process counterpart of
// RedisWindowLimiter. Subjects from past windows are dropped as new hits come in.
type InMemoryWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	hits    map[string]int
	current time.Time
	now     func() time.Time
}

func NewInMemoryWindowLimiter(limit int, window time.Duration) *InMemoryWindowLimiter {
	return &InMemoryWindowLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string]int),
		now:    time.Now,
	}
}

func (l *InMemoryWindowLimiter) Allow(_ context.Context, subject string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if start := l.now().Truncate(l.window); !start.Equal(l.current) {
		l.current = start
		clear(l.hits)
	}
	l.hits[subject]++
	return l.hits[subject] <= l.limit, nil
}

// EmailQuota is the hourly budget shared by every email the storefront sends
type EmailQuota struct {
	limiter *RedisWindowLimiter
}

func NewEmailQuota(client redis.Cmdable, maxPerHour int) *EmailQuota {
	return &EmailQuota{limiter: NewRedisWindowLimiter(client, KeyPrefix+"email:quota:", maxPerHour, time.Hour)}
}

// Allow implements the notification rate limiter
func (q *EmailQuota) Allow(ctx context.Context) (bool, error) {
	return q.limiter.Allow(ctx, "all")
}
