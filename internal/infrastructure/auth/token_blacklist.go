package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before they expire. A single token is
// revoked on logout and refresh; a whole account on "log out everywhere".
type TokenBlacklist interface {
	// RevokeToken revokes one token; ttl is its remaining lifetime
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	// RevokeUser revokes every token issued to the user until now. ttl must
	// cover the longest lived token still in circulation.
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	// IsRevoked checks both the token and its owner in one call
	IsRevoked(ctx context.Context, jti, userID string, issuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist shares revocations between server instances
type RedisTokenBlacklist struct {
	client    redis.Cmdable
	keyPrefix string
}

func NewRedisTokenBlacklist(client redis.Cmdable, keyPrefix string) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, keyPrefix: keyPrefix}
}

func (b *RedisTokenBlacklist) tokenKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID string) string {
	return b.keyPrefix + "user:" + userID
}

func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeUser stores the revocation time in unix seconds
func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti, userID string, issuedAt time.Time) (bool, error) {
	values, err := b.client.MGet(ctx, b.tokenKey(jti), b.userKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return revokedFromValues(values, issuedAt)
}

// revokedFromValues interprets the MGET reply: [token marker, user revocation]
func revokedFromValues(values []any, issuedAt time.Time) (bool, error) {
	if len(values) != 2 {
		return false, fmt.Errorf("check token revocation: unexpected reply of %d values", len(values))
	}
	if values[0] != nil {
		return true, nil
	}
	raw, ok := values[1].(string)
	if !ok {
		return false, nil
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse user revocation time %q: %w", raw, err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

// InMemoryTokenBlacklist keeps revocations in process memory, so it only
// fits a single server instance.
type InMemoryTokenBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time // jti -> expiry
	users  map[string]time.Time // user id -> revocation time
	now    func() time.Time
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens: make(map[string]time.Time),
		users:  make(map[string]time.Time),
		now:    time.Now,
	}
}

func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = b.now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[userID] = b.now()
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if expiry, ok := b.tokens[jti]; ok {
		if b.now().Before(expiry) {
			return true, nil
		}
		delete(b.tokens, jti)
	}
	revokedAt, ok := b.users[userID]
	return ok && !issuedAt.After(revokedAt), nil
}

var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
)
