package cache

import (
	"context"

	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every Redis key the storefront writes
const KeyPrefix = "storefront:"

// SubjectLimiter counts hits per subject, such as a client IP
type SubjectLimiter interface {
	Allow(ctx context.Context, subject string) (bool, error)
}

// Backends groups the Redis-backed components, or their in-process fallbacks
type Backends struct {
	Client *redis.Client
	Locker reconciliation.Locker
	// Quota is nil without Redis; the email service then counts its own log.
	Quota *EmailQuota
	// Logins throttles sign-in attempts per client IP
	Logins SubjectLimiter
}

// Close closes the Redis client if one was opened
func (b *Backends) Close() error {
	if b.Client == nil {
		return nil
	}
	return b.Client.Close()
}

// NewBackends connects to Redis when enabled. An unreachable Redis falls
// back to the in-process components with a warning.
func NewBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Backends {
	if logger == nil {
		logger = zap.NewNop()
	}
	local := &Backends{
		Locker: NewInMemoryLocker(),
		Logins: NewInMemoryWindowLimiter(cfg.HTTP.LoginAttempts, cfg.HTTP.LoginWindow),
	}
	if !cfg.Redis.Enabled {
		return local
	}

	client, err := NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-process lock and counters. "+
			"Concurrent repairs from other processes are not excluded.",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err))
		return local
	}

	logger.Info("Using Redis lock and counters", zap.String("addr", cfg.Redis.Addr()))
	return &Backends{
		Client: client,
		Locker: NewRedisLocker(client, KeyPrefix+"lock:"),
		Quota:  NewEmailQuota(client, cfg.Email.MaxEmailsPerHour),
		Logins: NewRedisWindowLimiter(client, KeyPrefix+"login:", cfg.HTTP.LoginAttempts, cfg.HTTP.LoginWindow),
	}
}
