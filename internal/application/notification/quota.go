package notification

import (
	"context"
	"time"

	"github.com/maillots/storefront/internal/domain/notification"
)

// LogQuota allows an email while fewer than max were sent in the last hour.
// A max of zero or less means unlimited.
type LogQuota struct {
	logs notification.LogRepository
	max  int
	now  func() time.Time
}

// NewLogQuota creates a quota backed by the email log
func NewLogQuota(logs notification.LogRepository, max int, now func() time.Time) *LogQuota {
	if now == nil {
		now = time.Now
	}
	return &LogQuota{logs: logs, max: max, now: now}
}

// Allow implements RateLimiter
func (q *LogQuota) Allow(ctx context.Context) (bool, error) {
	if q.max <= 0 {
		return true, nil
	}
	count, err := q.logs.CountSentSince(ctx, q.now().Add(-time.Hour))
	if err != nil {
		return false, err
	}
	return count < int64(q.max), nil
}
