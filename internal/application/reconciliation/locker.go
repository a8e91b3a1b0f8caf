package reconciliation

import (
	"context"
	"time"
)

// RepairLockKey guards batch repairs so two operators cannot run them at once
const RepairLockKey = "storefront:reconciliation:repair"

// Lock is a held distributed lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains named locks. Implementations return shared.ErrLocked
// when the lock is held elsewhere.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
