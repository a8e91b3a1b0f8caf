package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/domain/shared"
)

type held struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker implements reconciliation.Locker inside one process.
// It is used when Redis is disabled.
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]held
	now   func() time.Time
}

// NewInMemoryLocker creates an empty in-process locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		locks: make(map[string]held),
		now:   time.Now,
	}
}

// Obtain takes the lock unless another holder's lease is still running
func (l *InMemoryLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (reconciliation.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, exists := l.locks[key]; exists && now.Before(h.expiresAt) {
		return nil, shared.ErrLocked
	}

	token := uuid.NewString()
	l.locks[key] = held{token: token, expiresAt: now.Add(ttl)}
	return &memoryLock{locker: l, key: key, token: token}, nil
}

// Held reports whether key is currently locked
func (l *InMemoryLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, exists := l.locks[key]
	return exists && l.now().Before(h.expiresAt)
}

func (l *InMemoryLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// a lease taken over after expiry belongs to its new holder
	if h, exists := l.locks[key]; exists && h.token == token {
		delete(l.locks, key)
	}
}

type memoryLock struct {
	locker *InMemoryLocker
	key    string
	token  string
}

func (m *memoryLock) Release(ctx context.Context) error {
	m.locker.release(m.key, m.token)
	return nil
}

var _ reconciliation.Locker = (*InMemoryLocker)(nil)
