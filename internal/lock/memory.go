package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker for single-node deployments and tests.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]time.Time)}
}

// Acquire takes the lease unless an unexpired one is already held.
func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expiry, held := l.leases[key]; held && expiry.After(now) {
		return false, nil
	}
	l.leases[key] = now.Add(ttl)
	return true, nil
}

// Release drops the lease for key.
func (l *MemoryLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, key)
	return nil
}
