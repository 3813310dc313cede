// Package lock provides a per-user mutual-exclusion lease around recurring
// expense processing. Nothing in the data model itself prevents two
// concurrent callers (two browser tabs, a retried job) from observing the
// same due template, so processing takes a short-lived lease per user first.
package lock

import (
	"context"
	"time"
)

// Locker grants short-lived exclusive leases identified by key.
type Locker interface {
	// Acquire attempts to take the lease for key, expiring after ttl.
	// It returns false when another holder currently owns the lease.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives the lease back. Releasing a lease this locker does not
	// hold is a no-op.
	Release(ctx context.Context, key string) error
}
