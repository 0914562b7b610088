package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tesserahq/chrona/backfill"
	"github.com/tesserahq/chrona/id"
)

// Ensure Locker satisfies backfill.Locker at compile time.
var _ backfill.Locker = (*Locker)(nil)

// Locker is an in-process implementation of backfill.Locker. It serializes
// backfills within a single process only; use store/redis for cross-process
// locking.
type Locker struct {
	mu    sync.Mutex
	locks map[string]time.Time // config ID -> expiry
}

// NewLocker returns a new empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]time.Time)}
}

// AcquireBackfillLock takes the per-config lock unless another holder's
// lock has not yet expired.
func (l *Locker) AcquireBackfillLock(_ context.Context, configID id.ConfigID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	if until, ok := l.locks[configID.String()]; ok && until.After(now) {
		return false, nil
	}
	l.locks[configID.String()] = now.Add(ttl)
	return true, nil
}

// ReleaseBackfillLock releases the per-config lock. Releasing a lock that
// is not held is a no-op.
func (l *Locker) ReleaseBackfillLock(_ context.Context, configID id.ConfigID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locks, configID.String())
	return nil
}
