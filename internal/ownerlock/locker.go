// Package ownerlock serializes engine write phases per owner scope.
//
// The core invariant couples multiple documents within one owner's data, so
// at most one engine operation may execute its read-compute-write cycle for a
// given owner at any instant. Owner scopes are fully independent; locking at
// owner granularity avoids any contention between unrelated users.
package ownerlock

import (
	"context"
	"errors"
	"sync"
	"time"

	id "tagdex/pkg/domain"
)

// ErrNotAcquired signals that the owner lock could not be obtained within the
// bounded wait. The caller should surface a contention error; the whole
// operation is safe to retry.
var ErrNotAcquired = errors.New("owner lock not acquired")

// Locker grants exclusive access to an owner scope.
type Locker interface {
	// Acquire blocks until the owner lock is held, ctx is done, or the
	// locker's bounded wait elapses. On success the returned release
	// function must be called exactly once.
	Acquire(ctx context.Context, owner id.OwnerID) (release func(), err error)
}

// Table is the in-process locker: one semaphore per owner, created lazily and
// never evicted (one owner's entry is a single channel; the table stays small
// relative to the data it guards).
type Table struct {
	mu      sync.Mutex
	locks   map[id.OwnerID]chan struct{}
	maxWait time.Duration
}

// NewTable constructs an in-process locker with the given bounded wait.
func NewTable(maxWait time.Duration) *Table {
	return &Table{
		locks:   make(map[id.OwnerID]chan struct{}),
		maxWait: maxWait,
	}
}

func (t *Table) semaphore(owner id.OwnerID) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	sem, ok := t.locks[owner]
	if !ok {
		sem = make(chan struct{}, 1)
		t.locks[owner] = sem
	}
	return sem
}

func (t *Table) Acquire(ctx context.Context, owner id.OwnerID) (func(), error) {
	sem := t.semaphore(owner)

	timer := time.NewTimer(t.maxWait)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrNotAcquired
	}
}
