package internal

import (
	"context"

	xsemaphore "golang.org/x/sync/semaphore"
)

// Semaphore is a counting semaphore used to bound concurrent connections
// per server/pool. It is a thin wrapper over x/sync/semaphore that adds
// the Wait/Release naming the pool and factory code already uses.
type Semaphore struct {
	sem *xsemaphore.Weighted
}

// NewSemaphore creates a Semaphore with max permits available.
func NewSemaphore(max uint64) *Semaphore {
	return &Semaphore{sem: xsemaphore.NewWeighted(int64(max))}
}

// Wait acquires one permit, blocking until one is available or ctx is
// done.
func (s *Semaphore) Wait(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return WrapErrorf(err, "timed out waiting for a connection permit")
	}
	return nil
}

// Release returns one permit to the pool.
func (s *Semaphore) Release() {
	s.sem.Release(1)
}
