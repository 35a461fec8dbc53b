package httputil

import (
	"context"
	"sync/atomic"
)

// Semaphore bounds the total number of in-flight page fetches across all
// concurrent analysis requests. Each request already caps its own fan-out;
// this guards the process as a whole under many simultaneous requests.
type Semaphore struct {
	sem     chan struct{}
	dropped atomic.Int64
}

// NewSemaphore creates a semaphore with the given capacity.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 20
	}
	return &Semaphore{
		sem: make(chan struct{}, capacity),
	}
}

// TryAcquire attempts to acquire a slot without blocking.
// Returns true if acquired, false if at capacity.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Acquire blocks until a slot is available or the context is cancelled.
// A fetch whose context expires while waiting is scored as slow by its
// caller, never retried here.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the semaphore.
// Must be called after a successful TryAcquire() or Acquire().
func (s *Semaphore) Release() {
	select {
	case <-s.sem:
	default:
		// Shouldn't happen - releasing without acquiring
	}
}

// DroppedCount returns the number of acquisitions refused at capacity.
func (s *Semaphore) DroppedCount() int64 {
	return s.dropped.Load()
}

// InUse returns the number of slots currently held.
func (s *Semaphore) InUse() int {
	return len(s.sem)
}
