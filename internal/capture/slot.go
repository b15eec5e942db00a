package capture

import (
	"context"
	"sync"
)

// Slot is a single-value mailbox holding the most recent item published by a
// producer. A publish overwrites an unread value; readers never block the
// producer. Slot[pose.Frame] serves as the engine's landmark source.
type Slot[T any] struct {
	mu      sync.Mutex
	value   T
	seq     uint64
	read    uint64
	drops   uint64
	changed chan struct{}
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{changed: make(chan struct{})}
}

// Publish stores v and wakes every waiter.
func (s *Slot[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq > s.read {
		s.drops++
	}
	s.value = v
	s.seq++
	close(s.changed)
	s.changed = make(chan struct{})
}

// Latest returns the current value without blocking. The zero value is
// returned before the first publish.
func (s *Slot[T]) Latest() T {
	v, _ := s.Load()
	return v
}

// Load returns the current value and its sequence number (0 before the first
// publish).
func (s *Slot[T]) Load() (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.read = s.seq
	return s.value, s.seq
}

// Wait blocks until a value newer than after is available or ctx is done.
func (s *Slot[T]) Wait(ctx context.Context, after uint64) (T, uint64, error) {
	for {
		s.mu.Lock()
		if s.seq > after {
			v, seq := s.value, s.seq
			s.read = seq
			s.mu.Unlock()
			return v, seq, nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, after, ctx.Err()
		case <-ch:
		}
	}
}

// Reset clears the value. Waiters keep waiting for the next publish.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.read = s.seq
}

// SlotStats counts slot traffic.
type SlotStats struct {
	Published uint64
	// Dropped counts values overwritten before anyone read them.
	Dropped uint64
}

// Stats returns the slot counters.
func (s *Slot[T]) Stats() SlotStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SlotStats{Published: s.seq, Dropped: s.drops}
}
