package engine

import (
	"sync"
	"time"
)

// TickSource delivers tick times to Run.
type TickSource interface {
	C() <-chan time.Time
	Stop()
}

// FrameTicker ticks at a fixed frame rate on the wall clock.
type FrameTicker struct {
	t *time.Ticker
}

// NewFrameTicker returns a ticker firing fps times per second. Non-positive
// rates fall back to 30 fps.
func NewFrameTicker(fps int) *FrameTicker {
	if fps <= 0 {
		fps = 30
	}
	return &FrameTicker{t: time.NewTicker(time.Second / time.Duration(fps))}
}

// C returns the tick channel.
func (f *FrameTicker) C() <-chan time.Time {
	return f.t.C
}

// Stop stops the ticker.
func (f *FrameTicker) Stop() {
	f.t.Stop()
}

// ManualTicker delivers caller-supplied times. It is used to drive the engine
// deterministically.
type ManualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

// NewManualTicker returns an unbuffered manual ticker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time)}
}

// C returns the tick channel.
func (m *ManualTicker) C() <-chan time.Time {
	return m.ch
}

// Fire delivers now to the consumer. It returns false once the ticker is
// stopped or after the timeout passes without a receiver.
func (m *ManualTicker) Fire(now time.Time, timeout time.Duration) bool {
	if m.Stopped() {
		return false
	}
	select {
	case m.ch <- now:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Stop marks the ticker stopped. The channel is left open so a blocked Fire
// can time out.
func (m *ManualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// Stopped reports whether Stop has been called.
func (m *ManualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}
