package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/bodyplay/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	frames []pose.Frame
	next   int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrame sets the frame that will be returned by every Detect call.
func (m *MockDetector) SetFrame(f pose.Frame) {
	m.SetSequence(f)
}

// SetSequence sets frames returned by successive Detect calls. The last
// frame repeats once the sequence is exhausted.
func (m *MockDetector) SetSequence(frames ...pose.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured frame or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (pose.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return nil, nil
	}

	f := m.frames[m.next]
	if m.next < len(m.frames)-1 {
		m.next++
	}
	return f, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ReplayDetector plays back a recorded session in real time, ignoring the
// camera frame. It stands in for MediaPipe in demos and integration tests.
type ReplayDetector struct {
	mu     sync.Mutex
	player *pose.Player
	now    func() time.Time
}

// NewReplayDetector starts playback of rec from the current time.
func NewReplayDetector(rec *pose.Recording, loop bool) *ReplayDetector {
	return newReplayDetector(rec, loop, time.Now)
}

func newReplayDetector(rec *pose.Recording, loop bool, now func() time.Time) *ReplayDetector {
	return &ReplayDetector{
		player: pose.NewPlayer(rec, now(), loop),
		now:    now,
	}
}

// Detect returns the recorded frame for the current time.
func (r *ReplayDetector) Detect(frame *gocv.Mat) (pose.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player.FrameAt(r.now()), nil
}

// Close is a no-op for the replay detector.
func (r *ReplayDetector) Close() error {
	return nil
}
