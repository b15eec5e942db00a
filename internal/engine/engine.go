// Package engine drives a single game attempt: it smooths incoming landmark
// frames, gates play behind calibration, feeds frames to the active game,
// keeps the countdown and score, and publishes throttled snapshots.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/game"
	"github.com/ayusman/bodyplay/internal/pose"
)

var (
	// ErrStopped is returned by Start once the engine has been torn down.
	ErrStopped = errors.New("engine stopped")
	// ErrNotRunning is returned by callers that need an active attempt when
	// there is none.
	ErrNotRunning = errors.New("no game running")
)

// Phase is the lifecycle state of an attempt.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseCalibrating Phase = "calibrating"
	PhaseRunning     Phase = "running"
	PhaseEnded       Phase = "ended"
)

// LandmarkSource hands out the most recent landmark frame without blocking.
// The same frame may be returned to several ticks; nil means no body.
type LandmarkSource interface {
	Latest() pose.Frame
}

// Opener is implemented by sources that need to be started before use.
type Opener interface {
	Open() error
}

// Reporter receives the result of a finished attempt.
type Reporter interface {
	Report(ctx context.Context, r Result) error
}

// Publisher receives throttled snapshots for display.
type Publisher interface {
	Publish(s Snapshot)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, r Result) error

// Report calls f(ctx, r).
func (f ReporterFunc) Report(ctx context.Context, r Result) error {
	return f(ctx, r)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(s Snapshot)

// Publish calls f(s).
func (f PublisherFunc) Publish(s Snapshot) {
	f(s)
}

// Config holds engine settings.
type Config struct {
	// Blend is the weight of the previous smoothed frame.
	Blend float64
	// PublishInterval is the minimum wall-clock time between snapshots. The
	// countdown advances at the same cadence.
	PublishInterval time.Duration
	// SkipCalibration starts attempts directly in the running phase.
	SkipCalibration bool
	// Calibration configures the calibration gate.
	Calibration calibration.Config
	// Duration overrides the game's own duration when positive.
	Duration time.Duration
	// ReportTimeout bounds the call to the Reporter.
	ReportTimeout time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Blend:           pose.DefaultBlend,
		PublishInterval: 33 * time.Millisecond,
		Calibration:     calibration.DefaultConfig(),
		ReportTimeout:   10 * time.Second,
	}
}

// Snapshot is the engine state exposed to renderers.
type Snapshot struct {
	Game        game.Kind           `json:"game"`
	Phase       Phase               `json:"phase"`
	Score       int                 `json:"score"`
	TimeLeft    float64             `json:"timeLeft"`
	Feedback    string              `json:"feedback"`
	Calibration *calibration.Status `json:"calibration,omitempty"`
	Render      any                 `json:"render,omitempty"`
}

// Result is reported once when an attempt ends.
type Result struct {
	GameType        game.Kind      `json:"gameType"`
	Score           int            `json:"score"`
	DurationSeconds int            `json:"durationSeconds"`
	Accuracy        *float64       `json:"accuracy,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Engine runs one game. All state changes happen inside Tick, one tick at a
// time; the mutex only guards against concurrent readers of Snapshot.
type Engine struct {
	config   Config
	game     game.Game
	source   LandmarkSource
	duration time.Duration

	mu          sync.Mutex
	reporter    Reporter
	publisher   Publisher
	rng         *rand.Rand
	phase       Phase
	state       game.State
	score       int
	timeLeft    time.Duration
	feedback    string
	calib       calibration.Status
	lastPublish time.Time
	smoother    *pose.Smoother
	gate        *calibration.Gate
	stopped     bool
	stopCh      chan struct{}
}

// New creates an idle engine for g reading frames from src.
func New(g game.Game, src LandmarkSource, config Config) *Engine {
	if config.PublishInterval < 0 {
		config.PublishInterval = 0
	}
	if config.ReportTimeout <= 0 {
		config.ReportTimeout = DefaultConfig().ReportTimeout
	}

	duration := g.Info().Duration
	if config.Duration > 0 {
		duration = config.Duration
	}

	return &Engine{
		config:   config,
		game:     g,
		source:   src,
		duration: duration,
		phase:    PhaseIdle,
		state:    g.InitialState(),
		timeLeft: duration,
		feedback: g.InitialState().Base().Feedback,
		smoother: pose.NewSmoother(config.Blend),
		gate:     calibration.NewGate(g.Info().Profile, config.Calibration),
		stopCh:   make(chan struct{}),
	}
}

// SetReporter sets the receiver of the final result.
func (e *Engine) SetReporter(r Reporter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reporter = r
}

// SetPublisher sets the receiver of snapshots.
func (e *Engine) SetPublisher(p Publisher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publisher = p
}

// SetRand sets the random source handed to the game. A nil source uses the
// global generator.
func (e *Engine) SetRand(r *rand.Rand) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = r
}

// Game returns the game being played.
func (e *Engine) Game() game.Game {
	return e.game
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Start begins a new attempt, discarding any previous one. If the landmark
// source fails to open the engine stays idle.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return ErrStopped
	}

	if o, ok := e.source.(Opener); ok {
		if err := o.Open(); err != nil {
			e.phase = PhaseIdle
			e.mu.Unlock()
			return fmt.Errorf("open landmark source: %w", err)
		}
	}

	initial := e.game.InitialState()
	e.state = initial
	e.score = 0
	e.timeLeft = e.duration
	e.feedback = initial.Base().Feedback
	e.lastPublish = time.Time{}
	e.smoother.Reset()
	e.gate.Reset()
	e.calib = calibration.Status{Window: e.config.Calibration.StableFrames}

	if e.config.SkipCalibration {
		e.phase = PhaseRunning
	} else {
		e.phase = PhaseCalibrating
		e.feedback = e.gate.Requirement().Instructions
	}

	snap := e.snapshotLocked()
	pub := e.publisher
	e.mu.Unlock()

	log.Printf("Started %s (%s)", e.game.Info().Name, snap.Phase)
	if pub != nil {
		pub.Publish(snap)
	}
	return nil
}

// Stop tears the engine down. No tick has any effect afterwards and no
// result is reported for an unfinished attempt, which goes back to idle.
// Stop is idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	if e.phase != PhaseEnded {
		e.phase = PhaseIdle
	}
	close(e.stopCh)
}

// Done is closed when the engine is stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.stopCh
}

// Tick advances the engine to now.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	if e.stopped || (e.phase != PhaseCalibrating && e.phase != PhaseRunning) {
		e.mu.Unlock()
		return
	}

	frame := e.smoother.Next(e.source.Latest())
	if e.lastPublish.IsZero() {
		e.lastPublish = now
	}

	passed := false
	switch e.phase {
	case PhaseCalibrating:
		e.calib = e.gate.Evaluate(frame)
		e.feedback = e.calib.Message
		if e.calib.Passed {
			// The countdown starts from the tick that passed calibration.
			e.phase = PhaseRunning
			e.lastPublish = now
			passed = true
		}

	case PhaseRunning:
		e.state = e.game.Update(game.Tick{Landmarks: frame, Now: now, Rand: e.rng}, e.state)
		status := e.state.Base()
		e.score += status.ScoreDelta
		e.feedback = status.Feedback
	}

	publish := passed
	var result *Result
	if elapsed := now.Sub(e.lastPublish); !passed && elapsed >= e.config.PublishInterval {
		e.lastPublish = now
		publish = true
		if e.phase == PhaseRunning {
			e.timeLeft -= elapsed
			if e.timeLeft <= 0 {
				e.timeLeft = 0
				e.phase = PhaseEnded
				r := e.resultLocked()
				result = &r
			}
		}
	}

	var snap Snapshot
	if publish {
		snap = e.snapshotLocked()
	}
	pub, rep := e.publisher, e.reporter
	e.mu.Unlock()

	if publish && pub != nil {
		pub.Publish(snap)
	}
	if result != nil {
		log.Printf("Finished %s with score %d", result.GameType, result.Score)
		e.report(rep, *result)
	}
}

func (e *Engine) report(rep Reporter, r Result) {
	if rep == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.config.ReportTimeout)
	defer cancel()
	if err := rep.Report(ctx, r); err != nil {
		log.Printf("Failed to report %s session: %v", r.GameType, err)
	}
}

// Run consumes ticks from ts until the attempt ends, the engine is stopped or
// ctx is done. The tick source is stopped on return.
func (e *Engine) Run(ctx context.Context, ts TickSource) error {
	defer ts.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stopCh:
			return nil
		case now, ok := <-ts.C():
			if !ok {
				return nil
			}
			e.Tick(now)
			if e.Phase() == PhaseEnded {
				return nil
			}
		}
	}
}

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Game:     e.game.Info().Kind,
		Phase:    e.phase,
		Score:    e.score,
		TimeLeft: e.timeLeft.Seconds(),
		Feedback: e.feedback,
	}
	switch e.phase {
	case PhaseCalibrating:
		calib := e.calib
		s.Calibration = &calib
	case PhaseRunning, PhaseEnded:
		s.Render = e.game.RenderData(e.state)
	}
	return s
}

func (e *Engine) resultLocked() Result {
	summary := e.game.Summarize(e.state)
	return Result{
		GameType:        e.game.Info().Kind,
		Score:           e.score,
		DurationSeconds: wholeSeconds(e.duration),
		Accuracy:        summary.Accuracy,
		Metadata:        summary.Metadata,
	}
}

// wholeSeconds rounds d up to whole seconds, so a short attempt is never
// stored as zero length.
func wholeSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
