// Package game implements the motion-controlled mini-games. Each game is a
// pure state machine: given the latest smoothed landmarks and the previous
// state it returns the next state, a per-tick score delta and feedback text.
package game

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/pose"
)

// ErrUnknownKind is returned when a game id does not name a registered game.
var ErrUnknownKind = errors.New("unknown game kind")

// Info is the static description of a game.
type Info struct {
	Kind         Kind                `json:"id"`
	Name         string              `json:"name"`
	Instructions string              `json:"instructions"`
	Duration     time.Duration       `json:"-"`
	Profile      calibration.Profile `json:"calibrationProfile"`
	// CountLabel names what Status.Count counts, e.g. "Reps" or "Steps".
	CountLabel string `json:"countLabel"`
}

// DurationSeconds returns the configured duration in whole seconds.
func (i Info) DurationSeconds() int {
	return int(i.Duration / time.Second)
}

// Status holds the fields every game state carries. ScoreDelta is only
// meaningful for the tick that produced it.
type Status struct {
	ScoreDelta int    `json:"scoreDelta"`
	Feedback   string `json:"feedback"`
	Count      int    `json:"count"`
}

// Base returns the common status. Embedding Status gives every state this
// method.
func (s Status) Base() Status {
	return s
}

// State is an immutable per-tick game state value.
type State interface {
	Base() Status
}

// Tick is the input to one update.
type Tick struct {
	// Landmarks is the smoothed frame, or nil when no body is visible.
	Landmarks pose.Frame
	Now       time.Time
	// Rand is the random source for spawns and target selection. When nil
	// the global generator is used.
	Rand *rand.Rand
}

// Float64 returns a pseudo-random number in [0, 1).
func (t Tick) Float64() float64 {
	if t.Rand == nil {
		return rand.Float64()
	}
	return t.Rand.Float64()
}

// IntN returns a pseudo-random number in [0, n).
func (t Tick) IntN(n int) int {
	if t.Rand == nil {
		return rand.IntN(n)
	}
	return t.Rand.IntN(n)
}

// Between returns a pseudo-random number in [lo, hi).
func (t Tick) Between(lo, hi float64) float64 {
	return lo + t.Float64()*(hi-lo)
}

// MaxTickGap is the longest interval between two visible ticks that still
// counts as continuous play.
const MaxTickGap = time.Second

// Gap returns how long the body was out of view since the visible tick at
// last, or zero when play was continuous.
func (t Tick) Gap(last time.Time) time.Duration {
	if last.IsZero() {
		return 0
	}
	if d := t.Now.Sub(last); d > MaxTickGap {
		return d
	}
	return 0
}

// Summary is the optional per-game contribution to a session result.
type Summary struct {
	Accuracy *float64
	Metadata map[string]any
}

// Module is a concrete game over its own state type.
type Module[S State] interface {
	Info() Info
	Initial() S
	Update(t Tick, s S) S
	Render(s S) any
}

// Summarizer is implemented by modules that report accuracy or metadata.
type Summarizer[S State] interface {
	Summarize(s S) Summary
}

// Game is the type-erased form of a Module driven by the engine.
type Game interface {
	Info() Info
	InitialState() State
	Update(t Tick, s State) State
	RenderData(s State) any
	Summarize(s State) Summary
}

type erased[S State] struct {
	m Module[S]
}

// Erase wraps a typed module as a Game.
func Erase[S State](m Module[S]) Game {
	return erased[S]{m: m}
}

func (e erased[S]) Info() Info {
	return e.m.Info()
}

func (e erased[S]) InitialState() State {
	return e.m.Initial()
}

// Update runs the module. A state of another game's type is replaced by the
// initial state first.
func (e erased[S]) Update(t Tick, s State) State {
	typed, ok := s.(S)
	if !ok {
		typed = e.m.Initial()
	}
	return e.m.Update(t, typed)
}

func (e erased[S]) RenderData(s State) any {
	typed, ok := s.(S)
	if !ok {
		typed = e.m.Initial()
	}
	return e.m.Render(typed)
}

func (e erased[S]) Summarize(s State) Summary {
	sm, ok := e.m.(Summarizer[S])
	if !ok {
		return Summary{Metadata: map[string]any{}}
	}
	typed, ok := s.(S)
	if !ok {
		typed = e.m.Initial()
	}
	return sm.Summarize(typed)
}

// ratio returns part/total as a percentage, or nil when total is zero.
func ratio(part, total int) *float64 {
	if total <= 0 {
		return nil
	}
	v := float64(part) / float64(total) * 100
	return &v
}

// ms converts a duration to fractional milliseconds.
func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
