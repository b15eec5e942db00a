package calibration

import (
	"fmt"

	"github.com/ayusman/bodyplay/internal/pose"
)

// Messages shown while calibrating.
const (
	MsgNoPose   = "No pose detected"
	MsgCenter   = "Please center yourself in the frame."
	MsgPassed   = "Calibration passed! Stay in position."
	msgHoldFmt  = "Hold still... %d/%d"
	defaultMinV = 0.4
)

// Config holds the gate settings.
type Config struct {
	// StableFrames is the number of consecutive good frames required to pass.
	StableFrames int

	// MinVisibility is the visibility each required landmark must reach.
	MinVisibility float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		StableFrames:  15,
		MinVisibility: defaultMinV,
	}
}

// Status is the result of evaluating one frame.
type Status struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Stable  int    `json:"stable"`
	Window  int    `json:"window"`
}

// Check evaluates a single frame against a requirement without any stability
// tracking. It returns whether the frame is good and the message to show.
func Check(f pose.Frame, req Requirement, minVisibility float64) (bool, string) {
	if f == nil {
		return false, MsgNoPose
	}
	if !f.Visible(minVisibility, req.Landmarks...) {
		return false, req.Instructions
	}
	if req.Centered != nil && !req.Centered(f) {
		return false, MsgCenter
	}
	return true, MsgPassed
}

// Gate is the calibrating -> passed state machine for one game attempt.
// It is not safe for concurrent use.
type Gate struct {
	config Config
	req    Requirement
	stable int
	passed bool
}

// NewGate creates a gate for the given profile.
func NewGate(profile Profile, config Config) *Gate {
	if config.StableFrames <= 0 {
		config.StableFrames = 1
	}
	req, _ := Lookup(profile)
	return &Gate{config: config, req: req}
}

// Requirement returns the profile requirement the gate checks.
func (g *Gate) Requirement() Requirement {
	return g.req
}

// Passed reports whether the gate has released.
func (g *Gate) Passed() bool {
	return g.passed
}

// Evaluate checks one frame and advances the stability counter. A bad frame
// resets the counter. Once passed, the gate stays passed until Reset.
func (g *Gate) Evaluate(f pose.Frame) Status {
	if g.passed {
		return g.status(MsgPassed)
	}

	ok, msg := Check(f, g.req, g.config.MinVisibility)
	if !ok {
		g.stable = 0
		return g.status(msg)
	}

	g.stable++
	if g.stable >= g.config.StableFrames {
		g.passed = true
		return g.status(MsgPassed)
	}
	return g.status(fmt.Sprintf(msgHoldFmt, g.stable, g.config.StableFrames))
}

// Reset returns the gate to calibrating for a new attempt.
func (g *Gate) Reset() {
	g.stable = 0
	g.passed = false
}

func (g *Gate) status(msg string) Status {
	return Status{
		Passed:  g.passed,
		Message: msg,
		Stable:  g.stable,
		Window:  g.config.StableFrames,
	}
}
