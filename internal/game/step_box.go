package game

import (
	"fmt"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Step-in-box tuning.
const (
	boxMinVisibility = 0.4
	boxCalibration   = 2 * time.Second
	boxMoveThreshold = 0.08
	boxKneeBend      = 0.05
	boxTargetWindow  = 4 * time.Second
	boxConfirm       = 500 * time.Millisecond
	boxHurryAfter    = 3500 * time.Millisecond
	boxStreakMax     = 20
)

// Direction is a step direction relative to the calibrated center.
type Direction string

const (
	DirCenter Direction = "CENTER"
	DirLeft   Direction = "LEFT"
	DirRight  Direction = "RIGHT"
	DirUp     Direction = "UP"
	DirDown   Direction = "DOWN"
)

var boxTargets = []Direction{DirLeft, DirRight, DirUp, DirDown}

// ClassifyStep maps a hip displacement from center and the knee bend (average
// knee y minus average hip y) to a direction. Sideways movement wins over
// vertical.
func ClassifyStep(dx, dy, kneeBend float64) Direction {
	switch {
	case dx < -boxMoveThreshold:
		return DirLeft
	case dx > boxMoveThreshold:
		return DirRight
	case dy < -boxMoveThreshold || kneeBend > boxKneeBend:
		return DirUp
	case dy > boxMoveThreshold:
		return DirDown
	default:
		return DirCenter
	}
}

// BoxState is the step-in-box state. Count is the number of correct steps.
type BoxState struct {
	Status
	Target      Direction  `json:"target"`
	TargetSince time.Time  `json:"-"`
	Current     Direction  `json:"current"`
	MatchSince  time.Time  `json:"-"`
	Streak      int        `json:"streak"`
	BestStreak  int        `json:"-"`
	Center      pose.Point `json:"-"`
	Calibrated  bool       `json:"calibrated"`
	Started     time.Time  `json:"-"`
	Missed      int        `json:"-"`
	Move        pose.Point `json:"move"`
}

// Box is the directional stepping game.
type Box struct{}

func (Box) Info() Info {
	return Info{
		Kind:         StepInBox,
		Name:         "Step-In-Box",
		Instructions: "Step or lean in the direction shown! Great for coordination and leg strength.",
		Duration:     60 * time.Second,
		Profile:      calibration.FullBody,
		CountLabel:   "Steps",
	}
}

func (Box) Initial() BoxState {
	return BoxState{Status: Status{Feedback: "Get ready!"}, Current: DirCenter}
}

func (Box) Update(t Tick, s BoxState) BoxState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Visible(boxMinVisibility, pose.LeftHip, pose.RightHip, pose.LeftKnee, pose.RightKnee) {
		s.Feedback = "Make sure your body is visible!"
		return s
	}

	now := t.Now
	if s.Started.IsZero() {
		s.Started = now
	}

	lh, rh := lm[pose.LeftHip], lm[pose.RightHip]
	hips := pose.Point{X: (lh.X + rh.X) / 2, Y: (lh.Y + rh.Y) / 2}

	if !s.Calibrated {
		if now.Sub(s.Started) < boxCalibration {
			s.Center = hips
			s.Feedback = "Stand in center... Calibrating..."
			return s
		}
		s.Calibrated = true
	}

	s.Move = pose.Point{X: hips.X - s.Center.X, Y: hips.Y - s.Center.Y}
	kneeY := (lm[pose.LeftKnee].Y + lm[pose.RightKnee].Y) / 2
	current := ClassifyStep(s.Move.X, s.Move.Y, kneeY-hips.Y)
	if current != s.Current {
		s.MatchSince = now
	}
	s.Current = current

	if s.Target == "" {
		s.newTarget(t)
	} else if now.Sub(s.TargetSince) > boxTargetWindow {
		s.Missed++
		s.Streak = 0
		s.newTarget(t)
	}

	waited := now.Sub(s.TargetSince)
	matched := s.TargetSince
	if s.MatchSince.After(matched) {
		matched = s.MatchSince
	}
	held := now.Sub(matched)
	if s.Current == s.Target && held >= boxConfirm {
		s.Count++
		s.Streak++
		s.BestStreak = max(s.BestStreak, s.Streak)

		points := 10
		switch {
		case waited < time.Second:
			points = 25
			s.Feedback = fmt.Sprintf("Lightning %s! +25", s.Target)
		case waited < 2*time.Second:
			points = 15
			s.Feedback = fmt.Sprintf("Quick %s! +15", s.Target)
		default:
			s.Feedback = fmt.Sprintf("Good %s! +10", s.Target)
		}
		if s.Streak > 1 {
			points += min(s.Streak*2, boxStreakMax)
			s.Feedback += fmt.Sprintf(" Streak x%d!", s.Streak)
		}
		s.ScoreDelta = points
		s.newTarget(t)
		return s
	}

	switch {
	case waited < boxConfirm:
		s.Feedback = "Get ready..."
	case waited > boxHurryAfter:
		s.Feedback = fmt.Sprintf("Hurry! Step %s!", s.Target)
	default:
		s.Feedback = fmt.Sprintf("Step %s!", s.Target)
	}
	return s
}

func (s *BoxState) newTarget(t Tick) {
	s.Target = boxTargets[t.IntN(len(boxTargets))]
	s.TargetSince = t.Now
}

// BoxRender is the renderer payload for the step-in-box game.
type BoxRender struct {
	Target     Direction `json:"currentDirection"`
	Current    Direction `json:"userDirection"`
	Correct    int       `json:"correctSteps"`
	Streak     int       `json:"streak"`
	Calibrated bool      `json:"calibrated"`
}

func (Box) Render(s BoxState) any {
	current := s.Current
	if current == "" {
		current = DirCenter
	}
	return BoxRender{
		Target:     s.Target,
		Current:    current,
		Correct:    s.Count,
		Streak:     s.Streak,
		Calibrated: s.Calibrated,
	}
}

func (Box) Summarize(s BoxState) Summary {
	return Summary{
		Accuracy: ratio(s.Count, s.Count+s.Missed),
		Metadata: map[string]any{"correctSteps": s.Count, "bestStreak": s.BestStreak},
	}
}
