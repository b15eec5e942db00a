package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/geometry"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Reaction challenge tuning.
const (
	reactionMinVisibility  = 0.4
	reactionInitialDelay   = 2000 * time.Millisecond
	reactionMinDelay       = 800 * time.Millisecond
	reactionMaxDelay       = 2500 * time.Millisecond
	reactionHitSpeedup     = 50 * time.Millisecond
	reactionTimeoutSlowdn  = 100 * time.Millisecond
	reactionDistractorSlow = 500 * time.Millisecond
	reactionTimeout        = 3 * time.Second
	reactionTargetRadius   = 0.08
	reactionHandRadius     = 0.06
	reactionDistractorOdds = 0.2
	reactionPenalty        = -30
	reactionShapes         = 3
)

// Zone is a fixed place a reaction target can appear.
type Zone struct {
	Label    string
	Position pose.Point
}

var reactionZones = []Zone{
	{"Top Left", pose.Point{X: 0.2, Y: 0.2}},
	{"Top Right", pose.Point{X: 0.8, Y: 0.2}},
	{"Bottom Left", pose.Point{X: 0.2, Y: 0.7}},
	{"Bottom Right", pose.Point{X: 0.8, Y: 0.7}},
	{"Top Center", pose.Point{X: 0.5, Y: 0.35}},
	{"Bottom Center", pose.Point{X: 0.5, Y: 0.65}},
	{"Left Center", pose.Point{X: 0.35, Y: 0.45}},
	{"Right Center", pose.Point{X: 0.65, Y: 0.45}},
}

// Target is a reaction challenge target. Distractors must not be touched.
type Target struct {
	ID         int        `json:"id"`
	Position   pose.Point `json:"position"`
	Radius     float64    `json:"radius"`
	Label      string     `json:"label"`
	Shape      int        `json:"shape"`
	Distractor bool       `json:"distractor"`
	Spawned    time.Time  `json:"-"`
}

// ReactionState is the reaction challenge state. Count is the number of
// normal targets hit.
type ReactionState struct {
	Status
	Target      *Target         `json:"target"`
	Reactions   []time.Duration `json:"-"`
	Best        time.Duration   `json:"-"`
	Delay       time.Duration   `json:"-"`
	Started     time.Time       `json:"-"`
	LastEnd     time.Time       `json:"-"`
	NextID      int             `json:"-"`
	Spawned     int             `json:"-"`
	Distractors int             `json:"-"`
	Touched     int             `json:"-"`
	LeftWrist   pose.Point      `json:"leftWrist"`
	RightWrist  pose.Point      `json:"rightWrist"`
}

// Average returns the mean reaction time of normal hits.
func (s ReactionState) Average() time.Duration {
	if len(s.Reactions) == 0 {
		return 0
	}
	var sum time.Duration
	for _, r := range s.Reactions {
		sum += r
	}
	return sum / time.Duration(len(s.Reactions))
}

// Reaction is the reaction time challenge.
type Reaction struct{}

func (Reaction) Info() Info {
	return Info{
		Kind:         ReactionTime,
		Name:         "Reaction Time Challenge",
		Instructions: "Touch the targets as fast as you can! Improves hand-eye coordination.",
		Duration:     60 * time.Second,
		Profile:      calibration.HandsOnly,
		CountLabel:   "Targets",
	}
}

func (Reaction) Initial() ReactionState {
	return ReactionState{
		Status:     Status{Feedback: "Get ready!"},
		Delay:      reactionInitialDelay,
		LeftWrist:  pose.Point{X: 0.3, Y: 0.5},
		RightWrist: pose.Point{X: 0.7, Y: 0.5},
	}
}

func reactionPoints(rt time.Duration) (int, string) {
	switch {
	case rt < 500*time.Millisecond:
		return 50, "Lightning Fast! +50"
	case rt < 1000*time.Millisecond:
		return 30, "Very Fast! +30"
	case rt < 1500*time.Millisecond:
		return 20, "Fast! +20"
	default:
		return 10, "Good! +10"
	}
}

func (Reaction) Update(t Tick, s ReactionState) ReactionState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Complete() || !lm.Visible(reactionMinVisibility, pose.LeftWrist, pose.RightWrist) {
		s.Feedback = "Make sure your hands are visible!"
		return s
	}

	now := t.Now
	if s.Started.IsZero() {
		s.Started = now
	}
	if s.LastEnd.IsZero() {
		s.LastEnd = s.Started
	}
	if s.Delay == 0 {
		s.Delay = reactionInitialDelay
	}

	if s.Target == nil && now.Sub(s.LastEnd) > s.Delay {
		zone := reactionZones[t.IntN(len(reactionZones))]
		s.NextID++
		s.Spawned++
		target := &Target{
			ID:         s.NextID,
			Position:   zone.Position,
			Radius:     reactionTargetRadius,
			Label:      zone.Label,
			Shape:      t.IntN(reactionShapes),
			Distractor: t.Float64() < reactionDistractorOdds,
			Spawned:    now,
		}
		s.Target = target
		if target.Distractor {
			s.Distractors++
			s.Feedback = "RED TARGET! DO NOT TOUCH!"
		} else {
			s.Feedback = fmt.Sprintf("Touch the %s target!", zone.Label)
		}
	}

	lw, rw := lm[pose.LeftWrist].Point(), lm[pose.RightWrist].Point()
	ended := false
	if tg := s.Target; tg != nil {
		touched := geometry.Touches(lw, reactionHandRadius, tg.Position, tg.Radius) ||
			geometry.Touches(rw, reactionHandRadius, tg.Position, tg.Radius)

		switch {
		case touched && tg.Distractor:
			s.ScoreDelta = reactionPenalty
			s.Count = max(0, s.Count-1)
			s.Touched++
			s.Feedback = "OUCH! DO NOT TOUCH RED!"
			s.Delay += reactionDistractorSlow
			ended = true

		case touched:
			rt := now.Sub(tg.Spawned)
			s.Reactions = append(slices.Clip(s.Reactions), rt)
			s.Count++
			s.ScoreDelta, s.Feedback = reactionPoints(rt)
			if s.Best == 0 || rt < s.Best {
				s.Best = rt
			}
			s.Delay = max(reactionMinDelay, s.Delay-reactionHitSpeedup)
			ended = true

		case now.Sub(tg.Spawned) > reactionTimeout:
			if tg.Distractor {
				s.Feedback = "Good avoid!"
			} else {
				s.Feedback = "Too slow! Try again!"
			}
			s.Delay = min(reactionMaxDelay, s.Delay+reactionTimeoutSlowdn)
			ended = true
		}

		if ended {
			s.Target = nil
			s.LastEnd = now
		}
	}

	if s.Target == nil && !ended {
		ls, rs := lm[pose.LeftShoulder], lm[pose.RightShoulder]
		if lw.Y < ls.Y || rw.Y < rs.Y {
			s.Feedback = "Ready! Target incoming..."
		} else {
			s.Feedback = "Raise your hands to get ready!"
		}
	}

	s.LeftWrist, s.RightWrist = lw, rw
	return s
}

// ReactionRender is the renderer payload for the reaction challenge.
type ReactionRender struct {
	Target     *Target    `json:"currentTarget"`
	Hits       int        `json:"targetsHit"`
	AverageMs  float64    `json:"averageReactionTime"`
	BestMs     *float64   `json:"bestReactionTime"`
	LeftWrist  pose.Point `json:"leftWrist"`
	RightWrist pose.Point `json:"rightWrist"`
}

func (Reaction) Render(s ReactionState) any {
	r := ReactionRender{
		Hits:       s.Count,
		AverageMs:  ms(s.Average()),
		LeftWrist:  s.LeftWrist,
		RightWrist: s.RightWrist,
	}
	if s.Target != nil {
		tg := *s.Target
		r.Target = &tg
	}
	if s.Best > 0 {
		best := ms(s.Best)
		r.BestMs = &best
	}
	return r
}

func (Reaction) Summarize(s ReactionState) Summary {
	meta := map[string]any{
		"targetsHit":          s.Count,
		"averageReactionTime": ms(s.Average()),
		"distractorsTouched":  s.Touched,
	}
	if s.Best > 0 {
		meta["bestReactionTime"] = ms(s.Best)
	}
	return Summary{
		Accuracy: ratio(len(s.Reactions), s.Spawned-s.Distractors),
		Metadata: meta,
	}
}
