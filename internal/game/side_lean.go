package game

import (
	"math"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/geometry"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Lean balance tuning. Distances are normalized frame units per tick.
const (
	leanMinVisibility = 0.5
	leanDeadZone      = 0.05
	leanMax           = 0.15
	ballAccel         = 0.002
	ballFriction      = 0.92
	ballMaxVelocity   = 0.015
	ballMinX          = 0.1
	ballMaxX          = 0.9
	ballBounce        = 0.5
	ballRadius        = 0.08

	leanPointInterval = 100 * time.Millisecond
	leanPoints        = 1

	coinMax      = 3
	coinRadius   = 0.05
	coinPoints   = 20
	coinLifetime = 15 * time.Second
)

// Coin is a collectible in the lean balance game.
type Coin struct {
	Position pose.Point `json:"position"`
	Radius   float64    `json:"radius"`
	Spawned  time.Time  `json:"-"`
}

// LeanState is the lean balance game state.
type LeanState struct {
	Status
	Ball      pose.Point    `json:"ball"`
	Velocity  float64       `json:"velocity"`
	Direction int           `json:"direction"`
	Strength  float64       `json:"strength"`
	Coins     []Coin        `json:"coins"`
	Started   time.Time     `json:"-"`
	NextCoin  time.Duration `json:"-"`
	LeanTime  time.Duration `json:"-"`
	LastSeen  time.Time     `json:"-"`

	// LeanSince is when the current uninterrupted lean began; LeanPaid is the
	// number of intervals of it already scored.
	LeanSince time.Time `json:"-"`
	LeanPaid  int       `json:"-"`
}

// Lean moves a ball by leaning the torso left or right.
type Lean struct{}

func (Lean) Info() Info {
	return Info{
		Kind:         SideLeanBalance,
		Name:         "Side Lean Balance",
		Instructions: "Lean left and right to move the ball and collect coins! Great for core balance.",
		Duration:     60 * time.Second,
		Profile:      calibration.FullBody,
		CountLabel:   "Coins",
	}
}

func (Lean) Initial() LeanState {
	return LeanState{
		Status: Status{Feedback: "Lean to move the ball!"},
		Ball:   pose.Point{X: 0.5, Y: 0.5},
	}
}

// LeanOf returns the signed lean direction and its strength in [0,1] for the
// horizontal offset of the shoulder midpoint from the hip midpoint.
func LeanOf(amount float64) (int, float64) {
	switch {
	case amount > leanDeadZone:
		return 1, math.Min((amount-leanDeadZone)/(leanMax-leanDeadZone), 1)
	case amount < -leanDeadZone:
		return -1, math.Min((-amount-leanDeadZone)/(leanMax-leanDeadZone), 1)
	default:
		return 0, 0
	}
}

func (Lean) Update(t Tick, s LeanState) LeanState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Visible(leanMinVisibility, pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip) {
		s.Feedback = "Stand where camera can see you!"
		return s
	}

	now := t.Now
	if s.Started.IsZero() {
		s.Started = now
	}
	if gap := t.Gap(s.LastSeen); gap > 0 {
		s.pause(gap)
	}
	s.LastSeen = now
	elapsed := now.Sub(s.Started)

	shoulders := (lm[pose.LeftShoulder].X + lm[pose.RightShoulder].X) / 2
	hips := (lm[pose.LeftHip].X + lm[pose.RightHip].X) / 2
	amount := shoulders - hips
	s.Direction, s.Strength = LeanOf(amount)

	v := s.Velocity*ballFriction + float64(s.Direction)*s.Strength*ballAccel
	v = geometry.Clamp(v, -ballMaxVelocity, ballMaxVelocity)
	x := s.Ball.X + v
	if x < ballMinX {
		x, v = ballMinX, math.Abs(v)*ballBounce
	} else if x > ballMaxX {
		x, v = ballMaxX, -math.Abs(v)*ballBounce
	}
	s.Ball.X, s.Velocity = x, v

	// Sustained lean.
	if s.Direction != 0 {
		if s.LeanSince.IsZero() {
			s.LeanSince, s.LeanPaid = now, 0
		}
		leaned := now.Sub(s.LeanSince)
		if due := int(leaned / leanPointInterval); due > s.LeanPaid {
			s.ScoreDelta += (due - s.LeanPaid) * leanPoints
			s.LeanTime += time.Duration(due-s.LeanPaid) * leanPointInterval
			s.LeanPaid = due
		}
	} else {
		s.LeanSince, s.LeanPaid = time.Time{}, 0
	}

	spawnDue := elapsed > s.NextCoin && len(s.Coins) < coinMax
	coins := make([]Coin, 0, len(s.Coins)+1)
	coins = append(coins, s.Coins...)
	if spawnDue {
		coins = append(coins, Coin{
			Position: pose.Point{X: t.Between(0.2, 0.8), Y: t.Between(0.3, 0.7)},
			Radius:   coinRadius,
			Spawned:  now,
		})
	}

	collected := false
	kept := coins[:0]
	for _, c := range coins {
		if geometry.Touches(s.Ball, ballRadius, c.Position, c.Radius) {
			s.ScoreDelta += coinPoints
			s.Count++
			s.Feedback = "Coin collected! +20"
			collected = true
			continue
		}
		if now.Sub(c.Spawned) < coinLifetime {
			kept = append(kept, c)
		}
	}
	s.Coins = kept

	if len(s.Coins) < coinMax && elapsed > s.NextCoin {
		s.NextCoin = elapsed + time.Duration(t.Between(2, 5)*float64(time.Second))
	}

	if !collected {
		switch s.Direction {
		case 0:
			s.Feedback = "Lean to move the ball!"
		case 1:
			s.Feedback = "Leaning right!"
		default:
			s.Feedback = "Leaning left!"
		}
	}
	return s
}

// pause closes the current lean run and moves the clocks past a stretch
// where the body was out of view.
func (s *LeanState) pause(gap time.Duration) {
	s.LeanSince, s.LeanPaid = time.Time{}, 0
	s.Started = s.Started.Add(gap)
	coins := make([]Coin, len(s.Coins))
	for i, c := range s.Coins {
		c.Spawned = c.Spawned.Add(gap)
		coins[i] = c
	}
	s.Coins = coins
}

// LeanRender is the renderer payload for the lean balance game.
type LeanRender struct {
	Ball      pose.Point `json:"ball"`
	Coins     []Coin     `json:"coins"`
	Collected int        `json:"coinsCollected"`
	Direction int        `json:"leanDirection"`
	Strength  float64    `json:"leanStrength"`
}

func (Lean) Render(s LeanState) any {
	return LeanRender{
		Ball:      s.Ball,
		Coins:     s.Coins,
		Collected: s.Count,
		Direction: s.Direction,
		Strength:  s.Strength,
	}
}

func (Lean) Summarize(s LeanState) Summary {
	return Summary{Metadata: map[string]any{
		"coinsCollected":  s.Count,
		"leanTimeSeconds": math.Round(s.LeanTime.Seconds()*10) / 10,
	}}
}
