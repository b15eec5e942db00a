package game

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/geometry"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Bubble tuning.
const (
	bubbleMinVisibility = 0.5
	bubbleMax           = 5
	bubbleLifetime      = 7 * time.Second
	bubbleExitY         = -0.1
	bubbleHandRadius    = 0.05
	bubbleComboWindow   = 2 * time.Second
	bubbleComboMax      = 20
	bubbleRaiseMargin   = 0.1
	bubbleColors        = 5
)

const msgArmsVisible = "Make sure your arms are visible!"

// Bubble is a floating target.
type Bubble struct {
	ID       int        `json:"id"`
	Position pose.Point `json:"position"`
	Radius   float64    `json:"radius"`
	Speed    float64    `json:"-"`
	Color    int        `json:"color"`
	Spawned  time.Time  `json:"-"`
}

// BubblesState is the overhead reach game state.
type BubblesState struct {
	Status
	Bubbles    []Bubble      `json:"bubbles"`
	Combo      int           `json:"combo"`
	BestCombo  int           `json:"bestCombo"`
	Started    time.Time     `json:"-"`
	NextSpawn  time.Duration `json:"-"`
	LastPop    time.Time     `json:"-"`
	NextID     int           `json:"-"`
	Spawned    int           `json:"-"`
	LeftWrist  pose.Point    `json:"leftWrist"`
	RightWrist pose.Point    `json:"rightWrist"`
	Reach      float64       `json:"reach"`
}

// Bubbles is the overhead reach game: pop bubbles floating up the frame.
type Bubbles struct{}

func (Bubbles) Info() Info {
	return Info{
		Kind:         OverheadReachBubbles,
		Name:         "Overhead Reach Bubbles",
		Instructions: "Reach up and pop the floating bubbles! Great for shoulder mobility.",
		Duration:     60 * time.Second,
		Profile:      calibration.HandsOnly,
		CountLabel:   "Bubbles",
	}
}

func (Bubbles) Initial() BubblesState {
	return BubblesState{
		Status:     Status{Feedback: "Reach for the bubbles!"},
		LeftWrist:  pose.Point{X: 0.3, Y: 0.5},
		RightWrist: pose.Point{X: 0.7, Y: 0.5},
	}
}

// bubbleSpawnInterval shrinks from 3s toward 1s as the game goes on.
func bubbleSpawnInterval(elapsed time.Duration) time.Duration {
	secs := math.Max(1, 3-elapsed.Seconds()/20)
	return time.Duration(secs * float64(time.Second))
}

func (Bubbles) Update(t Tick, s BubblesState) BubblesState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Visible(bubbleMinVisibility, pose.LeftShoulder, pose.RightShoulder, pose.LeftWrist, pose.RightWrist) {
		s.Feedback = msgArmsVisible
		return s
	}

	now := t.Now
	if s.Started.IsZero() {
		s.Started = now
	}
	elapsed := now.Sub(s.Started)

	bubbles := make([]Bubble, 0, len(s.Bubbles)+1)
	bubbles = append(bubbles, s.Bubbles...)
	if elapsed > s.NextSpawn && len(bubbles) < bubbleMax {
		s.NextID++
		s.Spawned++
		bubbles = append(bubbles, Bubble{
			ID:       s.NextID,
			Position: pose.Point{X: t.Between(0.2, 0.8), Y: t.Between(0.15, 0.5)},
			Radius:   t.Between(0.06, 0.08),
			Speed:    t.Between(0.0005, 0.001),
			Color:    t.IntN(bubbleColors),
			Spawned:  now,
		})
	}

	live := bubbles[:0]
	for _, b := range bubbles {
		b.Position.Y -= b.Speed
		if b.Position.Y > bubbleExitY && now.Sub(b.Spawned) < bubbleLifetime {
			live = append(live, b)
		}
	}
	bubbles = live

	if now.Sub(s.LastPop) > bubbleComboWindow {
		s.Combo = 0
	}

	lw, rw := lm[pose.LeftWrist].Point(), lm[pose.RightWrist].Point()
	popped := false
	kept := bubbles[:0]
	for _, b := range bubbles {
		dl := geometry.Distance(lw, b.Position)
		dr := geometry.Distance(rw, b.Position)
		if dl >= bubbleHandRadius+b.Radius && dr >= bubbleHandRadius+b.Radius {
			kept = append(kept, b)
			continue
		}

		popped = true
		s.Count++
		s.LastPop = now
		s.Combo++
		s.BestCombo = max(s.BestCombo, s.Combo)

		base := int(math.Floor(20 / b.Radius))
		bonus := min(s.Combo*2, bubbleComboMax)
		s.ScoreDelta += base + bonus

		hand := "Right"
		if dl < dr {
			hand = "Left"
		}
		if s.Combo > 1 {
			s.Feedback = fmt.Sprintf("%s hand! Combo x%d! +%d", hand, s.Combo, base+bonus)
		} else {
			s.Feedback = fmt.Sprintf("%s hand pop! +%d", hand, base)
		}
	}
	s.Bubbles = kept

	ls, rs := lm[pose.LeftShoulder], lm[pose.RightShoulder]
	if !popped {
		leftUp := lw.Y < ls.Y-bubbleRaiseMargin
		rightUp := rw.Y < rs.Y-bubbleRaiseMargin
		switch {
		case len(s.Bubbles) == 0:
			s.Feedback = "Get ready for more bubbles!"
		case !leftUp && !rightUp:
			s.Feedback = "Raise your hands to reach!"
		case leftUp && rightUp:
			s.Feedback = "Both hands up! Great reach!"
		default:
			s.Feedback = "Reach for the bubbles!"
		}
	}

	if len(s.Bubbles) < bubbleMax && elapsed > s.NextSpawn {
		s.NextSpawn = elapsed + bubbleSpawnInterval(elapsed)
	}

	s.LeftWrist, s.RightWrist = lw, rw
	s.Reach = math.Max(ls.Y-lw.Y, rs.Y-rw.Y)
	return s
}

// BubblesRender is the renderer payload for the overhead reach game.
type BubblesRender struct {
	Bubbles    []Bubble   `json:"bubbles"`
	Popped     int        `json:"bubblesPopped"`
	Combo      int        `json:"combo"`
	LeftWrist  pose.Point `json:"leftWrist"`
	RightWrist pose.Point `json:"rightWrist"`
	Reach      float64    `json:"maxReachHeight"`
}

func (Bubbles) Render(s BubblesState) any {
	return BubblesRender{
		Bubbles:    s.Bubbles,
		Popped:     s.Count,
		Combo:      s.Combo,
		LeftWrist:  s.LeftWrist,
		RightWrist: s.RightWrist,
		Reach:      s.Reach,
	}
}

func (Bubbles) Summarize(s BubblesState) Summary {
	return Summary{
		Accuracy: ratio(s.Count, s.Spawned),
		Metadata: map[string]any{"bubblesPopped": s.Count, "bestCombo": s.BestCombo},
	}
}
