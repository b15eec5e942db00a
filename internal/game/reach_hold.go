package game

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Reach-and-hold tuning.
const (
	holdMinVisibility = 0.4
	holdRaiseMargin   = 0.1
	holdPointInterval = time.Second
	holdPointsPerTick = 5
	holdMinForBonus   = 3 * time.Second
	holdBonusPerSec   = 2
	holdBalanceLimit  = 0.05
)

var holdArmLandmarks = []int{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
}

// HoldState is the reach-and-hold game state.
type HoldState struct {
	Status
	Holding   bool          `json:"holding"`
	HoldStart time.Time     `json:"-"`
	LastScore time.Time     `json:"-"`
	LastTick  time.Time     `json:"-"`
	TotalHold time.Duration `json:"totalHold"`
	Longest   time.Duration `json:"longest"`
	Attempts  int           `json:"attempts"`
	// holdMsg is the duration message the balance suffix is appended to.
	holdMsg string
}

// Hold rewards keeping both arms raised above the shoulders.
type Hold struct{}

func (Hold) Info() Info {
	return Info{
		Kind:         ReachHold,
		Name:         "Reach & Hold",
		Instructions: "Raise your arms above your shoulders and hold steady. Great for balance and flexibility!",
		Duration:     60 * time.Second,
		Profile:      calibration.UpperBody,
		CountLabel:   "Holds",
	}
}

func (Hold) Initial() HoldState {
	return HoldState{Status: Status{Feedback: "Raise your arms!"}}
}

func (Hold) Update(t Tick, s HoldState) HoldState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Visible(holdMinVisibility, holdArmLandmarks...) {
		s.Feedback = "Make sure your arms are visible!"
		return s
	}

	ls, rs := lm[pose.LeftShoulder], lm[pose.RightShoulder]
	lw, rw := lm[pose.LeftWrist], lm[pose.RightWrist]
	leftUp := lw.Y < ls.Y-holdRaiseMargin
	rightUp := rw.Y < rs.Y-holdRaiseMargin

	now := t.Now
	if gap := t.Gap(s.LastTick); gap > 0 && s.Holding {
		// The hold pauses while the arms are out of view.
		s.HoldStart = s.HoldStart.Add(gap)
		s.LastScore = s.LastScore.Add(gap)
		s.LastTick = now
	}

	switch {
	case leftUp && rightUp && !s.Holding:
		s.Holding = true
		s.HoldStart, s.LastScore = now, now
		s.holdMsg = "Great! Hold steady..."
		s.Feedback = s.holdMsg

	case leftUp && rightUp:
		if !s.LastTick.IsZero() {
			s.TotalHold += now.Sub(s.LastTick)
		}
		held := now.Sub(s.HoldStart)
		if now.Sub(s.LastScore) >= holdPointInterval {
			s.ScoreDelta = holdPointsPerTick
			s.LastScore = now
			secs := int(held / time.Second)
			switch {
			case held >= 10*time.Second:
				s.holdMsg = fmt.Sprintf("Amazing! %ds hold!", secs)
			case held >= 5*time.Second:
				s.holdMsg = fmt.Sprintf("Excellent! %ds!", secs)
			default:
				s.holdMsg = "Good! Keep holding..."
			}
		}
		s.Feedback = s.holdMsg
		balance := math.Abs((ls.Y - lw.Y) - (rs.Y - rw.Y))
		if balance < holdBalanceLimit {
			s.Feedback += " Perfect balance!"
		}

	case s.Holding:
		held := now.Sub(s.HoldStart)
		s.Attempts++
		if held >= holdMinForBonus {
			s.Count++
			s.ScoreDelta = int(math.Floor(held.Seconds() * holdBonusPerSec))
			s.Feedback = fmt.Sprintf("Hold complete! +%d", s.ScoreDelta)
		} else {
			s.Feedback = "Hold longer for points!"
		}
		s.Longest = max(s.Longest, held)
		s.Holding = false
		s.HoldStart = time.Time{}

	case leftUp:
		s.Feedback = "Raise your right arm!"
	case rightUp:
		s.Feedback = "Raise your left arm!"
	default:
		s.Feedback = "Raise both arms!"
	}

	s.LastTick = now
	return s
}

// HoldRender is the renderer payload for the reach-and-hold game.
type HoldRender struct {
	Holds       int     `json:"holds"`
	Holding     bool    `json:"holding"`
	HoldSeconds float64 `json:"holdSeconds"`
	TotalHold   float64 `json:"totalHoldSeconds"`
}

func (Hold) Render(s HoldState) any {
	r := HoldRender{Holds: s.Count, Holding: s.Holding, TotalHold: s.TotalHold.Seconds()}
	if s.Holding {
		r.HoldSeconds = s.LastTick.Sub(s.HoldStart).Seconds()
	}
	return r
}

func (Hold) Summarize(s HoldState) Summary {
	return Summary{
		Accuracy: ratio(s.Count, s.Attempts),
		Metadata: map[string]any{
			"holds":            s.Count,
			"totalHoldSeconds": math.Round(s.TotalHold.Seconds()*10) / 10,
			"longestSeconds":   math.Round(s.Longest.Seconds()*10) / 10,
		},
	}
}
