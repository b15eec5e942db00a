package game

import (
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Step counter tuning.
const (
	stepsMinVisibility = 0.5
	// stepLiftMargin is how far below the hip a knee may sit and still count
	// as raised.
	stepLiftMargin   = 0.1
	stepMinUpFrames  = 2
	stepCooldownTick = 5
	stepPoints       = 10
)

const msgFullBodyVisible = "Make sure your full body is visible!"

// Side identifies the left or right half of the body.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// StepsState is the marching game state.
type StepsState struct {
	Status
	LastLeg       Side `json:"lastLeg"`
	UpFramesLeft  int  `json:"upFramesLeft"`
	UpFramesRight int  `json:"upFramesRight"`
	Cooldown      int  `json:"cooldown"`
}

// Steps counts alternating knee raises while marching in place.
type Steps struct{}

func (Steps) Info() Info {
	return Info{
		Kind:         HappySteps,
		Name:         "Happy Steps",
		Instructions: "March in place! Lift your knees high.",
		Duration:     60 * time.Second,
		Profile:      calibration.FullBody,
		CountLabel:   "Steps",
	}
}

func (Steps) Initial() StepsState {
	return StepsState{Status: Status{Feedback: "Get Ready!"}}
}

func (Steps) Update(t Tick, s StepsState) StepsState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Visible(stepsMinVisibility, pose.LeftHip, pose.RightHip, pose.LeftKnee, pose.RightKnee) {
		s.Feedback = msgFullBodyVisible
		return s
	}

	lh, rh := lm[pose.LeftHip], lm[pose.RightHip]
	lk, rk := lm[pose.LeftKnee], lm[pose.RightKnee]
	leftUp := lk.Y < lh.Y+stepLiftMargin
	rightUp := rk.Y < rh.Y+stepLiftMargin

	s.Feedback = "March!"
	s.UpFramesLeft = countUp(leftUp, s.UpFramesLeft)
	s.UpFramesRight = countUp(rightUp, s.UpFramesRight)
	s.Cooldown = max(0, s.Cooldown-1)

	// Only one leg is considered per tick, left first.
	if s.UpFramesLeft >= stepMinUpFrames && !rightUp && s.LastLeg != SideLeft && s.Cooldown == 0 {
		if lk.Y < lh.Y {
			s.step(SideLeft, "Great Left Step!")
		}
	} else if s.UpFramesRight >= stepMinUpFrames && !leftUp && s.LastLeg != SideRight && s.Cooldown == 0 {
		if rk.Y < rh.Y {
			s.step(SideRight, "Great Right Step!")
		}
	}
	return s
}

func (s *StepsState) step(leg Side, feedback string) {
	s.LastLeg = leg
	s.Count++
	s.ScoreDelta = stepPoints
	s.Feedback = feedback
	s.Cooldown = stepCooldownTick
}

func countUp(up bool, n int) int {
	if up {
		return n + 1
	}
	return 0
}

// StepsRender is the renderer payload for the marching game.
type StepsRender struct {
	Steps   int  `json:"steps"`
	LastLeg Side `json:"lastLeg"`
	LeftUp  bool `json:"leftUp"`
	RightUp bool `json:"rightUp"`
}

func (Steps) Render(s StepsState) any {
	return StepsRender{
		Steps:   s.Count,
		LastLeg: s.LastLeg,
		LeftUp:  s.UpFramesLeft > 0,
		RightUp: s.UpFramesRight > 0,
	}
}

func (Steps) Summarize(s StepsState) Summary {
	return Summary{Metadata: map[string]any{"steps": s.Count}}
}
