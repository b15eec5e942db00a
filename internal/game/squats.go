package game

import (
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/geometry"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Squat tuning. Angles are knee angles in degrees.
const (
	squatMinVisibility = 0.5
	squatAngleWeight   = 0.7
	squatEnterAngle    = 120
	squatExitAngle     = 160
	squatTooDeep       = 70
	squatPerfectDepth  = 95
	squatGoodDepth     = 110
	squatPerfectRep    = 85
	squatGoodRep       = 100
)

// SquatState is the squat game state.
type SquatState struct {
	Status
	Squatting bool `json:"squatting"`
	// Angle is the smoothed knee angle; zero until the first visible tick.
	Angle    float64 `json:"angle"`
	HasAngle bool    `json:"-"`
	MinAngle float64 `json:"minAngle"`
	Perfect  int     `json:"perfect"`
}

// Squat counts squat repetitions and scores them by depth.
type Squat struct{}

func (Squat) Info() Info {
	return Info{
		Kind:         Squats,
		Name:         "Squat Master",
		Instructions: "Stand with feet shoulder-width apart. Squat down until your hips are below your knees, then stand back up.",
		Duration:     60 * time.Second,
		Profile:      calibration.FullBody,
		CountLabel:   "Reps",
	}
}

func (Squat) Initial() SquatState {
	return SquatState{
		Status:   Status{Feedback: "Stand straight!"},
		MinAngle: 180,
	}
}

func (Squat) Update(t Tick, s SquatState) SquatState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Complete() {
		s.Feedback = msgFullBodyVisible
		return s
	}

	leftVis := lm.MeanVisibility(pose.LeftHip, pose.LeftKnee, pose.LeftAnkle)
	rightVis := lm.MeanVisibility(pose.RightHip, pose.RightKnee, pose.RightAnkle)
	if leftVis < squatMinVisibility && rightVis < squatMinVisibility {
		s.Feedback = msgFullBodyVisible
		return s
	}

	hip, knee, ankle := pose.RightHip, pose.RightKnee, pose.RightAnkle
	if leftVis > rightVis {
		hip, knee, ankle = pose.LeftHip, pose.LeftKnee, pose.LeftAnkle
	}
	raw := geometry.Angle(lm[hip].Point(), lm[knee].Point(), lm[ankle].Point())

	prev := raw
	if s.HasAngle {
		prev = s.Angle
	}
	angle := prev*squatAngleWeight + raw*(1-squatAngleWeight)
	s.Angle, s.HasAngle = angle, true

	wasSquatting := s.Squatting
	if wasSquatting {
		s.MinAngle = min(s.MinAngle, angle)
		if angle > squatExitAngle {
			s.Squatting = false
		}
	} else if angle < squatEnterAngle {
		s.Squatting = true
		s.MinAngle = angle
	}

	switch {
	case s.Squatting:
		s.Feedback = depthFeedback(angle)
	case wasSquatting:
		s.Count++
		switch {
		case s.MinAngle < squatPerfectRep:
			s.ScoreDelta, s.Feedback = 25, "Perfect! +25"
			s.Perfect++
		case s.MinAngle < squatGoodRep:
			s.ScoreDelta, s.Feedback = 15, "Good Job! +15"
		default:
			s.ScoreDelta, s.Feedback = 10, "Go Lower Next Time +10"
		}
	default:
		s.Feedback = "Ready"
	}
	return s
}

func depthFeedback(angle float64) string {
	switch {
	case angle < squatTooDeep:
		return "Too deep!"
	case angle < squatPerfectDepth:
		return "Perfect depth!"
	case angle < squatGoodDepth:
		return "Good, go lower..."
	default:
		return "Squat down..."
	}
}

// SquatRender is the renderer payload for the squat game.
type SquatRender struct {
	Reps      int     `json:"reps"`
	Squatting bool    `json:"squatting"`
	Angle     float64 `json:"angle"`
}

func (Squat) Render(s SquatState) any {
	return SquatRender{Reps: s.Count, Squatting: s.Squatting, Angle: s.Angle}
}

func (Squat) Summarize(s SquatState) Summary {
	return Summary{
		Accuracy: ratio(s.Perfect, s.Count),
		Metadata: map[string]any{"reps": s.Count, "perfectReps": s.Perfect},
	}
}
