package game

import (
	"fmt"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/geometry"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Pose match tuning.
const (
	poseMinVisibility = 0.4
	poseProgressGain  = 3
	poseProgressDecay = 2
	poseProgressMax   = 100
	poseArmRaise      = 0.15
	poseBendTilt      = 0.05
	poseHurryAfter    = 8 * time.Second
)

var poseLandmarks = []int{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftHip, pose.RightHip,
}

// TargetPose is a body position the player has to reproduce.
type TargetPose struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	match       func(pose.Frame) bool
}

func jointAngle(f pose.Frame, a, b, c int) float64 {
	return geometry.Angle(f[a].Point(), f[b].Point(), f[c].Point())
}

func armUp(f pose.Frame, wrist, shoulder int) bool {
	return f[wrist].Y < f[shoulder].Y-poseArmRaise
}

var targetPoses = []TargetPose{
	{
		Name:        "T-Pose",
		Description: "Arms straight out to sides",
		match: func(f pose.Frame) bool {
			l := jointAngle(f, pose.LeftHip, pose.LeftShoulder, pose.LeftElbow)
			r := jointAngle(f, pose.RightHip, pose.RightShoulder, pose.RightElbow)
			return l > 70 && l < 110 && r > 70 && r < 110
		},
	},
	{
		Name:        "Left Arm Up",
		Description: "Raise your left arm straight up",
		match: func(f pose.Frame) bool {
			return armUp(f, pose.LeftWrist, pose.LeftShoulder) && f[pose.RightWrist].Y > f[pose.RightShoulder].Y
		},
	},
	{
		Name:        "Right Arm Up",
		Description: "Raise your right arm straight up",
		match: func(f pose.Frame) bool {
			return armUp(f, pose.RightWrist, pose.RightShoulder) && f[pose.LeftWrist].Y > f[pose.LeftShoulder].Y
		},
	},
	{
		Name:        "Both Arms Up",
		Description: "Raise both arms straight up",
		match: func(f pose.Frame) bool {
			return armUp(f, pose.LeftWrist, pose.LeftShoulder) && armUp(f, pose.RightWrist, pose.RightShoulder)
		},
	},
	{
		Name:        "Side Bend Left",
		Description: "Lean to your left side",
		match: func(f pose.Frame) bool {
			return f[pose.LeftShoulder].Y-f[pose.RightShoulder].Y > poseBendTilt
		},
	},
	{
		Name:        "Side Bend Right",
		Description: "Lean to your right side",
		match: func(f pose.Frame) bool {
			return f[pose.RightShoulder].Y-f[pose.LeftShoulder].Y > poseBendTilt
		},
	},
	{
		Name:        "Arms Forward",
		Description: "Extend both arms forward",
		match: func(f pose.Frame) bool {
			l := jointAngle(f, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist)
			r := jointAngle(f, pose.RightShoulder, pose.RightElbow, pose.RightWrist)
			return l > 160 && r > 160
		},
	},
}

// PoseMatchState is the pose match state. Count is the number of poses
// matched.
type PoseMatchState struct {
	Status
	Pose      int       `json:"pose"`
	HasPose   bool      `json:"-"`
	PoseSince time.Time `json:"-"`
	Progress  int       `json:"progress"`
	Matching  bool      `json:"matching"`
	Perfect   int       `json:"perfect"`
	Offered   int       `json:"-"`
}

// Poses is the pose match game.
type Poses struct{}

func (Poses) Info() Info {
	return Info{
		Kind:         PoseMatch,
		Name:         "Pose Match",
		Instructions: "Match the pose shown on screen! Great for full body flexibility.",
		Duration:     60 * time.Second,
		Profile:      calibration.FullBody,
		CountLabel:   "Poses",
	}
}

func (Poses) Initial() PoseMatchState {
	return PoseMatchState{Status: Status{Feedback: "Get ready!"}}
}

func (s *PoseMatchState) pick(t Tick) {
	s.Pose = t.IntN(len(targetPoses))
	s.HasPose = true
	s.PoseSince = t.Now
	s.Offered++
}

func (Poses) Update(t Tick, s PoseMatchState) PoseMatchState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Visible(poseMinVisibility, poseLandmarks...) {
		s.Feedback = msgFullBodyVisible
		return s
	}

	now := t.Now
	if !s.HasPose {
		s.pick(t)
	}
	target := targetPoses[s.Pose]

	s.Matching = target.match(lm)
	if s.Matching {
		s.Progress = min(s.Progress+poseProgressGain, poseProgressMax)
	} else {
		s.Progress = max(s.Progress-poseProgressDecay, 0)
	}

	if s.Progress >= poseProgressMax {
		took := now.Sub(s.PoseSince)
		s.Count++
		switch {
		case took < 2*time.Second:
			s.ScoreDelta = 50
			s.Perfect++
			s.Feedback = fmt.Sprintf("Perfect %s! +50", target.Name)
		case took < 4*time.Second:
			s.ScoreDelta = 35
			s.Feedback = fmt.Sprintf("Great %s! +35", target.Name)
		case took < 6*time.Second:
			s.ScoreDelta = 25
			s.Feedback = fmt.Sprintf("Good %s! +25", target.Name)
		default:
			s.ScoreDelta = 20
			s.Feedback = fmt.Sprintf("%s Complete! +20", target.Name)
		}
		s.pick(t)
		s.Progress = 0
		return s
	}

	switch {
	case s.Progress > 80:
		s.Feedback = "Almost there! Hold it..."
	case s.Progress > 50:
		s.Feedback = "Good! Keep the pose..."
	case s.Matching:
		s.Feedback = "Yes! " + target.Description
	case now.Sub(s.PoseSince) > poseHurryAfter:
		s.Feedback = "Hurry! " + target.Description
	default:
		s.Feedback = target.Description
	}
	return s
}

// PoseMatchRender is the renderer payload for the pose match game.
type PoseMatchRender struct {
	Pose     *TargetPose `json:"currentPose"`
	Matched  int         `json:"posesMatched"`
	Progress int         `json:"matchProgress"`
	Perfect  int         `json:"perfectMatches"`
}

func (Poses) Render(s PoseMatchState) any {
	r := PoseMatchRender{Matched: s.Count, Progress: s.Progress, Perfect: s.Perfect}
	if s.HasPose {
		p := targetPoses[s.Pose]
		r.Pose = &p
	}
	return r
}

func (Poses) Summarize(s PoseMatchState) Summary {
	return Summary{
		Accuracy: ratio(s.Count, s.Offered),
		Metadata: map[string]any{"posesMatched": s.Count, "perfectMatches": s.Perfect},
	}
}
