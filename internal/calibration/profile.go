// Package calibration implements the pre-game readiness check that confirms
// the player is visible and centered before gameplay starts.
package calibration

import "github.com/ayusman/bodyplay/internal/pose"

// Profile names a set of required landmarks and a centering rule.
type Profile string

const (
	HandsOnly Profile = "hands_only"
	UpperBody Profile = "upper_body"
	FullBody  Profile = "full_body"
)

// Requirement describes what a profile needs to see.
type Requirement struct {
	Profile      Profile
	Title        string
	Instructions string
	Landmarks    []int
	// Centered reports whether the body is horizontally centered.
	Centered func(pose.Frame) bool
}

// shouldersCentered holds when the shoulder midpoint lies in (0.3, 0.7).
func shouldersCentered(f pose.Frame) bool {
	ls, ok1 := f.At(pose.LeftShoulder)
	rs, ok2 := f.At(pose.RightShoulder)
	if !ok1 || !ok2 {
		return false
	}
	mid := (ls.X + rs.X) / 2
	return mid > 0.3 && mid < 0.7
}

var requirements = map[Profile]Requirement{
	HandsOnly: {
		Profile:      HandsOnly,
		Title:        "Hands Calibration",
		Instructions: "Stand so your head, shoulders, and hands are visible.",
		Landmarks:    []int{pose.LeftShoulder, pose.RightShoulder, pose.LeftWrist, pose.RightWrist},
		Centered:     shouldersCentered,
	},
	UpperBody: {
		Profile:      UpperBody,
		Title:        "Upper Body Calibration",
		Instructions: "Position yourself so your shoulders and hands are clearly visible.",
		Landmarks:    []int{pose.LeftShoulder, pose.RightShoulder, pose.LeftWrist, pose.RightWrist},
		Centered:     shouldersCentered,
	},
	FullBody: {
		Profile:      FullBody,
		Title:        "Full Body Calibration",
		Instructions: "Step back so your shoulders, hips, and knees are visible.",
		Landmarks: []int{
			pose.LeftShoulder, pose.RightShoulder,
			pose.LeftHip, pose.RightHip,
			pose.LeftKnee, pose.RightKnee,
		},
		Centered: shouldersCentered,
	},
}

// Lookup returns the requirement for a profile. Unknown profiles fall back to
// FullBody and report false.
func Lookup(p Profile) (Requirement, bool) {
	r, ok := requirements[p]
	if !ok {
		return requirements[FullBody], false
	}
	return r, true
}
