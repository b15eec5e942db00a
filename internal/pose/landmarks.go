// Package pose defines body landmark types and per-frame smoothing.
package pose

// Body landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

var landmarkNames = [NumLandmarks]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

// LandmarkName returns the snake_case name of a landmark index, or "" if the
// index is out of range.
func LandmarkName(i int) string {
	if i < 0 || i >= NumLandmarks {
		return ""
	}
	return landmarkNames[i]
}

// LandmarkIndex returns the index for a landmark name.
func LandmarkIndex(name string) (int, bool) {
	for i, n := range landmarkNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Landmark is a single body keypoint. X and Y are normalized to [0,1] with the
// origin at the top left of the image; Y grows downward.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Point returns the planar position of the landmark.
func (l Landmark) Point() Point {
	return Point{X: l.X, Y: l.Y}
}

// Point is a normalized 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is one pose estimate indexed by the landmark constants above.
// A nil Frame means no body was detected.
type Frame []Landmark

// At returns the landmark at index i. The second return value is false when
// the frame does not contain that index.
func (f Frame) At(i int) (Landmark, bool) {
	if i < 0 || i >= len(f) {
		return Landmark{}, false
	}
	return f[i], true
}

// Complete reports whether the frame carries every pose landmark.
func (f Frame) Complete() bool {
	return len(f) >= NumLandmarks
}

// Visible reports whether every listed landmark exists with a visibility of
// at least min. Missing landmarks count as invisible.
func (f Frame) Visible(min float64, indices ...int) bool {
	if f == nil {
		return false
	}
	for _, i := range indices {
		lm, ok := f.At(i)
		if !ok || lm.Visibility < min {
			return false
		}
	}
	return true
}

// MeanVisibility returns the average visibility of the listed landmarks.
// Missing landmarks contribute zero.
func (f Frame) MeanVisibility(indices ...int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		if lm, ok := f.At(i); ok {
			sum += lm.Visibility
		}
	}
	return sum / float64(len(indices))
}

// Clone returns a copy of the frame. Cloning nil yields nil.
func (f Frame) Clone() Frame {
	if f == nil {
		return nil
	}
	out := make(Frame, len(f))
	copy(out, f)
	return out
}
