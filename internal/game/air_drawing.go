package game

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/geometry"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Air drawing tuning.
const (
	drawMinVisibility = 0.5
	drawRaiseMargin   = 0.05
	drawPathWindow    = 3 * time.Second
	drawMinPoints     = 10
	drawStartPoints   = 5
	drawPerfect       = 95
)

// Shape is a figure to draw in the air. Progress maps a path to 0-100.
type Shape struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	progress    func([]pose.Point) float64
}

var drawShapes = []Shape{
	{"Circle", "Draw a circle clockwise", "medium", circleProgress},
	{"Square", "Draw a square", "hard", polygonProgress(30, 0.02, 4)},
	{"Line Left-Right", "Draw a horizontal line", "easy", lineProgress(geometry.AxisX)},
	{"Line Up-Down", "Draw a vertical line", "easy", lineProgress(geometry.AxisY)},
	{"Triangle", "Draw a triangle", "hard", polygonProgress(25, 0.03, 3)},
	{"Wave", "Draw a wave pattern", "medium", waveProgress},
}

func circleProgress(path []pose.Point) float64 {
	if len(path) < 20 {
		return 0
	}
	return geometry.Clamp(100-geometry.RadiusDeviation(path)*1000, 0, 100)
}

// lineProgress rewards travel along axis and penalizes drift across it.
func lineProgress(axis geometry.Axis) func([]pose.Point) float64 {
	return func(path []pose.Point) float64 {
		if len(path) < 10 {
			return 0
		}
		first, last := path[0], path[len(path)-1]
		travel := math.Abs(last.X - first.X)
		drift := geometry.AxisDeviation(path, geometry.AxisY)
		if axis == geometry.AxisY {
			travel = math.Abs(last.Y - first.Y)
			drift = geometry.AxisDeviation(path, geometry.AxisX)
		}
		return geometry.Clamp(travel*500-drift*1000, 0, 100)
	}
}

func polygonProgress(minPoints int, threshold float64, corners int) func([]pose.Point) float64 {
	return func(path []pose.Point) float64 {
		if len(path) < minPoints {
			return 0
		}
		changes := geometry.DirectionChanges(path, threshold)
		return math.Min(float64(changes)/float64(corners)*100, 100)
	}
}

func waveProgress(path []pose.Point) float64 {
	if len(path) < 20 {
		return 0
	}
	return math.Min(float64(geometry.Extrema(path))/4*100, 100)
}

// PathPoint is a timestamped wrist position.
type PathPoint struct {
	pose.Point
	At time.Time `json:"-"`
}

// DrawingState is the air drawing state. Count is the number of shapes
// completed.
type DrawingState struct {
	Status
	Shape      int         `json:"shape"`
	HasShape   bool        `json:"-"`
	ShapeSince time.Time   `json:"-"`
	Hand       Side        `json:"hand"`
	Path       []PathPoint `json:"path"`
	// Progress never decreases while the same shape is being attempted.
	Progress float64    `json:"progress"`
	Perfect  int        `json:"perfect"`
	Offered  int        `json:"-"`
	Wrist    pose.Point `json:"wrist"`
	Raised   bool       `json:"raised"`
}

// Drawing is the air drawing game.
type Drawing struct{}

func (Drawing) Info() Info {
	return Info{
		Kind:         AirDrawing,
		Name:         "Air Drawing",
		Instructions: "Draw shapes in the air with your hand! Great for fine motor control.",
		Duration:     60 * time.Second,
		Profile:      calibration.UpperBody,
		CountLabel:   "Shapes",
	}
}

func (Drawing) Initial() DrawingState {
	return DrawingState{
		Status: Status{Feedback: "Get ready to draw!"},
		Hand:   SideRight,
		Wrist:  pose.Point{X: 0.5, Y: 0.5},
	}
}

// next picks a new shape and switches hands.
func (s *DrawingState) next(t Tick) {
	s.Shape = t.IntN(len(drawShapes))
	s.HasShape = true
	s.ShapeSince = t.Now
	s.Path = nil
	s.Progress = 0
	s.Offered++
	if s.Hand == SideRight {
		s.Hand = SideLeft
	} else {
		s.Hand = SideRight
	}
}

func (Drawing) Update(t Tick, s DrawingState) DrawingState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Complete() || !lm.Visible(drawMinVisibility, pose.LeftWrist, pose.RightWrist) {
		s.Feedback = "Make sure your hands are visible!"
		return s
	}

	now := t.Now
	if !s.HasShape {
		s.next(t)
	}
	shape := drawShapes[s.Shape]

	wrist, shoulder := lm[pose.RightWrist], lm[pose.RightShoulder]
	if s.Hand == SideLeft {
		wrist, shoulder = lm[pose.LeftWrist], lm[pose.LeftShoulder]
	}
	s.Raised = wrist.Y < shoulder.Y-drawRaiseMargin
	s.Wrist = wrist.Point()

	path := make([]PathPoint, 0, len(s.Path)+1)
	if s.Raised {
		for _, p := range s.Path {
			if now.Sub(p.At) < drawPathWindow {
				path = append(path, p)
			}
		}
		path = append(path, PathPoint{Point: s.Wrist, At: now})
	}
	s.Path = path

	if len(path) > drawMinPoints {
		pts := make([]pose.Point, len(path))
		for i, p := range path {
			pts[i] = p.Point
		}
		s.Progress = math.Max(s.Progress, shape.progress(pts))
	}

	if s.Progress >= 100 {
		took := now.Sub(s.ShapeSince)
		s.Count++
		switch {
		case took < 3*time.Second && s.Progress >= drawPerfect:
			s.ScoreDelta = 40
			s.Perfect++
			s.Feedback = fmt.Sprintf("Perfect %s! +40", shape.Name)
		case took < 5*time.Second:
			s.ScoreDelta = 30
			s.Feedback = fmt.Sprintf("Great %s! +30", shape.Name)
		case took < 8*time.Second:
			s.ScoreDelta = 20
			s.Feedback = fmt.Sprintf("Good %s! +20", shape.Name)
		default:
			s.ScoreDelta = 15
			s.Feedback = fmt.Sprintf("%s Complete! +15", shape.Name)
		}
		s.next(t)
		return s
	}

	hand := "Right"
	if s.Hand == SideLeft {
		hand = "Left"
	}
	switch {
	case !s.Raised:
		s.Feedback = fmt.Sprintf("Raise your %s hand to draw!", hand)
	case len(path) < drawStartPoints:
		s.Feedback = fmt.Sprintf("Start drawing %s...", shape.Name)
	case s.Progress > 70:
		s.Feedback = fmt.Sprintf("Almost done! %d%%", int(math.Round(s.Progress)))
	case s.Progress > 40:
		s.Feedback = fmt.Sprintf("Keep going! %d%%", int(math.Round(s.Progress)))
	default:
		s.Feedback = shape.Description
	}
	return s
}

// DrawingRender is the renderer payload for the air drawing game.
type DrawingRender struct {
	Shape    *Shape       `json:"currentShape"`
	Done     int          `json:"shapesCompleted"`
	Progress float64      `json:"shapeProgress"`
	Perfect  int          `json:"perfectShapes"`
	Path     []pose.Point `json:"drawingPath"`
	Hand     Side         `json:"currentHand"`
	Wrist    pose.Point   `json:"wristPos"`
	Raised   bool         `json:"isHandRaised"`
}

func (Drawing) Render(s DrawingState) any {
	r := DrawingRender{
		Done:     s.Count,
		Progress: s.Progress,
		Perfect:  s.Perfect,
		Path:     make([]pose.Point, len(s.Path)),
		Hand:     s.Hand,
		Wrist:    s.Wrist,
		Raised:   s.Raised,
	}
	for i, p := range s.Path {
		r.Path[i] = p.Point
	}
	if s.HasShape {
		sh := drawShapes[s.Shape]
		r.Shape = &sh
	}
	return r
}

func (Drawing) Summarize(s DrawingState) Summary {
	return Summary{
		Accuracy: ratio(s.Count, s.Offered),
		Metadata: map[string]any{"shapesCompleted": s.Count, "perfectShapes": s.Perfect},
	}
}
