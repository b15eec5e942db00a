// Package geometry provides the planar measurements shared by the games:
// joint angles, distances and simple path shape metrics.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/bodyplay/internal/pose"
)

// Angle returns the angle at vertex b formed by a-b-c, in degrees [0, 180].
func Angle(a, b, c pose.Point) float64 {
	rad := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	deg := math.Abs(rad * 180 / math.Pi)
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b pose.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Touches reports whether two circles overlap.
func Touches(a pose.Point, ra float64, b pose.Point, rb float64) bool {
	return Distance(a, b) < ra+rb
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func axes(path []pose.Point) (xs, ys []float64) {
	xs = make([]float64, len(path))
	ys = make([]float64, len(path))
	for i, p := range path {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// Centroid returns the mean position of the path.
func Centroid(path []pose.Point) pose.Point {
	if len(path) == 0 {
		return pose.Point{}
	}
	xs, ys := axes(path)
	return pose.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// RadiusDeviation returns the mean absolute deviation of each point's distance
// from the centroid. Zero means every point lies on one circle.
func RadiusDeviation(path []pose.Point) float64 {
	if len(path) == 0 {
		return 0
	}
	c := Centroid(path)
	radii := make([]float64, len(path))
	for i, p := range path {
		radii[i] = Distance(p, c)
	}
	return meanAbsDeviation(radii)
}

// Axis selects a coordinate.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// AxisDeviation returns the mean absolute deviation of one coordinate.
func AxisDeviation(path []pose.Point, axis Axis) float64 {
	if len(path) == 0 {
		return 0
	}
	xs, ys := axes(path)
	if axis == AxisX {
		return meanAbsDeviation(xs)
	}
	return meanAbsDeviation(ys)
}

func meanAbsDeviation(v []float64) float64 {
	mean := stat.Mean(v, nil)
	dev := make([]float64, len(v))
	for i, x := range v {
		dev[i] = math.Abs(x - mean)
	}
	return stat.Mean(dev, nil)
}

// DirectionChanges counts the steps whose displacement differs from the
// previous step's by more than threshold on either axis.
func DirectionChanges(path []pose.Point, threshold float64) int {
	changes := 0
	var lastDx, lastDy float64
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		if math.Abs(dx-lastDx) > threshold || math.Abs(dy-lastDy) > threshold {
			changes++
		}
		lastDx, lastDy = dx, dy
	}
	return changes
}

// Extrema counts the local minima and maxima of Y along the path.
func Extrema(path []pose.Point) int {
	n := 0
	for i := 1; i < len(path)-1; i++ {
		prev, cur, next := path[i-1].Y, path[i].Y, path[i+1].Y
		if cur < prev && cur < next {
			n++
		}
		if cur > prev && cur > next {
			n++
		}
	}
	return n
}

// IntervalConsistency scores how regular a series of event timestamps (in
// milliseconds) is, from 0 to 100. Fewer than three events score 0.
func IntervalConsistency(times []float64) int {
	if len(times) < 3 {
		return 0
	}
	intervals := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals[i-1] = times[i] - times[i-1]
	}
	variance := stat.PopVariance(intervals, nil)
	return int(math.Round(math.Max(0, 100-math.Sqrt(variance)/10)))
}
