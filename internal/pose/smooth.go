package pose

// DefaultBlend weights the previous frame at 0.6 and the new frame at 0.4.
const DefaultBlend = 0.6

// Smooth blends a new raw frame into the previously smoothed one.
//
// A nil raw frame holds the previous pose through detection gaps. A nil
// previous frame, or one with a different landmark count, is replaced by raw
// verbatim. Otherwise every coordinate, visibility included, is computed as
// previous*blend + raw*(1-blend). The result is always a fresh Frame.
func Smooth(previous, raw Frame, blend float64) Frame {
	if raw == nil {
		return previous
	}
	if previous == nil || len(previous) != len(raw) {
		return raw.Clone()
	}

	w := 1 - blend
	out := make(Frame, len(raw))
	for i := range raw {
		p, r := previous[i], raw[i]
		out[i] = Landmark{
			X:          lerp(p.X, r.X, w),
			Y:          lerp(p.Y, r.Y, w),
			Z:          lerp(p.Z, r.Z, w),
			Visibility: lerp(p.Visibility, r.Visibility, w),
		}
	}
	return out
}

// lerp is written as p + (r-p)*w so identical inputs come back unchanged.
func lerp(p, r, w float64) float64 {
	return p + (r-p)*w
}

// Smoother keeps the history needed to smooth a stream of frames.
type Smoother struct {
	blend float64
	last  Frame
}

// NewSmoother creates a Smoother with the given blend factor.
func NewSmoother(blend float64) *Smoother {
	return &Smoother{blend: blend}
}

// Next smooths raw against the last output and remembers the result.
func (s *Smoother) Next(raw Frame) Frame {
	s.last = Smooth(s.last, raw, s.blend)
	return s.last
}

// Reset clears the smoothing history.
func (s *Smoother) Reset() {
	s.last = nil
}
