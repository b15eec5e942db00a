package pose

// Preset poses used by the mock detector, demos and tests. All landmarks are
// returned with the given visibility.

// StandingFrame returns an upright, centered body with arms at the sides.
func StandingFrame(visibility float64) Frame {
	f := make(Frame, NumLandmarks)
	set := func(i int, x, y float64) {
		f[i] = Landmark{X: x, Y: y, Visibility: visibility}
	}

	set(Nose, 0.5, 0.15)
	set(LeftEyeInner, 0.49, 0.13)
	set(LeftEye, 0.48, 0.13)
	set(LeftEyeOuter, 0.47, 0.13)
	set(RightEyeInner, 0.51, 0.13)
	set(RightEye, 0.52, 0.13)
	set(RightEyeOuter, 0.53, 0.13)
	set(LeftEar, 0.46, 0.14)
	set(RightEar, 0.54, 0.14)
	set(MouthLeft, 0.49, 0.17)
	set(MouthRight, 0.51, 0.17)

	// The subject faces the camera, so the left side appears on the image left.
	set(LeftShoulder, 0.4, 0.3)
	set(RightShoulder, 0.6, 0.3)
	set(LeftElbow, 0.38, 0.42)
	set(RightElbow, 0.62, 0.42)
	set(LeftWrist, 0.37, 0.54)
	set(RightWrist, 0.63, 0.54)
	set(LeftPinky, 0.37, 0.56)
	set(RightPinky, 0.63, 0.56)
	set(LeftIndex, 0.37, 0.57)
	set(RightIndex, 0.63, 0.57)
	set(LeftThumb, 0.38, 0.56)
	set(RightThumb, 0.62, 0.56)

	set(LeftHip, 0.44, 0.55)
	set(RightHip, 0.56, 0.55)
	set(LeftKnee, 0.44, 0.72)
	set(RightKnee, 0.56, 0.72)
	set(LeftAnkle, 0.44, 0.9)
	set(RightAnkle, 0.56, 0.9)
	set(LeftHeel, 0.44, 0.92)
	set(RightHeel, 0.56, 0.92)
	set(LeftFootIndex, 0.45, 0.94)
	set(RightFootIndex, 0.55, 0.94)

	return f
}

// ArmsUpFrame returns a standing body with both wrists above the head.
func ArmsUpFrame(visibility float64) Frame {
	f := StandingFrame(visibility)
	f[LeftElbow] = Landmark{X: 0.38, Y: 0.2, Visibility: visibility}
	f[RightElbow] = Landmark{X: 0.62, Y: 0.2, Visibility: visibility}
	f[LeftWrist] = Landmark{X: 0.37, Y: 0.08, Visibility: visibility}
	f[RightWrist] = Landmark{X: 0.63, Y: 0.08, Visibility: visibility}
	return f
}

// TPoseFrame returns a standing body with both arms straight out to the sides.
func TPoseFrame(visibility float64) Frame {
	f := StandingFrame(visibility)
	f[LeftElbow] = Landmark{X: 0.28, Y: 0.3, Visibility: visibility}
	f[RightElbow] = Landmark{X: 0.72, Y: 0.3, Visibility: visibility}
	f[LeftWrist] = Landmark{X: 0.16, Y: 0.3, Visibility: visibility}
	f[RightWrist] = Landmark{X: 0.84, Y: 0.3, Visibility: visibility}
	return f
}

// WithLandmark returns a copy of f with landmark i moved to (x, y).
func (f Frame) WithLandmark(i int, x, y float64) Frame {
	out := f.Clone()
	if i >= 0 && i < len(out) {
		out[i].X = x
		out[i].Y = y
	}
	return out
}

// WithVisibility returns a copy of f with every landmark's visibility set to v.
func (f Frame) WithVisibility(v float64) Frame {
	out := f.Clone()
	for i := range out {
		out[i].Visibility = v
	}
	return out
}
