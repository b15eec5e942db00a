package pose

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestSmooth(t *testing.T) {
	t.Run("identical frames are a fixed point", func(t *testing.T) {
		f := StandingFrame(0.87)
		got := Smooth(f, f, DefaultBlend)
		for i := range f {
			if got[i] != f[i] {
				t.Fatalf("landmark %d changed: got %+v, want %+v", i, got[i], f[i])
			}
		}
	})

	t.Run("nil previous returns raw", func(t *testing.T) {
		f := StandingFrame(0.9)
		got := Smooth(nil, f, DefaultBlend)
		if len(got) != len(f) {
			t.Fatalf("expected %d landmarks, got %d", len(f), len(got))
		}
		for i := range f {
			if got[i] != f[i] {
				t.Errorf("landmark %d: got %+v, want %+v", i, got[i], f[i])
			}
		}
	})

	t.Run("nil raw holds previous", func(t *testing.T) {
		f := StandingFrame(0.9)
		got := Smooth(f, nil, DefaultBlend)
		if &got[0] != &f[0] {
			t.Error("expected previous frame to be returned unchanged")
		}
	})

	t.Run("both nil", func(t *testing.T) {
		if got := Smooth(nil, nil, DefaultBlend); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("length mismatch returns raw", func(t *testing.T) {
		prev := Frame{{X: 0.1, Y: 0.1, Visibility: 1}}
		raw := StandingFrame(0.5)
		got := Smooth(prev, raw, DefaultBlend)
		if len(got) != NumLandmarks || got[Nose] != raw[Nose] {
			t.Errorf("expected raw frame, got %v", got)
		}
	})

	t.Run("weighted blend", func(t *testing.T) {
		prev := Frame{{X: 1, Y: 0, Z: 0, Visibility: 1}}
		raw := Frame{{X: 0, Y: 1, Z: 0.5, Visibility: 0}}
		got := Smooth(prev, raw, 0.6)[0]

		want := Landmark{X: 0.6, Y: 0.4, Z: 0.2, Visibility: 0.6}
		if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon ||
			math.Abs(got.Z-want.Z) > epsilon || math.Abs(got.Visibility-want.Visibility) > epsilon {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		prev := Frame{{X: 1, Y: 1, Visibility: 1}}
		raw := Frame{{X: 0, Y: 0, Visibility: 0}}
		Smooth(prev, raw, 0.6)
		if prev[0].X != 1 || raw[0].X != 0 {
			t.Error("inputs were mutated")
		}
	})
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(0.5)
	a := Frame{{X: 0, Y: 0, Visibility: 1}}
	b := Frame{{X: 1, Y: 1, Visibility: 1}}

	if got := s.Next(a); got[0].X != 0 {
		t.Errorf("first frame should pass through, got %v", got[0].X)
	}
	if got := s.Next(b); math.Abs(got[0].X-0.5) > epsilon {
		t.Errorf("expected 0.5, got %v", got[0].X)
	}
	if got := s.Next(nil); math.Abs(got[0].X-0.5) > epsilon {
		t.Errorf("gap should hold last output, got %v", got[0].X)
	}

	s.Reset()
	if got := s.Next(b); got[0].X != 1 {
		t.Errorf("after reset raw should pass through, got %v", got[0].X)
	}
}

func TestFrame_Visible(t *testing.T) {
	f := StandingFrame(0.6)

	tests := []struct {
		name    string
		frame   Frame
		min     float64
		indices []int
		want    bool
	}{
		{"all above threshold", f, 0.5, []int{LeftHip, RightHip}, true},
		{"below threshold", f, 0.7, []int{LeftHip}, false},
		{"nil frame", nil, 0.1, []int{Nose}, false},
		{"missing index", f[:5], 0.1, []int{LeftHip}, false},
		{"out of range index", f, 0.1, []int{99}, false},
		{"negative index", f, 0.1, []int{-1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Visible(tt.min, tt.indices...); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLandmarkNames(t *testing.T) {
	for i := 0; i < NumLandmarks; i++ {
		name := LandmarkName(i)
		if name == "" {
			t.Fatalf("landmark %d has no name", i)
		}
		idx, ok := LandmarkIndex(name)
		if !ok || idx != i {
			t.Errorf("LandmarkIndex(%q) = %d, %v; want %d", name, idx, ok, i)
		}
	}
	if LandmarkName(NumLandmarks) != "" {
		t.Error("expected empty name for out of range index")
	}
}

func TestParseRecording(t *testing.T) {
	data := []byte(`{
		"name": "wave",
		"fps": 10,
		"frames": [
			{"t": 0, "landmarks": {"left_wrist": [0.3, 0.2, 0.9]}},
			{"t": 100, "landmarks": null},
			{"t": 200, "landmarks": {"left_wrist": [0.4, 0.2, 0.9]}}
		]
	}`)

	rec, err := ParseRecording(data)
	if err != nil {
		t.Fatalf("ParseRecording failed: %v", err)
	}
	if len(rec.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(rec.Frames))
	}
	if rec.Frames[1].Landmarks != nil {
		t.Error("expected nil landmarks for gap frame")
	}
	lw := rec.Frames[0].Landmarks[LeftWrist]
	if lw.X != 0.3 || lw.Visibility != 0.9 {
		t.Errorf("unexpected left wrist %+v", lw)
	}
	if rec.Frames[0].Landmarks[Nose].Visibility != 0 {
		t.Error("unlisted landmarks should be invisible")
	}
	if rec.Duration() != 200*time.Millisecond {
		t.Errorf("expected duration 200ms, got %v", rec.Duration())
	}

	t.Run("unknown landmark", func(t *testing.T) {
		_, err := ParseRecording([]byte(`{"fps": 10, "frames": [{"t": 0, "landmarks": {"tail": [0,0,1]}}]}`))
		if err == nil {
			t.Error("expected error for unknown landmark")
		}
	})

	t.Run("invalid fps", func(t *testing.T) {
		_, err := ParseRecording([]byte(`{"fps": 0, "frames": []}`))
		if err == nil {
			t.Error("expected error for zero fps")
		}
	})
}

func TestPlayer_FrameAt(t *testing.T) {
	a := StandingFrame(0.9)
	b := ArmsUpFrame(0.9)
	rec := &Recording{FPS: 10, Frames: []RecordedFrame{
		{Offset: 0, Landmarks: a},
		{Offset: 100 * time.Millisecond, Landmarks: b},
		{Offset: 200 * time.Millisecond, Landmarks: nil},
	}}
	start := time.Unix(1000, 0)

	p := NewPlayer(rec, start, false)
	if got := p.FrameAt(start.Add(50 * time.Millisecond)); got[LeftWrist] != a[LeftWrist] {
		t.Error("expected first frame at 50ms")
	}
	if got := p.FrameAt(start.Add(150 * time.Millisecond)); got[LeftWrist] != b[LeftWrist] {
		t.Error("expected second frame at 150ms")
	}
	if got := p.FrameAt(start.Add(time.Second)); got != nil {
		t.Error("expected nil after final gap frame")
	}
	if got := p.FrameAt(start.Add(-time.Second)); got != nil {
		t.Error("expected nil before start")
	}

	looped := NewPlayer(rec, start, true)
	if got := looped.FrameAt(start.Add(250 * time.Millisecond)); got[LeftWrist] != a[LeftWrist] {
		t.Error("expected looping player to wrap to first frame")
	}
}
