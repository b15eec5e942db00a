package calibration

import (
	"testing"

	"github.com/ayusman/bodyplay/internal/pose"
)

func TestGate_PassesAfterStableWindow(t *testing.T) {
	g := NewGate(FullBody, DefaultConfig())
	f := pose.StandingFrame(0.9)

	for i := 1; i < 15; i++ {
		st := g.Evaluate(f)
		if st.Passed {
			t.Fatalf("passed too early at tick %d", i)
		}
		if st.Stable != i {
			t.Errorf("tick %d: expected stable=%d, got %d", i, i, st.Stable)
		}
	}

	st := g.Evaluate(f)
	if !st.Passed {
		t.Fatal("expected gate to pass on tick 15")
	}
	if st.Message != MsgPassed {
		t.Errorf("expected %q, got %q", MsgPassed, st.Message)
	}

	// Stays passed regardless of later input.
	if st := g.Evaluate(nil); !st.Passed {
		t.Error("expected passed to be terminal until reset")
	}
}

func TestGate_NeverPassesWithLowVisibility(t *testing.T) {
	for _, profile := range []Profile{HandsOnly, UpperBody, FullBody} {
		t.Run(string(profile), func(t *testing.T) {
			g := NewGate(profile, DefaultConfig())
			f := pose.StandingFrame(0.1)
			req, _ := Lookup(profile)

			for i := 0; i < 100; i++ {
				st := g.Evaluate(f)
				if st.Passed {
					t.Fatalf("gate passed at tick %d with visibility 0.1", i)
				}
				if st.Message != req.Instructions {
					t.Fatalf("expected profile instructions, got %q", st.Message)
				}
			}
		})
	}
}

func TestGate_BadFrameResetsCounter(t *testing.T) {
	g := NewGate(UpperBody, DefaultConfig())
	good := pose.StandingFrame(0.9)

	for i := 0; i < 14; i++ {
		g.Evaluate(good)
	}
	if st := g.Evaluate(nil); st.Stable != 0 || st.Message != MsgNoPose {
		t.Fatalf("expected reset with %q, got %+v", MsgNoPose, st)
	}
	for i := 0; i < 14; i++ {
		if st := g.Evaluate(good); st.Passed {
			t.Fatal("passed before a full window of good frames")
		}
	}
	if st := g.Evaluate(good); !st.Passed {
		t.Fatal("expected pass after a full window")
	}
}

func TestGate_Centering(t *testing.T) {
	g := NewGate(HandsOnly, DefaultConfig())
	f := pose.StandingFrame(0.9).
		WithLandmark(pose.LeftShoulder, 0.05, 0.3).
		WithLandmark(pose.RightShoulder, 0.25, 0.3)

	st := g.Evaluate(f)
	if st.Passed || st.Message != MsgCenter {
		t.Errorf("expected centering failure, got %+v", st)
	}
}

func TestGate_Reset(t *testing.T) {
	g := NewGate(FullBody, Config{StableFrames: 2, MinVisibility: 0.4})
	f := pose.StandingFrame(0.9)
	g.Evaluate(f)
	g.Evaluate(f)
	if !g.Passed() {
		t.Fatal("expected pass")
	}

	g.Reset()
	if g.Passed() {
		t.Fatal("expected calibrating after reset")
	}
	if st := g.Evaluate(f); st.Passed || st.Stable != 1 {
		t.Errorf("expected fresh counter, got %+v", st)
	}
}

func TestCheck_FullBodyNeedsKnees(t *testing.T) {
	req, ok := Lookup(FullBody)
	if !ok {
		t.Fatal("full_body profile missing")
	}
	f := pose.StandingFrame(0.9)
	f[pose.LeftKnee].Visibility = 0.39

	ok, msg := Check(f, req, 0.4)
	if ok || msg != req.Instructions {
		t.Errorf("expected failure with instructions, got %v %q", ok, msg)
	}

	hands, _ := Lookup(HandsOnly)
	if ok, _ := Check(f, hands, 0.4); !ok {
		t.Error("hands_only should ignore knees")
	}
}

func TestLookup_UnknownFallsBackToFullBody(t *testing.T) {
	req, ok := Lookup(Profile("seated"))
	if ok {
		t.Error("expected ok=false for unknown profile")
	}
	if req.Profile != FullBody {
		t.Errorf("expected full_body fallback, got %s", req.Profile)
	}
}
