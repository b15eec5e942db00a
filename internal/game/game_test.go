package game

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/ayusman/bodyplay/internal/pose"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

// withoutStatus returns a copy of the state with its common Status zeroed.
func withoutStatus(s State) any {
	v := reflect.ValueOf(s)
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	cp.FieldByName("Status").Set(reflect.Zero(reflect.TypeOf(Status{})))
	return cp.Interface()
}

// reachableStates drives a game through a mix of poses and returns a sample
// of the states it passed through.
func reachableStates(g Game) []State {
	rng := newRand()
	frames := []pose.Frame{
		pose.StandingFrame(0.9),
		pose.ArmsUpFrame(0.9),
		pose.TPoseFrame(0.9),
		pose.StandingFrame(0.9).WithLandmark(pose.LeftKnee, 0.44, 0.5),
		pose.StandingFrame(0.9).WithLandmark(pose.LeftWrist, 0.25, 0.3),
	}

	s := g.InitialState()
	states := []State{s}
	for i := 0; i < 600; i++ {
		f := frames[(i/7)%len(frames)]
		s = g.Update(Tick{Landmarks: f, Now: at(i * 33), Rand: rng}, s)
		if i%50 == 0 {
			states = append(states, s)
		}
	}
	return append(states, s)
}

func TestAllGames_AbsentLandmarksFreezeState(t *testing.T) {
	for _, g := range All() {
		t.Run(g.Info().Kind.String(), func(t *testing.T) {
			warning := g.Update(Tick{Now: epoch}, g.InitialState()).Base().Feedback
			if warning == "" {
				t.Fatal("expected a visibility warning")
			}

			inputs := map[string]pose.Frame{
				"nil":            nil,
				"low visibility": pose.StandingFrame(0.1),
				"truncated":      pose.StandingFrame(0.9)[:5],
			}

			for i, s := range reachableStates(g) {
				for name, frame := range inputs {
					got := g.Update(Tick{Landmarks: frame, Now: at(999_999), Rand: newRand()}, s)

					if got.Base().ScoreDelta != 0 {
						t.Errorf("state %d, %s: expected scoreDelta 0, got %d", i, name, got.Base().ScoreDelta)
					}
					if got.Base().Feedback != warning {
						t.Errorf("state %d, %s: expected %q, got %q", i, name, warning, got.Base().Feedback)
					}
					if got.Base().Count != s.Base().Count {
						t.Errorf("state %d, %s: count changed from %d to %d", i, name, s.Base().Count, got.Base().Count)
					}
					if !reflect.DeepEqual(withoutStatus(got), withoutStatus(s)) {
						t.Errorf("state %d, %s: state advanced on an invisible tick", i, name)
					}
				}
			}
		})
	}
}

func TestTick_Gap(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want time.Duration
	}{
		{"first tick", time.Time{}, at(5000), 0},
		{"continuous", at(0), at(33), 0},
		{"at limit", at(0), at(1000), 0},
		{"out of view", at(0), at(5000), 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Tick{Now: tt.now}).Gap(tt.last); got != tt.want {
				t.Errorf("Gap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLean_HiddenStretchPaysNothing(t *testing.T) {
	m := Lean{}
	s := m.Initial()
	s.NextCoin = time.Hour

	s = m.Update(Tick{Landmarks: leanFrame(0.2), Now: at(0)}, s)
	s = m.Update(Tick{Landmarks: leanFrame(0.2), Now: at(50)}, s)
	for ms := 100; ms <= 5000; ms += 50 {
		s = m.Update(Tick{Now: at(ms)}, s)
		if s.ScoreDelta != 0 {
			t.Fatalf("expected no points at %dms while hidden, got %d", ms, s.ScoreDelta)
		}
	}

	s = m.Update(Tick{Landmarks: leanFrame(0.2), Now: at(5050)}, s)
	if s.ScoreDelta != 0 {
		t.Errorf("expected no points for the hidden stretch, got %d", s.ScoreDelta)
	}
	if s.LeanTime != 0 {
		t.Errorf("expected no scored lean time, got %v", s.LeanTime)
	}
	if got := s.LastSeen.Sub(s.Started); got != 50*time.Millisecond {
		t.Errorf("expected 50ms of elapsed play, got %v", got)
	}

	// The lean run restarts when the body comes back.
	s = m.Update(Tick{Landmarks: leanFrame(0.2), Now: at(5100)}, s)
	s = m.Update(Tick{Landmarks: leanFrame(0.2), Now: at(5150)}, s)
	if s.ScoreDelta != leanPoints || s.LeanTime != leanPointInterval {
		t.Errorf("expected one interval after return, got delta=%d lean=%v", s.ScoreDelta, s.LeanTime)
	}
}

func TestHold_HiddenStretchPausesHold(t *testing.T) {
	t.Run("short hold", func(t *testing.T) {
		m := Hold{}
		s := m.Initial()
		s = m.Update(Tick{Landmarks: holdFrame(true), Now: at(0)}, s)
		s = m.Update(Tick{Landmarks: holdFrame(true), Now: at(100)}, s)
		for ms := 200; ms <= 10_000; ms += 100 {
			s = m.Update(Tick{Now: at(ms)}, s)
		}

		s = m.Update(Tick{Landmarks: holdFrame(true), Now: at(10_100)}, s)
		if s.ScoreDelta != 0 {
			t.Errorf("expected no points on return, got %d", s.ScoreDelta)
		}
		if s.TotalHold != 100*time.Millisecond {
			t.Errorf("expected 100ms total hold, got %v", s.TotalHold)
		}

		s = m.Update(Tick{Landmarks: holdFrame(false), Now: at(10_200)}, s)
		if s.Count != 0 || s.ScoreDelta != 0 || s.Feedback != "Hold longer for points!" {
			t.Errorf("expected an unrewarded short hold, got %+v", s.Status)
		}
		if s.Longest != 200*time.Millisecond {
			t.Errorf("expected 200ms longest hold, got %v", s.Longest)
		}
	})

	t.Run("bonus", func(t *testing.T) {
		m := Hold{}
		s := m.Initial()
		total := 0
		for ms := 0; ms <= 2000; ms += 100 {
			s = m.Update(Tick{Landmarks: holdFrame(true), Now: at(ms)}, s)
			total += s.ScoreDelta
		}
		for ms := 2100; ms <= 8000; ms += 100 {
			s = m.Update(Tick{Now: at(ms)}, s)
		}
		for ms := 8100; ms <= 9000; ms += 100 {
			s = m.Update(Tick{Landmarks: holdFrame(true), Now: at(ms)}, s)
			total += s.ScoreDelta
		}
		if total != 2*holdPointsPerTick {
			t.Errorf("expected 2 x 5 points while holding, got %d", total)
		}

		s = m.Update(Tick{Landmarks: holdFrame(false), Now: at(9100)}, s)
		if s.Count != 1 || s.ScoreDelta != 6 {
			t.Errorf("expected a 3s hold worth 6, got count=%d delta=%d", s.Count, s.ScoreDelta)
		}
		if s.TotalHold != 2900*time.Millisecond {
			t.Errorf("expected 2.9s total hold, got %v", s.TotalHold)
		}
		if s.Longest != 3*time.Second {
			t.Errorf("expected 3s longest hold, got %v", s.Longest)
		}
	})
}

func TestRegistry(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 10 {
		t.Fatalf("expected 10 games, got %d", len(kinds))
	}

	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			g, err := New(k)
			if err != nil {
				t.Fatalf("New(%v) failed: %v", k, err)
			}
			info := g.Info()
			if info.Kind != k {
				t.Errorf("expected kind %v, got %v", k, info.Kind)
			}
			if info.Duration != 60*time.Second {
				t.Errorf("expected 60s duration, got %v", info.Duration)
			}
			if info.Name == "" || info.Instructions == "" || info.Profile == "" {
				t.Errorf("incomplete info: %+v", info)
			}

			parsed, err := ParseKind(k.String())
			if err != nil || parsed != k {
				t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, err)
			}

			if g.RenderData(g.InitialState()) == nil {
				t.Error("expected render data for initial state")
			}
			if sum := g.Summarize(g.InitialState()); sum.Metadata == nil {
				t.Error("expected summary metadata")
			}
		})
	}
}

func TestParseKind_Unknown(t *testing.T) {
	_, err := ParseKind("tetris")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := New(Kind(99)); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKind_Text(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("pose_match")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if k != PoseMatch {
		t.Errorf("expected PoseMatch, got %v", k)
	}
	text, err := VirtualDrums.MarshalText()
	if err != nil || string(text) != "virtual_drums" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
}

func TestErase_ForeignStateIsReplaced(t *testing.T) {
	squat, _ := New(Squats)
	steps, _ := New(HappySteps)

	got := squat.Update(Tick{Landmarks: pose.StandingFrame(0.9), Now: epoch}, steps.InitialState())
	if _, ok := got.(SquatState); !ok {
		t.Fatalf("expected SquatState, got %T", got)
	}
}
