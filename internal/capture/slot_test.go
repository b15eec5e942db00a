package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayusman/bodyplay/internal/pose"
)

func TestSlot_LatestOverwrites(t *testing.T) {
	s := NewSlot[pose.Frame]()
	if s.Latest() != nil {
		t.Fatal("expected nil before the first publish")
	}

	s.Publish(pose.StandingFrame(0.9))
	arms := pose.ArmsUpFrame(0.9)
	s.Publish(arms)

	got, seq := s.Load()
	if seq != 2 {
		t.Errorf("seq = %d, want 2", seq)
	}
	if got[pose.LeftWrist] != arms[pose.LeftWrist] {
		t.Error("expected the most recent frame")
	}
	// Reading twice returns the same frame.
	if s.Latest()[pose.LeftWrist] != arms[pose.LeftWrist] {
		t.Error("expected repeated reads to return the same frame")
	}

	stats := s.Stats()
	if stats.Published != 2 || stats.Dropped != 1 {
		t.Errorf("stats = %+v, want 2 published, 1 dropped", stats)
	}
}

func TestSlot_Reset(t *testing.T) {
	s := NewSlot[pose.Frame]()
	s.Publish(pose.StandingFrame(0.9))
	s.Reset()
	if s.Latest() != nil {
		t.Error("expected nil after Reset")
	}
}

func TestSlot_Wait(t *testing.T) {
	s := NewSlot[[]byte]()

	done := make(chan []byte)
	go func() {
		v, _, err := s.Wait(context.Background(), 0)
		if err != nil {
			t.Errorf("Wait failed: %v", err)
		}
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	s.Publish([]byte("jpeg"))

	select {
	case v := <-done:
		if string(v) != "jpeg" {
			t.Errorf("got %q, want jpeg", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Publish")
	}
}

func TestSlot_WaitReturnsNewerImmediately(t *testing.T) {
	s := NewSlot[int]()
	s.Publish(7)

	v, seq, err := s.Wait(context.Background(), 0)
	if err != nil || v != 7 || seq != 1 {
		t.Errorf("Wait = %d, %d, %v", v, seq, err)
	}
}

func TestSlot_WaitCancel(t *testing.T) {
	s := NewSlot[int]()
	s.Publish(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, seq, err := s.Wait(ctx, 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
}
