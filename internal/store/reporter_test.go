package store

import (
	"context"
	"testing"

	"github.com/ayusman/bodyplay/internal/engine"
	"github.com/ayusman/bodyplay/internal/game"
)

func TestReporter_SavesResult(t *testing.T) {
	s := newTestStore(t)
	if err := s.Settings().Set(SettingPlayerName, "asha"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	acc := 75.0
	r := NewReporter(s)
	err := r.Report(context.Background(), engine.Result{
		GameType:        game.VirtualDrums,
		Score:           230,
		DurationSeconds: 60,
		Accuracy:        &acc,
		Metadata:        map[string]any{"totalHits": 40},
	})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	list, err := s.Sessions().List(SessionFilter{Player: "asha"})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 session, got %d, %v", len(list), err)
	}
	got := list[0]
	if got.GameType != "virtual_drums" || got.Score != 230 || got.Duration != 60 {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.Accuracy == nil || *got.Accuracy != 75 {
		t.Errorf("accuracy = %v, want 75", got.Accuracy)
	}
}

func TestReporter_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewReporter(s).Report(ctx, engine.Result{GameType: game.Squats, DurationSeconds: 60})
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if n, _ := s.Sessions().Count(SessionFilter{}); n != 0 {
		t.Errorf("expected nothing saved, got %d sessions", n)
	}
}
