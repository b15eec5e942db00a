package store

import (
	"errors"
	"testing"
	"time"
)

func TestLeaderboard_BestScorePerPlayer(t *testing.T) {
	s := newTestStore(t)
	saveSession(t, s, "asha", "squats", 80, day)
	saveSession(t, s, "asha", "squats", 120, day.Add(time.Minute))
	saveSession(t, s, "ravi", "squats", 100, day.Add(2*time.Minute))
	saveSession(t, s, "mei", "squats", 120, day.Add(3*time.Minute))
	saveSession(t, s, "mei", "reaction_time", 500, day.Add(4*time.Minute))

	board, err := s.Leaderboard("squats", 0)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	want := []struct {
		player string
		score  int
	}{
		{"asha", 120}, // reached 120 before mei
		{"mei", 120},
		{"ravi", 100},
	}
	if len(board) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(board), len(want), board)
	}
	for i, w := range want {
		e := board[i]
		if e.Rank != i+1 || e.Player != w.player || e.Score != w.score {
			t.Errorf("entry %d = %+v, want rank %d %s %d", i, e, i+1, w.player, w.score)
		}
	}

	top, err := s.Leaderboard("squats", 1)
	if err != nil || len(top) != 1 {
		t.Errorf("limit 1: got %d entries, %v", len(top), err)
	}
}

func TestPlayerRank(t *testing.T) {
	s := newTestStore(t)
	saveSession(t, s, "asha", "squats", 120, day)
	saveSession(t, s, "ravi", "squats", 100, day)
	saveSession(t, s, "ravi", "squats", 90, day)
	saveSession(t, s, "mei", "squats", 120, day)

	tests := []struct {
		player   string
		wantRank int
		wantBest int
	}{
		{"asha", 1, 120},
		{"mei", 1, 120},
		{"ravi", 3, 100},
	}

	for _, tt := range tests {
		t.Run(tt.player, func(t *testing.T) {
			rank, best, err := s.PlayerRank("squats", tt.player)
			if err != nil {
				t.Fatalf("PlayerRank failed: %v", err)
			}
			if rank != tt.wantRank || best != tt.wantBest {
				t.Errorf("rank %d best %d, want %d %d", rank, best, tt.wantRank, tt.wantBest)
			}
		})
	}

	if _, _, err := s.PlayerRank("squats", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
