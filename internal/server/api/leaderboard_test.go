package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ayusman/bodyplay/internal/store"
)

func seedSessions(t *testing.T, s *store.Store) {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, sess := range []store.Session{
		{Player: "asha", GameType: "squats", Score: 120},
		{Player: "ravi", GameType: "squats", Score: 150},
		{Player: "asha", GameType: "squats", Score: 90},
		{Player: "asha", GameType: "reaction_time", Score: 300},
	} {
		sess.Duration = 60
		sess.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Sessions().Create(&sess); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestLeaderboardHandler(t *testing.T) {
	s := newTestStore(t)
	seedSessions(t, s)
	h := NewLeaderboardHandler(s)

	rec := serve(h, http.MethodGet, "/api/leaderboard?gameType=squats&player=asha")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp leaderboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Leaderboard) != 2 || resp.Leaderboard[0].Player != "ravi" || resp.Leaderboard[1].Score != 120 {
		t.Errorf("unexpected leaderboard: %+v", resp.Leaderboard)
	}
	if resp.UserRank == nil || *resp.UserRank != 2 || resp.UserBestScore == nil || *resp.UserBestScore != 120 {
		t.Errorf("rank = %v, best = %v", resp.UserRank, resp.UserBestScore)
	}
}

func TestLeaderboardHandler_UnrankedPlayer(t *testing.T) {
	s := newTestStore(t)
	seedSessions(t, s)

	rec := serve(NewLeaderboardHandler(s), http.MethodGet, "/api/leaderboard?gameType=reaction_time&player=ravi")
	var resp leaderboardResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.UserRank != nil || resp.UserBestScore != nil {
		t.Errorf("expected null rank for a player without sessions, got %v / %v", resp.UserRank, resp.UserBestScore)
	}
}

func TestLeaderboardHandler_Validation(t *testing.T) {
	h := NewLeaderboardHandler(newTestStore(t))

	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/api/leaderboard", http.StatusBadRequest},
		{"/api/leaderboard?gameType=tetris", http.StatusBadRequest},
		{"/api/leaderboard?gameType=squats&limit=x", http.StatusBadRequest},
		{"/api/leaderboard?gameType=squats", http.StatusOK},
	}

	for _, tt := range tests {
		if rec := serve(h, http.MethodGet, tt.target); rec.Code != tt.wantStatus {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.wantStatus, rec.Code)
		}
	}
}

func TestStatisticsHandler(t *testing.T) {
	s := newTestStore(t)
	seedSessions(t, s)
	h := NewStatisticsHandler(s)

	rec := serve(h, http.MethodGet, "/api/statistics?player=asha")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp statisticsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stats == nil || resp.Stats.TotalGames != 3 || resp.Stats.TotalPlayTime != 180 {
		t.Errorf("unexpected stats: %+v", resp.Stats)
	}
	if len(resp.GameBreakdown) != 2 || resp.GameBreakdown[0].GameType != "squats" {
		t.Errorf("unexpected breakdown: %+v", resp.GameBreakdown)
	}
	if len(resp.RecentSessions) != 3 {
		t.Errorf("expected 3 recent sessions, got %d", len(resp.RecentSessions))
	}
	if len(resp.Achievements) != 1 || resp.Achievements[0].Type != store.AchievementFirstGame {
		t.Errorf("unexpected achievements: %+v", resp.Achievements)
	}

	rec = serve(h, http.MethodGet, "/api/statistics?player=nobody")
	var empty statisticsResponse
	json.NewDecoder(rec.Body).Decode(&empty)
	if rec.Code != http.StatusOK || empty.Stats != nil || len(empty.RecentSessions) != 0 {
		t.Errorf("unexpected response for unknown player: %d %+v", rec.Code, empty)
	}
}
