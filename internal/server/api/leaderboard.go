package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/bodyplay/internal/game"
	"github.com/ayusman/bodyplay/internal/store"
)

type leaderboardResponse struct {
	Leaderboard   []store.LeaderboardEntry `json:"leaderboard"`
	UserRank      *int                     `json:"userRank"`
	UserBestScore *int                     `json:"userBestScore"`
}

// LeaderboardHandler serves GET /api/leaderboard?gameType=&limit=&player=.
// The player defaults to the configured local player.
type LeaderboardHandler struct {
	store *store.Store
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(s *store.Store) *LeaderboardHandler {
	return &LeaderboardHandler{store: s}
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()
	gameType := q.Get("gameType")
	if gameType == "" {
		writeError(w, http.StatusBadRequest, "gameType is required")
		return
	}
	if _, err := game.ParseKind(gameType); err != nil {
		writeError(w, http.StatusBadRequest, "Unknown gameType")
		return
	}
	limit, ok := queryInt(r, "limit", store.DefaultLeaderboardLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	board, err := h.store.Leaderboard(gameType, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	resp := leaderboardResponse{Leaderboard: board}

	player := q.Get("player")
	if player == "" {
		player = h.store.PlayerName()
	}
	rank, best, err := h.store.PlayerRank(gameType, player)
	switch {
	case err == nil:
		resp.UserRank, resp.UserBestScore = &rank, &best
	case !errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusInternalServerError, "Failed to load rank")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
