package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/bodyplay/internal/store"
)

// recentSessionLimit bounds the trend list in the statistics response.
const recentSessionLimit = 30

type statisticsResponse struct {
	Stats          *store.PlayerStats    `json:"stats"`
	GameBreakdown  []store.GameBreakdown `json:"gameBreakdown"`
	RecentSessions []*store.Session      `json:"recentSessions"`
	Achievements   []store.Achievement   `json:"achievements"`
}

// StatisticsHandler serves GET /api/statistics?player=. A player without any
// session gets null stats and empty lists.
type StatisticsHandler struct {
	store *store.Store
}

// NewStatisticsHandler creates a StatisticsHandler.
func NewStatisticsHandler(s *store.Store) *StatisticsHandler {
	return &StatisticsHandler{store: s}
}

func (h *StatisticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	player := r.URL.Query().Get("player")
	if player == "" {
		player = h.store.PlayerName()
	}

	var resp statisticsResponse
	stats, err := h.store.Stats().Get(player)
	switch {
	case err == nil:
		resp.Stats = stats
	case !errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	if resp.GameBreakdown, err = h.store.Stats().Breakdown(player); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	if resp.RecentSessions, err = h.store.Sessions().List(store.SessionFilter{Player: player, Limit: recentSessionLimit}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	if resp.Achievements, err = h.store.Achievements().List(player); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
