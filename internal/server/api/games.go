package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ayusman/bodyplay/internal/engine"
	"github.com/ayusman/bodyplay/internal/game"
)

// GameController starts and stops attempts. It is implemented by app.App.
type GameController interface {
	StartGame(kind game.Kind) (engine.Snapshot, error)
	StopGame() error
	// Snapshot returns the state of the current or last attempt; false when
	// no game has been started.
	Snapshot() (engine.Snapshot, bool)
}

type gameResponse struct {
	game.Info
	DurationSeconds int `json:"durationSeconds"`
}

type catalogResponse struct {
	Games []gameResponse `json:"games"`
}

// GamesHandler serves the game catalog and starts games:
//
//	GET  /api/games
//	POST /api/games/{id}/start
type GamesHandler struct {
	controller GameController
}

// NewGamesHandler creates a GamesHandler. A nil controller serves only the
// catalog.
func NewGamesHandler(c GameController) *GamesHandler {
	return &GamesHandler{controller: c}
}

func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/games")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.catalog(w)
		return
	}

	id, action, ok := strings.Cut(path, "/")
	if !ok || action != "start" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.start(w, id)
}

func (h *GamesHandler) catalog(w http.ResponseWriter) {
	games := game.All()
	resp := catalogResponse{Games: make([]gameResponse, 0, len(games))}
	for _, g := range games {
		info := g.Info()
		resp.Games = append(resp.Games, gameResponse{Info: info, DurationSeconds: info.DurationSeconds()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GamesHandler) start(w http.ResponseWriter, id string) {
	kind, err := game.ParseKind(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown game")
		return
	}
	if h.controller == nil {
		writeError(w, http.StatusServiceUnavailable, "Game engine not available")
		return
	}

	snap, err := h.controller.StartGame(kind)
	if err != nil {
		log.Printf("Failed to start %s: %v", kind, err)
		writeError(w, http.StatusServiceUnavailable, "Failed to start game")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CurrentGameHandler controls the running attempt:
//
//	GET  /api/game/state
//	POST /api/game/stop
type CurrentGameHandler struct {
	controller GameController
}

// NewCurrentGameHandler creates a CurrentGameHandler.
func NewCurrentGameHandler(c GameController) *CurrentGameHandler {
	return &CurrentGameHandler{controller: c}
}

func (h *CurrentGameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.controller == nil {
		writeError(w, http.StatusServiceUnavailable, "Game engine not available")
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/game/") {
	case "state":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		snap, ok := h.controller.Snapshot()
		if !ok {
			writeError(w, http.StatusNotFound, "No game started")
			return
		}
		writeJSON(w, http.StatusOK, snap)

	case "stop":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if err := h.controller.StopGame(); err != nil {
			if errors.Is(err, engine.ErrNotRunning) {
				writeError(w, http.StatusConflict, "No game running")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to stop game")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}
