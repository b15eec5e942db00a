// Package server provides the HTTP server: the JSON API, the camera stream
// and the snapshot websocket.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/bodyplay/internal/capture"
	"github.com/ayusman/bodyplay/internal/server/api"
	"github.com/ayusman/bodyplay/internal/store"
)

// Config holds the server configuration. Nil collaborators disable the
// routes that need them.
type Config struct {
	StaticDir string
	Store     *store.Store
	Games     api.GameController
	// Frames holds the latest JPEG-encoded camera frame.
	Frames *capture.Slot[[]byte]
	Hub    *SnapshotHub
}

// Server is the HTTP handler for the application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	games := api.NewGamesHandler(s.config.Games)
	s.mux.Handle("/api/games", games)
	s.mux.Handle("/api/games/", games)
	s.mux.Handle("/api/game/", api.NewCurrentGameHandler(s.config.Games))

	if s.config.Store != nil {
		sessions := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
		s.mux.Handle("/api/leaderboard", api.NewLeaderboardHandler(s.config.Store))
		s.mux.Handle("/api/statistics", api.NewStatisticsHandler(s.config.Store))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames, DefaultStreamInterval))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/ws", s.config.Hub)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		response["clients"] = s.config.Hub.ClientCount()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
