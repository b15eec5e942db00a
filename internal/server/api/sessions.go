package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/bodyplay/internal/game"
	"github.com/ayusman/bodyplay/internal/store"
)

// SessionsHandler serves saved sessions:
//
//	POST /api/sessions
//	GET  /api/sessions?player=&gameType=&limit=&offset=
//	GET  /api/sessions/{id}
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a SessionsHandler.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

type createSessionRequest struct {
	Player   string         `json:"player"`
	GameType string         `json:"gameType"`
	Score    *int           `json:"score"`
	Duration int            `json:"duration"`
	Accuracy *float64       `json:"accuracy"`
	Metadata map[string]any `json:"metadata"`
}

type createSessionResponse struct {
	Message string         `json:"message"`
	Session *store.Session `json:"session"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.get(w, id)
}

func (h *SessionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.GameType == "" || req.Score == nil || req.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: gameType, score, duration")
		return
	}
	if _, err := game.ParseKind(req.GameType); err != nil {
		writeError(w, http.StatusBadRequest, "Unknown gameType")
		return
	}

	player := req.Player
	if player == "" {
		player = h.store.PlayerName()
	}

	sess := &store.Session{
		Player:    player,
		GameType:  req.GameType,
		Score:     *req.Score,
		Duration:  req.Duration,
		Accuracy:  req.Accuracy,
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.Sessions().Create(sess); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Message: "Game session saved successfully",
		Session: sess,
	})
}

func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", store.DefaultListLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	q := r.URL.Query()
	filter := store.SessionFilter{
		Player:   q.Get("player"),
		GameType: q.Get("gameType"),
		Limit:    limit,
		Offset:   offset,
	}

	sessions, err := h.store.Sessions().List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	total, err := h.store.Sessions().Count(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count sessions")
		return
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{
		Sessions: sessions,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

func (h *SessionsHandler) get(w http.ResponseWriter, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
