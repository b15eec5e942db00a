package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/bodyplay/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func post(h http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionsHandler_Create(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionsHandler(s)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid", body: `{"gameType":"squats","score":45,"duration":60,"accuracy":80,"metadata":{"reps":3}}`, wantStatus: http.StatusCreated},
		{name: "zero score is allowed", body: `{"gameType":"squats","score":0,"duration":60}`, wantStatus: http.StatusCreated},
		{name: "missing score", body: `{"gameType":"squats","duration":60}`, wantStatus: http.StatusBadRequest},
		{name: "missing duration", body: `{"gameType":"squats","score":5}`, wantStatus: http.StatusBadRequest},
		{name: "unknown game", body: `{"gameType":"tetris","score":5,"duration":60}`, wantStatus: http.StatusBadRequest},
		{name: "invalid json", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, "/api/sessions", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	if n, _ := s.Sessions().Count(store.SessionFilter{}); n != 2 {
		t.Errorf("expected 2 saved sessions, got %d", n)
	}
}

func TestSessionsHandler_CreateUsesConfiguredPlayer(t *testing.T) {
	s := newTestStore(t)
	s.Settings().Set(store.SettingPlayerName, "asha")

	rec := post(NewSessionsHandler(s), "/api/sessions", `{"gameType":"happy_steps","score":30,"duration":60}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Session store.Session `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Session.Player != "asha" || resp.Session.ID == "" {
		t.Errorf("unexpected session: %+v", resp.Session)
	}
	if len(resp.Session.Unlocked) != 1 || resp.Session.Unlocked[0] != store.AchievementFirstGame {
		t.Errorf("unlocked = %v, want first_game", resp.Session.Unlocked)
	}
}

func TestSessionsHandler_ListAndGet(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionsHandler(s)
	for _, body := range []string{
		`{"gameType":"squats","score":10,"duration":60}`,
		`{"gameType":"squats","score":20,"duration":60}`,
		`{"gameType":"virtual_drums","score":30,"duration":60}`,
	} {
		if rec := post(h, "/api/sessions", body); rec.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", rec.Code)
		}
	}

	rec := serve(h, http.MethodGet, "/api/sessions?gameType=squats&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list.Sessions) != 1 || list.Total != 2 || list.Limit != 1 {
		t.Fatalf("unexpected list: %+v", list)
	}

	id := list.Sessions[0].ID
	rec = serve(h, http.MethodGet, "/api/sessions/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var got store.Session
	json.NewDecoder(rec.Body).Decode(&got)
	if got.ID != id || got.GameType != "squats" {
		t.Errorf("unexpected session: %+v", got)
	}

	if rec := serve(h, http.MethodGet, "/api/sessions/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/api/sessions?limit=-1"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodDelete, "/api/sessions/"+id); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("delete: expected 405, got %d", rec.Code)
	}
}
