package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/bodyplay/internal/engine"
	"github.com/ayusman/bodyplay/internal/game"
)

func dialHub(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid message %s: %v", data, err)
	}
	return msg.Type, msg.Data
}

func waitForClients(t *testing.T, hub *SnapshotHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSnapshotHub_Broadcast(t *testing.T) {
	hub := NewSnapshotHub()
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	a := dialHub(t, ts)
	b := dialHub(t, ts)
	waitForClients(t, hub, 2)

	hub.Publish(engine.Snapshot{Game: game.Squats, Phase: engine.PhaseRunning, Score: 15, TimeLeft: 42})

	for _, conn := range []*websocket.Conn{a, b} {
		typ, data := readMessage(t, conn)
		if typ != MessageSnapshot {
			t.Fatalf("type = %q, want snapshot", typ)
		}
		var snap engine.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			t.Fatalf("invalid snapshot: %v", err)
		}
		if snap.Game != game.Squats || snap.Score != 15 || snap.TimeLeft != 42 {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
	}

	hub.PublishResult(engine.Result{GameType: game.Squats, Score: 15, DurationSeconds: 60})
	if typ, _ := readMessage(t, a); typ != MessageResult {
		t.Errorf("type = %q, want result", typ)
	}
}

func TestSnapshotHub_LateJoinerGetsLastSnapshot(t *testing.T) {
	hub := NewSnapshotHub()
	ts := httptest.NewServer(hub)
	defer ts.Close()

	hub.Publish(engine.Snapshot{Game: game.ReactionTime, Phase: engine.PhaseCalibrating})

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	typ, data := readMessage(t, conn)
	var snap engine.Snapshot
	json.Unmarshal(data, &snap)
	if typ != MessageSnapshot || snap.Game != game.ReactionTime {
		t.Errorf("unexpected first message %q: %+v", typ, snap)
	}
}

func TestSnapshotHub_Disconnect(t *testing.T) {
	hub := NewSnapshotHub()
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	conn := dialHub(t, ts)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// Publishing with no clients must not block.
	hub.Publish(engine.Snapshot{Game: game.Squats})
}
