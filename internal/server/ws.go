package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/bodyplay/internal/engine"
)

const (
	writeWait      = 2 * time.Second
	clientQueueLen = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message types sent to websocket clients.
const (
	MessageSnapshot = "snapshot"
	MessageResult   = "result"
)

// Message is the envelope of every websocket message.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// SnapshotHub broadcasts engine snapshots and results to websocket clients.
// It implements engine.Publisher. A client that falls behind loses messages
// instead of slowing the engine down.
type SnapshotHub struct {
	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	last    []byte
}

// NewSnapshotHub creates an empty hub.
func NewSnapshotHub() *SnapshotHub {
	return &SnapshotHub{clients: make(map[*hubClient]struct{})}
}

// Publish sends a snapshot to every client. New clients receive the most
// recent snapshot on connect.
func (h *SnapshotHub) Publish(s engine.Snapshot) {
	msg, err := json.Marshal(Message{Type: MessageSnapshot, Data: s})
	if err != nil {
		log.Printf("Failed to encode snapshot: %v", err)
		return
	}

	h.mu.Lock()
	h.last = msg
	h.mu.Unlock()

	h.broadcast(msg)
}

// PublishResult sends a finished attempt's result to every client.
func (h *SnapshotHub) PublishResult(r engine.Result) {
	msg, err := json.Marshal(Message{Type: MessageResult, Data: r})
	if err != nil {
		log.Printf("Failed to encode result: %v", err)
		return
	}
	h.broadcast(msg)
}

func (h *SnapshotHub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *SnapshotHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the client registered until the
// connection closes.
func (h *SnapshotHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &hubClient{conn: conn, send: make(chan []byte, clientQueueLen)}

	h.mu.Lock()
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	// Reads only detect the close; clients have nothing to say.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.send)
	<-done
}

func (c *hubClient) writeLoop() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// Closing the connection ends the read loop, which closes send.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}
