// Package plugin runs external programs when a game session completes.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// For every event it subscribes to, the executable is started with a JSON
// Request on stdin and must print a JSON Response on stdout.
package plugin

import "encoding/json"

// Event names.
const (
	EventSessionCompleted = "session.completed"
)

// Manifest describes a plugin.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
	// Config is passed through to the plugin untouched.
	Config json.RawMessage `json:"config,omitempty"`
}

// Subscribes reports whether the manifest lists event.
func (m Manifest) Subscribes(event string) bool {
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request is written to the plugin's stdin.
type Request struct {
	Event   string          `json:"event"`
	Config  json.RawMessage `json:"config,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
