// Package plugin discovers and runs outcome hook plugins.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// The executable receives one JSON Request on stdin and answers with one JSON
// Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	Events       []string        `json:"events,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the plugin declares action.
func (m Manifest) Supports(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Handles reports whether the plugin accepts event. A manifest without an
// events list accepts every event.
func (m Manifest) Handles(event string) bool {
	return len(m.Events) == 0 || slices.Contains(m.Events, event)
}

// Request is sent to a plugin when a hook fires.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Maze   string          `json:"maze"`
	Status string          `json:"status"`
	Config json.RawMessage `json:"config"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
