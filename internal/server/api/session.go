package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/pinchmaze/internal/game"
	"github.com/ayusman/pinchmaze/internal/plugin"
)

// SessionController is the live game as seen by the API.
type SessionController interface {
	Snapshot() game.Snapshot
	Reset()
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// SessionHandler exposes the running session.
//
//	GET  /api/session         current snapshot
//	PUT  /api/session         {"enabled": bool} pauses or resumes
//	POST /api/session/reset   restarts before the next frame
type SessionHandler struct {
	game SessionController
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(c SessionController) *SessionHandler {
	return &SessionHandler{game: c}
}

type sessionResponse struct {
	game.Snapshot
	Enabled bool `json:"enabled"`
}

type updateSessionRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/session")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.get(w)
		case http.MethodPut:
			h.update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 1 && parts[0] == "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.game.Reset()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "reset requested"})
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) get(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, sessionResponse{
		Snapshot: h.game.Snapshot(),
		Enabled:  h.game.IsEnabled(),
	})
}

func (h *SessionHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.game.SetEnabled(*req.Enabled)
	h.get(w)
}

// PluginHandler lists discovered hook plugins at GET /api/plugins.
type PluginHandler struct {
	plugins *plugin.Manager
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(m *plugin.Manager) *PluginHandler {
	return &PluginHandler{plugins: m}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
	Events      []string `json:"events"`
}

func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := h.plugins.List()
	response := struct {
		Plugins []pluginResponse `json:"plugins"`
	}{Plugins: make([]pluginResponse, 0, len(list))}

	for _, p := range list {
		m := p.Manifest
		events := m.Events
		if len(events) == 0 {
			events = []string{"won", "lost", "reset"}
		}
		response.Plugins = append(response.Plugins, pluginResponse{
			Name:        m.Name,
			Version:     m.Version,
			Description: m.Description,
			Actions:     m.Actions,
			Events:      events,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
