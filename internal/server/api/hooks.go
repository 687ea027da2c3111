package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/pinchmaze/internal/plugin"
	"github.com/ayusman/pinchmaze/internal/store"
)

// HookHandler handles HTTP requests for outcome hooks.
type HookHandler struct {
	store   *store.Store
	plugins *plugin.Manager
}

// NewHookHandler creates a new HookHandler. When plugins is non-nil, new and
// updated hooks must name a discovered plugin action that handles the event.
func NewHookHandler(s *store.Store, plugins *plugin.Manager) *HookHandler {
	return &HookHandler{store: s, plugins: plugins}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/hooks")

	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodPut:
			h.update(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

type hookRequest struct {
	Event      string          `json:"event"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type hookResponse struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

func toHookResponse(hk *store.Hook) hookResponse {
	return hookResponse{
		ID:         hk.ID,
		Event:      string(hk.Event),
		PluginName: hk.PluginName,
		ActionName: hk.ActionName,
		Config:     hk.Config,
		Enabled:    hk.Enabled,
		CreatedAt:  hk.CreatedAt.Format(timeFormat),
	}
}

// validate checks the hook against the store rules and, when available, the
// discovered plugins. It writes the error response and returns false on
// failure.
func (h *HookHandler) validate(w http.ResponseWriter, hk *store.Hook) bool {
	if !hk.Event.Valid() {
		writeError(w, http.StatusBadRequest, "Event must be won, lost or reset")
		return false
	}
	if hk.PluginName == "" || hk.ActionName == "" {
		writeError(w, http.StatusBadRequest, "plugin_name and action_name are required")
		return false
	}
	if len(hk.Config) > 0 && !json.Valid(hk.Config) {
		writeError(w, http.StatusBadRequest, "Config must be valid JSON")
		return false
	}
	if h.plugins != nil {
		if _, err := h.plugins.Resolve(hk.PluginName, hk.ActionName, string(hk.Event)); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return false
		}
	}
	return true
}

// list handles GET /api/hooks.
func (h *HookHandler) list(w http.ResponseWriter, r *http.Request) {
	var (
		hooks []*store.Hook
		err   error
	)
	if event := r.URL.Query().Get("event"); event != "" {
		hooks, err = h.store.Hooks().ListByEvent(store.HookEvent(event))
	} else {
		hooks, err = h.store.Hooks().List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hooks")
		return
	}

	response := listHooksResponse{Hooks: make([]hookResponse, 0, len(hooks))}
	for _, hk := range hooks {
		response.Hooks = append(response.Hooks, toHookResponse(hk))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/hooks/{id}.
func (h *HookHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}

	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

// create handles POST /api/hooks. Hooks are enabled unless the body says
// otherwise.
func (h *HookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	hk := &store.Hook{
		Event:      store.HookEvent(req.Event),
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}
	if !h.validate(w, hk) {
		return
	}

	if err := h.store.Hooks().Create(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create hook")
		return
	}

	// Read back so the response carries the stored config.
	stored, err := h.store.Hooks().GetByID(hk.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}

	writeJSON(w, http.StatusCreated, toHookResponse(stored))
}

// update handles PUT /api/hooks/{id}. Omitted fields keep their values.
func (h *HookHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}

	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Event != "" {
		hk.Event = store.HookEvent(req.Event)
	}
	if req.PluginName != "" {
		hk.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		hk.ActionName = req.ActionName
	}
	if req.Config != nil {
		hk.Config = req.Config
	}
	if req.Enabled != nil {
		hk.Enabled = *req.Enabled
	}
	if !h.validate(w, hk) {
		return
	}

	if err := h.store.Hooks().Update(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update hook")
		return
	}

	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

// delete handles DELETE /api/hooks/{id}.
func (h *HookHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Hooks().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete hook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
