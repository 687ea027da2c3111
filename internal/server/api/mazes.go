package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/pinchmaze/internal/game"
	"github.com/ayusman/pinchmaze/internal/store"
)

// MazeHandler handles HTTP requests for maze layouts.
//
//	GET    /api/mazes
//	POST   /api/mazes
//	GET    /api/mazes/{id}
//	PUT    /api/mazes/{id}
//	DELETE /api/mazes/{id}
//	POST   /api/mazes/{id}/activate
type MazeHandler struct {
	store *store.Store
}

// NewMazeHandler creates a new MazeHandler with the given store.
func NewMazeHandler(s *store.Store) *MazeHandler {
	return &MazeHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *MazeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/mazes")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 2 && parts[1] == "activate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, parts[0])

	default:
		http.NotFound(w, r)
	}
}

type mazeResponse struct {
	ID string `json:"id"`
	game.Layout
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listMazesResponse struct {
	Mazes []mazeResponse `json:"mazes"`
}

type activateResponse struct {
	Active string `json:"active"`
	// The running session keeps its layout; the new one loads at next start.
	RestartRequired bool `json:"restart_required"`
}

func toMazeResponse(m *store.Maze, activeID string) mazeResponse {
	return mazeResponse{
		ID:        m.ID,
		Layout:    m.Layout,
		Active:    m.ID == activeID,
		CreatedAt: m.CreatedAt.Format(timeFormat),
		UpdatedAt: m.UpdatedAt.Format(timeFormat),
	}
}

// activeID returns the active maze setting, or "" when unset.
func (h *MazeHandler) activeID() string {
	id, err := h.store.Settings().Get(store.ActiveMazeKey)
	if err != nil {
		return ""
	}
	return id
}

// writeStoreError maps store and layout errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Maze not found")
	case errors.Is(err, game.ErrInvalidLayout):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, "Maze name already exists")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to "+action+" maze")
	}
}

// list handles GET /api/mazes and returns all mazes.
func (h *MazeHandler) list(w http.ResponseWriter, r *http.Request) {
	mazes, err := h.store.Mazes().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list mazes")
		return
	}

	active := h.activeID()
	response := listMazesResponse{
		Mazes: make([]mazeResponse, 0, len(mazes)),
	}
	for _, m := range mazes {
		response.Mazes = append(response.Mazes, toMazeResponse(m, active))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/mazes/{id} and returns a single maze.
func (h *MazeHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Mazes().GetByID(id)
	if err != nil {
		writeStoreError(w, err, "get")
		return
	}

	writeJSON(w, http.StatusOK, toMazeResponse(m, h.activeID()))
}

// create handles POST /api/mazes. The body is a layout.
func (h *MazeHandler) create(w http.ResponseWriter, r *http.Request) {
	var layout game.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if layout.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if layout.PlayerRadius == 0 {
		layout.PlayerRadius = game.DefaultPlayerRadius
	}
	if layout.Goal.Radius == 0 {
		layout.Goal.Radius = game.DefaultGoalRadius
	}

	m := &store.Maze{Layout: layout}
	if err := h.store.Mazes().Create(m); err != nil {
		writeStoreError(w, err, "create")
		return
	}

	writeJSON(w, http.StatusCreated, toMazeResponse(m, h.activeID()))
}

// update handles PUT /api/mazes/{id} and replaces the layout. An empty name
// keeps the current one.
func (h *MazeHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Mazes().GetByID(id)
	if err != nil {
		writeStoreError(w, err, "get")
		return
	}

	var layout game.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if layout.Name == "" {
		layout.Name = m.Layout.Name
	}

	m.Layout = layout
	if err := h.store.Mazes().Update(m); err != nil {
		writeStoreError(w, err, "update")
		return
	}

	writeJSON(w, http.StatusOK, toMazeResponse(m, h.activeID()))
}

// delete handles DELETE /api/mazes/{id} and removes a maze.
func (h *MazeHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Mazes().Delete(id); err != nil {
		writeStoreError(w, err, "delete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activate handles POST /api/mazes/{id}/activate.
func (h *MazeHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Activate(id); err != nil {
		writeStoreError(w, err, "activate")
		return
	}

	writeJSON(w, http.StatusOK, activateResponse{Active: id, RestartRequired: true})
}
