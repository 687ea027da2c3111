package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HookEvent names a session transition that can trigger a plugin action.
type HookEvent string

const (
	// HookEventWon fires when the player reaches the goal.
	HookEventWon HookEvent = "won"
	// HookEventLost fires when the player hits a wall.
	HookEventLost HookEvent = "lost"
	// HookEventReset fires when a session is restarted.
	HookEventReset HookEvent = "reset"
)

// ErrInvalidEvent is returned for hook events other than won, lost or reset.
var ErrInvalidEvent = errors.New("invalid hook event")

// Valid reports whether e is a known event.
func (e HookEvent) Valid() bool {
	switch e {
	case HookEventWon, HookEventLost, HookEventReset:
		return true
	}
	return false
}

// Hook binds a session event to a plugin action.
type Hook struct {
	ID         string
	Event      HookEvent
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// HookRepository provides CRUD operations for hooks.
type HookRepository struct {
	db *sql.DB
}

// Hooks returns the hook repository for this store.
func (s *Store) Hooks() *HookRepository {
	return &HookRepository{db: s.db}
}

const hookColumns = `id, event, plugin_name, action_name, config, enabled, created_at`

// Create inserts a new hook. An empty ID is replaced with a new UUID.
func (r *HookRepository) Create(h *Hook) error {
	if !h.Event.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEvent, h.Event)
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	h.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO hooks (`+hookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, string(h.Event), h.PluginName, h.ActionName, string(configOrEmpty(h.Config)), h.Enabled, h.CreatedAt,
	)
	return err
}

// GetByID retrieves a hook by its ID.
func (r *HookRepository) GetByID(id string) (*Hook, error) {
	h, err := scanHook(r.db.QueryRow(`SELECT `+hookColumns+` FROM hooks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// List retrieves all hooks.
func (r *HookRepository) List() ([]*Hook, error) {
	return r.query(`SELECT ` + hookColumns + ` FROM hooks ORDER BY created_at, id`)
}

// ListByEvent retrieves the enabled hooks for an event in creation order.
func (r *HookRepository) ListByEvent(event HookEvent) ([]*Hook, error) {
	return r.query(
		`SELECT `+hookColumns+` FROM hooks WHERE event = ? AND enabled = 1 ORDER BY created_at, id`,
		string(event),
	)
}

func (r *HookRepository) query(q string, args ...any) ([]*Hook, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []*Hook
	for rows.Next() {
		h, err := scanHook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hooks, nil
}

// Update updates an existing hook.
func (r *HookRepository) Update(h *Hook) error {
	if !h.Event.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEvent, h.Event)
	}

	result, err := r.db.Exec(
		`UPDATE hooks SET event = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		string(h.Event), h.PluginName, h.ActionName, string(configOrEmpty(h.Config)), h.Enabled, h.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a hook by its ID.
func (r *HookRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM hooks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func configOrEmpty(config json.RawMessage) json.RawMessage {
	if len(config) == 0 {
		return json.RawMessage("{}")
	}
	return config
}

func scanHook(row rowScanner) (*Hook, error) {
	h := &Hook{}
	var event, config string
	var enabled int

	if err := row.Scan(&h.ID, &event, &h.PluginName, &h.ActionName, &config, &enabled, &h.CreatedAt); err != nil {
		return nil, err
	}

	h.Event = HookEvent(event)
	h.Config = json.RawMessage(config)
	h.Enabled = enabled != 0
	return h, nil
}
