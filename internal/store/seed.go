package store

import (
	"errors"
	"fmt"

	"github.com/ayusman/pinchmaze/internal/game"
)

// EnsureDefaultMaze stores the built-in layout if no maze carries its name
// and makes it active when nothing else is. It returns the stored maze.
func (s *Store) EnsureDefaultMaze() (*Maze, error) {
	mazes := s.Mazes()

	m, err := mazes.GetByName(game.DefaultLayoutName)
	if errors.Is(err, ErrNotFound) {
		m = &Maze{Layout: game.DefaultLayout()}
		err = mazes.Create(m)
	}
	if err != nil {
		return nil, fmt.Errorf("seed default maze: %w", err)
	}

	settings := s.Settings()
	if _, err := settings.Get(ActiveMazeKey); errors.Is(err, ErrNotFound) {
		if err := settings.Set(ActiveMazeKey, m.ID); err != nil {
			return nil, fmt.Errorf("seed active maze: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return m, nil
}

// ActiveMaze resolves the maze to play. A non-empty name wins over the
// active_maze setting. A setting that points at a deleted maze falls back to
// the default maze.
func (s *Store) ActiveMaze(name string) (*Maze, error) {
	mazes := s.Mazes()
	if name != "" {
		m, err := mazes.GetByName(name)
		if err != nil {
			return nil, fmt.Errorf("maze %q: %w", name, err)
		}
		return m, nil
	}

	id, err := s.Settings().Get(ActiveMazeKey)
	if err == nil {
		m, err := mazes.GetByID(id)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return s.EnsureDefaultMaze()
}

// Activate marks a stored maze as the one loaded at next startup.
func (s *Store) Activate(id string) error {
	if _, err := s.Mazes().GetByID(id); err != nil {
		return err
	}
	return s.Settings().Set(ActiveMazeKey, id)
}
