package store

import (
	"errors"
	"testing"

	"github.com/ayusman/pinchmaze/internal/game"
)

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	settings := s.Settings()

	if _, err := settings.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	if err := settings.Set("k", "one"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := settings.Set("k", "two"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if v, err := settings.Get("k"); err != nil || v != "two" {
		t.Errorf("Get() = %q, %v; want two", v, err)
	}

	if err := settings.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := settings.Delete("k"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestEnsureDefaultMaze(t *testing.T) {
	s := newTestStore(t)

	m, err := s.EnsureDefaultMaze()
	if err != nil {
		t.Fatalf("EnsureDefaultMaze() error = %v", err)
	}
	if m.Name() != game.DefaultLayoutName {
		t.Errorf("Name() = %q, want %q", m.Name(), game.DefaultLayoutName)
	}
	if len(m.Layout.Obstacles) != 12 {
		t.Errorf("obstacles = %d, want 12", len(m.Layout.Obstacles))
	}

	again, err := s.EnsureDefaultMaze()
	if err != nil {
		t.Fatalf("second EnsureDefaultMaze() error = %v", err)
	}
	if again.ID != m.ID {
		t.Error("EnsureDefaultMaze() should not create a second maze")
	}

	active, err := s.Settings().Get(ActiveMazeKey)
	if err != nil || active != m.ID {
		t.Errorf("active maze = %q, %v; want %q", active, err, m.ID)
	}
}

func TestEnsureDefaultMaze_KeepsActiveSetting(t *testing.T) {
	s := newTestStore(t)

	other := &Maze{Layout: smallLayout("tiny")}
	if err := s.Mazes().Create(other); err != nil {
		t.Fatal(err)
	}
	if err := s.Activate(other.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if _, err := s.EnsureDefaultMaze(); err != nil {
		t.Fatalf("EnsureDefaultMaze() error = %v", err)
	}

	active, _ := s.Settings().Get(ActiveMazeKey)
	if active != other.ID {
		t.Errorf("active maze = %q, want %q", active, other.ID)
	}
}

func TestActiveMaze(t *testing.T) {
	s := newTestStore(t)

	def, err := s.EnsureDefaultMaze()
	if err != nil {
		t.Fatal(err)
	}
	tiny := &Maze{Layout: smallLayout("tiny")}
	if err := s.Mazes().Create(tiny); err != nil {
		t.Fatal(err)
	}

	t.Run("setting", func(t *testing.T) {
		m, err := s.ActiveMaze("")
		if err != nil || m.ID != def.ID {
			t.Errorf("ActiveMaze() = %v, %v; want default", m, err)
		}
	})

	t.Run("name override", func(t *testing.T) {
		m, err := s.ActiveMaze("tiny")
		if err != nil || m.ID != tiny.ID {
			t.Errorf("ActiveMaze(tiny) = %v, %v", m, err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, err := s.ActiveMaze("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("ActiveMaze(nope) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("activated", func(t *testing.T) {
		if err := s.Activate(tiny.ID); err != nil {
			t.Fatal(err)
		}
		m, err := s.ActiveMaze("")
		if err != nil || m.ID != tiny.ID {
			t.Errorf("ActiveMaze() = %v, %v; want tiny", m, err)
		}
	})

	t.Run("dangling setting falls back", func(t *testing.T) {
		if err := s.Mazes().Delete(tiny.ID); err != nil {
			t.Fatal(err)
		}
		m, err := s.ActiveMaze("")
		if err != nil || m.Name() != game.DefaultLayoutName {
			t.Errorf("ActiveMaze() = %v, %v; want default", m, err)
		}
	})
}

func TestActivate_Missing(t *testing.T) {
	s := newTestStore(t)

	if err := s.Activate("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Activate() error = %v, want ErrNotFound", err)
	}
}
