package game

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinch(x, y float64) *GestureEvent {
	return &GestureEvent{Cursor: Point{X: x, Y: y}, Pinching: true}
}

func open(x, y float64) *GestureEvent {
	return &GestureEvent{Cursor: Point{X: x, Y: y}, Pinching: false}
}

func newDefaultSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(DefaultLayout())
	require.NoError(t, err)
	return s
}

func TestPlayer_ApplyGesture(t *testing.T) {
	start := Point{X: 640, Y: 360}

	t.Run("pinch inside radius grabs and moves", func(t *testing.T) {
		p := NewPlayer(start, 30).ApplyGesture(*pinch(650, 370))
		assert.True(t, p.Grabbed)
		assert.Equal(t, Point{X: 650, Y: 370}, p.Position)
	})

	t.Run("pinch outside radius does not grab", func(t *testing.T) {
		p := NewPlayer(start, 30).ApplyGesture(*pinch(700, 360))
		assert.False(t, p.Grabbed)
		assert.Equal(t, start, p.Position)
	})

	t.Run("pinch exactly on radius does not grab", func(t *testing.T) {
		p := NewPlayer(start, 30).ApplyGesture(*pinch(670, 360))
		assert.False(t, p.Grabbed)
	})

	t.Run("open hand over marker does nothing", func(t *testing.T) {
		p := NewPlayer(start, 30).ApplyGesture(*open(640, 360))
		assert.False(t, p.Grabbed)
		assert.Equal(t, start, p.Position)
	})

	t.Run("grab is retained while pinching outside radius", func(t *testing.T) {
		p := NewPlayer(start, 30).ApplyGesture(*pinch(640, 360))
		p = p.ApplyGesture(*pinch(900, 100))
		assert.True(t, p.Grabbed)
		assert.Equal(t, Point{X: 900, Y: 100}, p.Position)
	})

	t.Run("only release ungrabs", func(t *testing.T) {
		p := NewPlayer(start, 30).ApplyGesture(*pinch(640, 360))
		p = p.ApplyGesture(*open(645, 365))
		assert.False(t, p.Grabbed)
		assert.Equal(t, start, p.Position, "released marker stays where it was")
	})

	t.Run("repeated identical pinch does not drift", func(t *testing.T) {
		p := NewPlayer(start, 30)
		for i := 0; i < 50; i++ {
			p = p.ApplyGesture(*pinch(652, 371))
		}
		assert.True(t, p.Grabbed)
		assert.Equal(t, Point{X: 652, Y: 371}, p.Position)
	})

	t.Run("apply returns a new value", func(t *testing.T) {
		p := NewPlayer(start, 30)
		_ = p.ApplyGesture(*pinch(640, 360))
		assert.False(t, p.Grabbed)
		assert.Equal(t, start, p.Position)
	})

	t.Run("reset restores start", func(t *testing.T) {
		p := NewPlayer(start, 30).ApplyGesture(*pinch(640, 360)).ApplyGesture(*pinch(100, 100))
		p = p.Reset()
		assert.False(t, p.Grabbed)
		assert.Equal(t, start, p.Position)
	})
}

func TestSession_DragIntoWallLoses(t *testing.T) {
	s := newDefaultSession(t)

	assert.Equal(t, StatusPlaying, s.Update(pinch(640, 360)))
	require.True(t, s.Player().Grabbed)

	assert.Equal(t, StatusLost, s.Update(pinch(640, 640)))
	assert.Equal(t, Point{X: 640, Y: 640}, s.Player().Position)
}

func TestSession_DragToGoalWins(t *testing.T) {
	s := newDefaultSession(t)

	s.Update(pinch(640, 360))
	assert.Equal(t, StatusWon, s.Update(pinch(1100, 100)))
}

func TestSession_NoGestureKeepsState(t *testing.T) {
	s := newDefaultSession(t)

	s.Update(pinch(640, 360))
	s.Update(pinch(660, 330))
	before := s.Player()

	assert.Equal(t, StatusPlaying, s.Update(nil))
	assert.Equal(t, before, s.Player(), "no hand keeps grab and position")

	s.Update(pinch(700, 300))
	assert.Equal(t, Point{X: 700, Y: 300}, s.Player().Position, "grab survives frames without a hand")
}

func TestSession_TerminalFreeze(t *testing.T) {
	events := []*GestureEvent{
		pinch(640, 360), open(640, 360), pinch(1100, 100), nil, pinch(0, 0), open(900, 700),
	}

	for _, terminal := range []Status{StatusLost, StatusWon} {
		t.Run(terminal.String(), func(t *testing.T) {
			s := newDefaultSession(t)
			s.Update(pinch(640, 360))
			if terminal == StatusLost {
				s.Update(pinch(640, 640))
			} else {
				s.Update(pinch(1100, 100))
			}
			require.Equal(t, terminal, s.Status())
			frozen := s.Player()

			for _, ev := range events {
				assert.Equal(t, terminal, s.Update(ev))
				assert.Equal(t, frozen, s.Player())
			}
		})
	}
}

func TestSession_Reset(t *testing.T) {
	s := newDefaultSession(t)
	layout := s.Layout()

	s.Update(pinch(640, 360))
	s.Update(pinch(640, 640))
	require.Equal(t, StatusLost, s.Status())

	s.Reset()

	assert.Equal(t, StatusPlaying, s.Status())
	assert.Equal(t, layout.Start, s.Player().Position)
	assert.False(t, s.Player().Grabbed)
	assert.Equal(t, layout.Obstacles, s.Obstacles(), "reset never alters the maze")
	assert.Equal(t, layout.Goal, s.Goal())

	// Play resumes normally after reset.
	s.Update(pinch(640, 360))
	assert.Equal(t, StatusWon, s.Update(pinch(1100, 100)))
}

func TestSession_ObstaclesAreCopies(t *testing.T) {
	s := newDefaultSession(t)

	obs := s.Obstacles()
	obs[0] = NewObstacle(Point{X: 640, Y: 360}, 500, 500)

	assert.Equal(t, StatusPlaying, s.Update(nil))
	assert.Len(t, s.Snapshot().Obstacles, 12)
}

func TestSession_LayoutIsCopiedOnCreate(t *testing.T) {
	layout := DefaultLayout()
	s, err := NewSession(layout)
	require.NoError(t, err)

	layout.Obstacles[0] = NewObstacle(Point{X: 640, Y: 360}, 500, 500)
	assert.Equal(t, StatusPlaying, s.Update(nil))
}

func TestNewSession_InvalidLayout(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"zero player radius", func(l *Layout) { l.PlayerRadius = 0 }},
		{"negative goal radius", func(l *Layout) { l.Goal.Radius = -1 }},
		{"nan start", func(l *Layout) { l.Start.X = math.NaN() }},
		{"flat obstacle", func(l *Layout) { l.Obstacles[3] = NewObstacle(Point{X: 1, Y: 1}, 0, 10) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			_, err := NewSession(l)
			assert.True(t, errors.Is(err, ErrInvalidLayout), "got %v", err)
		})
	}
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()

	require.NoError(t, l.Validate())
	assert.Len(t, l.Obstacles, 12)
	assert.Equal(t, Point{X: 640, Y: 360}, l.Start)
	assert.Equal(t, 30.0, l.PlayerRadius)
	assert.Equal(t, Goal{Center: Point{X: 1100, Y: 100}, Radius: 40}, l.Goal)
	for _, o := range l.Obstacles {
		assert.Equal(t, 50.0, o.HalfWidth())
		assert.Equal(t, 50.0, o.HalfHeight())
	}
}
