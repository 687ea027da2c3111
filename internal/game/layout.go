package game

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is returned when a layout cannot host a session.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is the fixed geometry of one maze.
type Layout struct {
	Name         string     `json:"name"`
	Obstacles    []Obstacle `json:"obstacles"`
	Goal         Goal       `json:"goal"`
	Start        Point      `json:"start"`
	PlayerRadius float64    `json:"player_radius"`
}

// DefaultLayoutName is the name of the built-in maze.
const DefaultLayoutName = "classic"

// Built-in maze parameters.
const (
	DefaultPlayerRadius = 30.0
	DefaultGoalRadius   = 40.0
)

var defaultObstacleCenters = []Point{
	{200, 200}, {400, 200}, {600, 200}, {800, 200}, {1000, 200},
	{200, 400}, {400, 400}, {800, 400}, {1000, 400},
	{200, 600}, {600, 600}, {1000, 600},
}

// DefaultLayout returns the built-in 1280x720 maze.
func DefaultLayout() Layout {
	obstacles := make([]Obstacle, len(defaultObstacleCenters))
	for i, c := range defaultObstacleCenters {
		obstacles[i] = NewObstacle(c, DefaultObstacleWidth, DefaultObstacleHeight)
	}
	return Layout{
		Name:         DefaultLayoutName,
		Obstacles:    obstacles,
		Goal:         Goal{Center: Point{X: 1100, Y: 100}, Radius: DefaultGoalRadius},
		Start:        Point{X: 640, Y: 360},
		PlayerRadius: DefaultPlayerRadius,
	}
}

// Validate checks that the layout is playable.
func (l Layout) Validate() error {
	if !(l.PlayerRadius > 0) {
		return fmt.Errorf("%w: player radius must be positive", ErrInvalidLayout)
	}
	if !(l.Goal.Radius > 0) {
		return fmt.Errorf("%w: goal radius must be positive", ErrInvalidLayout)
	}
	if !l.Start.finite() || !l.Goal.Center.finite() {
		return fmt.Errorf("%w: start and goal must be finite", ErrInvalidLayout)
	}
	for i, o := range l.Obstacles {
		if !o.center.finite() || !(o.halfWidth > 0) || !(o.halfHeight > 0) {
			return fmt.Errorf("%w: obstacle %d has degenerate geometry", ErrInvalidLayout, i)
		}
	}
	return nil
}

func (l Layout) clone() Layout {
	l.Obstacles = append([]Obstacle(nil), l.Obstacles...)
	return l
}
