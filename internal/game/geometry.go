// Package game implements the maze control loop: obstacles, the draggable
// player marker, and the session state machine that decides wins and losses.
package game

import (
	"encoding/json"
	"math"
)

// Point is a 2D position in frame pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Default obstacle dimensions.
const (
	DefaultObstacleWidth  = 100.0
	DefaultObstacleHeight = 100.0
)

// Obstacle is an axis-aligned rectangular wall. Its geometry is fixed at
// construction.
type Obstacle struct {
	center     Point
	halfWidth  float64
	halfHeight float64
}

// NewObstacle creates an obstacle centered at center with the given full size.
func NewObstacle(center Point, width, height float64) Obstacle {
	return Obstacle{
		center:     center,
		halfWidth:  width / 2,
		halfHeight: height / 2,
	}
}

// Center returns the obstacle center.
func (o Obstacle) Center() Point { return o.center }

// HalfWidth returns half of the obstacle width.
func (o Obstacle) HalfWidth() float64 { return o.halfWidth }

// HalfHeight returns half of the obstacle height.
func (o Obstacle) HalfHeight() float64 { return o.halfHeight }

// Bounds returns the top-left and bottom-right corners.
func (o Obstacle) Bounds() (min, max Point) {
	return Point{X: o.center.X - o.halfWidth, Y: o.center.Y - o.halfHeight},
		Point{X: o.center.X + o.halfWidth, Y: o.center.Y + o.halfHeight}
}

// IntersectsCircle reports whether a circle overlaps the rectangle.
//
// The circle center is clamped into the rectangle to find the closest point;
// the shapes collide iff that point lies strictly closer than radius. A circle
// touching an edge or corner exactly does not collide.
func (o Obstacle) IntersectsCircle(center Point, radius float64) bool {
	lo, hi := o.Bounds()
	closest := Point{
		X: math.Max(lo.X, math.Min(center.X, hi.X)),
		Y: math.Max(lo.Y, math.Min(center.Y, hi.Y)),
	}
	return Distance(closest, center) < radius
}

type obstacleJSON struct {
	Center     Point   `json:"center"`
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
}

// MarshalJSON implements json.Marshaler.
func (o Obstacle) MarshalJSON() ([]byte, error) {
	return json.Marshal(obstacleJSON{Center: o.center, HalfWidth: o.halfWidth, HalfHeight: o.halfHeight})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Obstacle) UnmarshalJSON(data []byte) error {
	var v obstacleJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Obstacle{center: v.Center, halfWidth: v.HalfWidth, halfHeight: v.HalfHeight}
	return nil
}

// Goal is the circular target region.
type Goal struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Reached reports whether a circle at center with radius overlaps the goal.
func (g Goal) Reached(center Point, radius float64) bool {
	return Distance(center, g.Center) < radius+g.Radius
}
