// Package gesture turns hand landmarks into pinch/release input for the game.
package gesture

import (
	"errors"
	"math"

	"github.com/ayusman/pinchmaze/internal/detector"
	"github.com/ayusman/pinchmaze/internal/game"
)

// DefaultPinchThreshold is the fingertip distance, in frame pixels, below
// which index and middle fingers count as pinched.
const DefaultPinchThreshold = 30.0

// MinLandmarks is the number of leading landmarks needed to read both
// fingertips (indices 0 through MiddleTip).
const MinLandmarks = detector.MiddleTip + 1

// Reasons a frame yields no gesture.
var (
	ErrNoHand                = errors.New("no hand detected")
	ErrInsufficientLandmarks = errors.New("insufficient landmarks")
)

// Interpreter maps landmarks to a game.GestureEvent. It holds no per-frame
// state; the same input always produces the same output.
type Interpreter struct {
	PinchThreshold float64
}

// NewInterpreter returns an Interpreter. A non-positive threshold selects
// DefaultPinchThreshold.
func NewInterpreter(threshold float64) *Interpreter {
	if threshold <= 0 {
		threshold = DefaultPinchThreshold
	}
	return &Interpreter{PinchThreshold: threshold}
}

// Interpret reads one hand's landmarks. It reports false when the index or
// middle fingertip is missing.
func (in *Interpreter) Interpret(points []detector.Point3D) (game.GestureEvent, bool) {
	if len(points) < MinLandmarks {
		return game.GestureEvent{}, false
	}

	tip := points[detector.IndexTip]
	return game.GestureEvent{
		Cursor:   game.Point{X: tip.X, Y: tip.Y},
		Pinching: PinchDistance(points) < in.PinchThreshold,
	}, true
}

// InterpretHands interprets the first detected hand.
func (in *Interpreter) InterpretHands(hands []detector.HandLandmarks) (game.GestureEvent, bool) {
	if len(hands) == 0 {
		return game.GestureEvent{}, false
	}
	return in.Interpret(hands[0].Points)
}

// Classify explains why InterpretHands would report no gesture. It returns
// nil when a gesture is available.
func Classify(hands []detector.HandLandmarks) error {
	switch {
	case len(hands) == 0:
		return ErrNoHand
	case len(hands[0].Points) < MinLandmarks:
		return ErrInsufficientLandmarks
	}
	return nil
}

// PinchDistance returns the 2D distance between the index and middle
// fingertips, or +Inf when either is missing.
func PinchDistance(points []detector.Point3D) float64 {
	if len(points) < MinLandmarks {
		return math.Inf(1)
	}
	a := points[detector.IndexTip]
	b := points[detector.MiddleTip]
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
