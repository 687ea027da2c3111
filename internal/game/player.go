package game

// GestureEvent is the per-frame output of gesture interpretation.
type GestureEvent struct {
	Cursor   Point `json:"cursor"`
	Pinching bool  `json:"pinching"`
}

// Player is the draggable marker. Its radius doubles as the grab radius.
type Player struct {
	Start    Point   `json:"start"`
	Position Point   `json:"position"`
	Radius   float64 `json:"radius"`
	Grabbed  bool    `json:"grabbed"`
}

// NewPlayer returns a released player resting at start.
func NewPlayer(start Point, radius float64) Player {
	return Player{
		Start:    start,
		Position: start,
		Radius:   radius,
	}
}

// ApplyGesture returns the player after one frame of gesture input.
//
// A pinch starting inside the marker grabs it. Once grabbed only releasing the
// pinch lets go; the cursor may leave the radius while still pinching.
func (p Player) ApplyGesture(ev GestureEvent) Player {
	switch {
	case !p.Grabbed && ev.Pinching && Distance(ev.Cursor, p.Position) < p.Radius:
		p.Grabbed = true
	case !ev.Pinching:
		p.Grabbed = false
	}

	if p.Grabbed {
		p.Position = ev.Cursor
	}
	return p
}

// Reset returns the player back at its start position, released.
func (p Player) Reset() Player {
	p.Position = p.Start
	p.Grabbed = false
	return p
}
