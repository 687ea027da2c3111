// Package detector provides hand detection interfaces and landmark types.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a landmark position. X and Y are in frame pixels once
// scaled; Z is relative depth and is left untouched by scaling.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the landmarks detected for one hand, in MediaPipe
// index order. A complete detection has NumLandmarks points; a partial one
// may carry fewer.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Complete reports whether all landmarks are present.
func (h *HandLandmarks) Complete() bool {
	return h != nil && len(h.Points) >= NumLandmarks
}

// Scale converts normalized [0,1] landmark coordinates to pixel coordinates
// for a frame of the given size. Returns a new HandLandmarks instance.
func (h *HandLandmarks) Scale(width, height float64) *HandLandmarks {
	if h == nil {
		return nil
	}

	scaled := &HandLandmarks{
		Points:     make([]Point3D, len(h.Points)),
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		scaled.Points[i] = Point3D{X: p.X * width, Y: p.Y * height, Z: p.Z}
	}
	return scaled
}
