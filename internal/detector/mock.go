package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect once the queue is empty.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-frame results. Each Detect call consumes one entry;
// a nil entry means no hand in that frame.
func (m *MockDetector) Enqueue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the pre-configured hands, or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// handAt builds a right hand in pixel coordinates with the index fingertip at
// (x, y) and the middle fingertip offset by (dx, dy). The remaining joints
// trail down toward the wrist so the pose looks plausible.
func handAt(x, y, dx, dy float64) HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}

	wrist := Point3D{X: x + 20, Y: y + 180}
	h.Points[Wrist] = wrist

	// Knuckle bases fan out above the wrist; each finger rises toward its tip.
	bases := map[int]float64{ThumbCMC: 50, IndexMCP: 10, MiddleMCP: -10, RingMCP: -30, PinkyMCP: -50}
	for base, offset := range bases {
		for j := 0; j < 4; j++ {
			h.Points[base+j] = Point3D{
				X: wrist.X - offset*0.5 - float64(j)*2,
				Y: wrist.Y - 60 - float64(j)*25,
			}
		}
	}

	h.Points[IndexTip] = Point3D{X: x, Y: y}
	h.Points[MiddleTip] = Point3D{X: x + dx, Y: y + dy}
	return h
}

// PinchLandmarks returns a hand whose index and middle fingertips touch at
// (x, y), 10 pixels apart.
func PinchLandmarks(x, y float64) HandLandmarks {
	return handAt(x, y, 6, 8)
}

// OpenHandLandmarks returns a hand pointing at (x, y) with index and middle
// fingertips spread 80 pixels apart.
func OpenHandLandmarks(x, y float64) HandLandmarks {
	return handAt(x, y, -80, 0)
}

// TruncatedLandmarks returns the first n landmarks of a pinching hand at
// (x, y), simulating a partial detection.
func TruncatedLandmarks(x, y float64, n int) HandLandmarks {
	h := PinchLandmarks(x, y)
	if n < len(h.Points) {
		h.Points = h.Points[:n]
	}
	return h
}
