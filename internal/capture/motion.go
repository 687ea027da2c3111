package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
	// AnalysisWidth is the width frames are downscaled to before differencing.
	AnalysisWidth = 320
	// DefaultHoldFrames keeps the gate open for this many frames after the
	// last detected motion, so a hand that pauses mid-drag is still tracked.
	DefaultHoldFrames = 15
)

// MotionDetector detects motion between consecutive video frames
// using frame differencing with Gaussian blur for noise reduction.
// It doubles as a gate in front of hand detection: Active stays true for a
// number of frames after motion stops.
type MotionDetector struct {
	threshold   float64
	holdFrames  int
	quietFrames int
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a new MotionDetector with the given threshold.
// The threshold is the percentage of pixels that must change to detect motion.
// For example, a threshold of 1.0 means 1% of pixels must change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold:   threshold,
		holdFrames:  DefaultHoldFrames,
		quietFrames: DefaultHoldFrames + 1,
		prevGray:    gocv.NewMat(),
	}
}

// Detect analyzes a frame for motion compared to the previous frame.
// Returns whether motion was detected and the percentage of pixels that changed.
//
// Algorithm:
// 1. Downscale to AnalysisWidth and convert to grayscale
// 2. Apply Gaussian blur (21x21) to reduce noise
// 3. If first frame, store as baseline and return false
// 4. Threshold the absolute difference with the previous frame (threshold=25)
// 5. Count non-zero pixels / total pixels = changePercent
// 6. Return changePercent > threshold
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detect(frame)
}

// Active feeds a frame and reports whether the gate is open: motion was seen
// in this frame or within the last hold frames. The very first frame opens
// the gate so tracking starts immediately.
func (m *MotionDetector) Active(frame *gocv.Mat) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := !m.initialized
	moved, _ := m.detect(frame)
	if moved || first {
		m.quietFrames = 0
		return true
	}

	m.quietFrames++
	return m.quietFrames <= m.holdFrames
}

func (m *MotionDetector) detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	small := gocv.NewMat()
	defer small.Close()
	if frame.Cols() > AnalysisWidth {
		height := frame.Rows() * AnalysisWidth / frame.Cols()
		gocv.Resize(*frame, &small, image.Point{X: AnalysisWidth, Y: height}, 0, 0, gocv.InterpolationArea)
	} else {
		frame.CopyTo(&small)
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&m.prevGray)

	return changePercent > m.threshold, changePercent
}

// Reset clears the motion detector state, allowing it to be reused
// with a new baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

func (m *MotionDetector) clear() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
	m.quietFrames = m.holdFrames + 1
}

// SetThreshold sets the motion detection threshold.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}

// SetHoldFrames sets how long the gate stays open after motion stops.
// Negative values are ignored.
func (m *MotionDetector) SetHoldFrames(frames int) {
	if frames < 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.holdFrames = frames
}
