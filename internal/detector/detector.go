package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks in
	// frame pixel coordinates. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. The game only
	// reads the first one.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleTimeoutSec shuts the detector process down after this many seconds
	// without a frame. Zero keeps it running.
	IdleTimeoutSec int

	// ScriptPath and PythonPath override the service script and interpreter
	// search. Empty values search scripts/ and venv/ near the working
	// directory, the executable and ~/.pinchmaze.
	ScriptPath string
	PythonPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.8,
		MinTrackingConf: 0.5,
		IdleTimeoutSec:  30,
	}
}
