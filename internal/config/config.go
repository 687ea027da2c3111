// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Display selects how frames are presented.
type Display string

const (
	// DisplayWindow shows an OpenCV window and reads keys from it.
	DisplayWindow Display = "window"
	// DisplayTray runs a menu bar icon; frames are viewed over HTTP.
	DisplayTray Display = "tray"
	// DisplayHeadless runs without any local UI.
	DisplayHeadless Display = "headless"
)

// ErrInvalid is returned when an environment variable cannot be parsed.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the application's configuration values.
type Config struct {
	CameraID    int  // Capture device index
	Mirror      bool // Flip frames horizontally
	FrameWidth  int  // Requested capture width (pixels)
	FrameHeight int  // Requested capture height (pixels)
	FPS         int  // Frame pump rate

	HTTPAddr  string // Dashboard listen address; empty disables the server
	DataDir   string // Database and default plugin location
	WebDir    string // Static dashboard files
	PluginDir string // Hook plugin directory

	PinchThreshold  float64 // Fingertip distance below which a hand pinches (pixels)
	MotionThreshold float64 // Percent of changed pixels that wakes detection; 0 disables gating

	Display     Display
	Maze        string        // Maze name overriding the stored active maze
	HookTimeout time.Duration // Per-plugin run limit
}

// DBPath returns the SQLite database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "pinchmaze.db")
}

// Load reads the configuration. Variables already set in the environment win
// over values from the .env files; a missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	r := &reader{}
	cfg := Config{
		CameraID:    r.int("PINCHMAZE_CAMERA_ID", 0),
		Mirror:      r.bool("PINCHMAZE_MIRROR", true),
		FrameWidth:  r.int("PINCHMAZE_FRAME_WIDTH", 1280),
		FrameHeight: r.int("PINCHMAZE_FRAME_HEIGHT", 720),
		FPS:         r.int("PINCHMAZE_FPS", 30),

		HTTPAddr: getEnvWithDefault("PINCHMAZE_HTTP_ADDR", ":8080"),
		DataDir:  getEnvWithDefault("PINCHMAZE_DATA_DIR", filepath.Join(home, ".pinchmaze")),
		WebDir:   getEnvWithDefault("PINCHMAZE_WEB_DIR", "web"),

		PinchThreshold:  r.float("PINCHMAZE_PINCH_THRESHOLD", 30),
		MotionThreshold: r.float("PINCHMAZE_MOTION_THRESHOLD", 0),

		Display:     Display(strings.ToLower(getEnvWithDefault("PINCHMAZE_DISPLAY", string(DisplayWindow)))),
		Maze:        getEnvWithDefault("PINCHMAZE_MAZE", ""),
		HookTimeout: time.Duration(r.int("PINCHMAZE_HOOK_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
	cfg.PluginDir = getEnvWithDefault("PINCHMAZE_PLUGIN_DIR", filepath.Join(cfg.DataDir, "plugins"))

	if r.err != nil {
		return Config{}, r.err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.CameraID < 0:
		return fmt.Errorf("%w: camera id must not be negative", ErrInvalid)
	case c.FrameWidth <= 0 || c.FrameHeight <= 0:
		return fmt.Errorf("%w: frame size must be positive", ErrInvalid)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive", ErrInvalid)
	case c.PinchThreshold <= 0:
		return fmt.Errorf("%w: pinch threshold must be positive", ErrInvalid)
	case c.MotionThreshold < 0:
		return fmt.Errorf("%w: motion threshold must not be negative", ErrInvalid)
	case c.HookTimeout <= 0:
		return fmt.Errorf("%w: hook timeout must be positive", ErrInvalid)
	}

	switch c.Display {
	case DisplayWindow, DisplayTray, DisplayHeadless:
	default:
		return fmt.Errorf("%w: display %q (want window, tray or headless)", ErrInvalid, c.Display)
	}
	return nil
}

// getEnvWithDefault retrieves the value of an environment variable or returns
// fallback when it is unset.
func getEnvWithDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// reader parses typed variables and keeps the first failure.
type reader struct {
	err error
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, value, err)
	}
}

func (r *reader) int(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, value, err)
		return fallback
	}
	return n
}

func (r *reader) float(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		r.fail(key, value, err)
		return fallback
	}
	return f
}

func (r *reader) bool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, value, err)
		return fallback
	}
	return b
}
