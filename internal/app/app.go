// Package app runs the pinch maze: it pumps camera frames through hand
// detection into a game session, renders the result and fires outcome hooks.
package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/pinchmaze/internal/capture"
	"github.com/ayusman/pinchmaze/internal/detector"
	"github.com/ayusman/pinchmaze/internal/game"
	"github.com/ayusman/pinchmaze/internal/gesture"
	"github.com/ayusman/pinchmaze/internal/plugin"
	"github.com/ayusman/pinchmaze/internal/render"
	"github.com/ayusman/pinchmaze/internal/store"
)

// ErrCaptureFailed is returned by Run when the camera cannot deliver frames.
var ErrCaptureFailed = errors.New("capture failed")

// Logger is the component logger used by the app.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// Config holds configuration options for the application. Camera, Detector
// and Logger are built from the remaining fields when nil.
type Config struct {
	Store  *store.Store // nil disables hooks
	Layout game.Layout

	CameraID       int
	Capture        capture.Options
	Camera         capture.Camera
	Detector       detector.Detector
	PinchThreshold float64
	MotionThresh   float64 // 0 disables motion gating

	PluginDir   string
	HookTimeout int // milliseconds

	Palette       render.Palette
	PublishFrames bool // keep a JPEG of the last rendered frame for streaming
	Logger        Logger
}

// App is the main application that orchestrates detection, game updates and
// hook execution.
type App struct {
	config      Config
	camera      capture.Camera
	motion      *capture.MotionDetector
	detector    detector.Detector
	interpreter *gesture.Interpreter
	renderer    *render.Renderer
	pluginMgr   *plugin.Manager
	pluginExec  *plugin.Executor
	log         Logger

	mu      sync.RWMutex
	session *game.Session
	enabled bool
	latest  []byte

	resets   chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	hooks    sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	session, err := game.NewSession(config.Layout)
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = nopLogger{}
	}
	if config.Capture == (capture.Options{}) {
		config.Capture = capture.DefaultOptions()
	}
	if config.Palette == (render.Palette{}) {
		config.Palette = render.DefaultPalette()
	}

	a := &App{
		config:      config,
		camera:      config.Camera,
		detector:    config.Detector,
		interpreter: gesture.NewInterpreter(config.PinchThreshold),
		renderer:    render.New(config.Palette, render.DefaultAlpha),
		pluginMgr:   plugin.NewManager(config.PluginDir),
		pluginExec:  plugin.NewExecutor(msDuration(config.HookTimeout)),
		log:         config.Logger,
		session:     session,
		enabled:     true,
		resets:      make(chan struct{}, 1),
		quit:        make(chan struct{}),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID, config.Capture)
	}
	if config.MotionThresh > 0 {
		a.motion = capture.NewMotionDetector(config.MotionThresh)
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			a.log.Info("Using MediaPipe hand detection")
		} else {
			a.log.Warning(fmt.Sprintf("MediaPipe not available (%v), no hands will be tracked", err))
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// SetEnabled pauses or resumes the game. While paused frames are still
// rendered but the session does not advance.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether the game is advancing.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion gate, or nil when gating is off.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
// Plugins with broken manifests are logged and left out.
func (a *App) DiscoverPlugins() error {
	if err := a.pluginMgr.Discover(); err != nil {
		return err
	}
	for dir, err := range a.pluginMgr.Skipped() {
		a.log.Warning(fmt.Sprintf("Skipping plugin %s: %v", dir, err))
	}
	return nil
}

// Snapshot returns the current session state.
func (a *App) Snapshot() game.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Snapshot()
}

// LatestFrame returns the last rendered frame as JPEG, or nil before the
// first frame or when publishing is off.
func (a *App) LatestFrame() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// Reset asks the frame pump to restart the session before the next frame.
// Repeated calls before that frame collapse into one.
func (a *App) Reset() {
	select {
	case a.resets <- struct{}{}:
	default:
	}
}

// Quit stops Run after the current frame.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Close releases the detector and motion gate and waits for running hooks.
func (a *App) Close() error {
	a.hooks.Wait()
	if a.motion != nil {
		a.motion.Close()
	}
	if d := a.Detector(); d != nil {
		return d.Close()
	}
	return nil
}
