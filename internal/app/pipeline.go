package app

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchmaze/internal/game"
	"github.com/ayusman/pinchmaze/internal/render"
	"github.com/ayusman/pinchmaze/internal/store"
)

// Keys handled by Run when a display is attached.
const (
	KeyQuit  render.Key = 'q'
	KeyReset render.Key = 'r'
)

// Display presents rendered frames and reports key presses.
type Display interface {
	Show(frame *gocv.Mat)
	PollKey() render.Key
	Close() error
}

// Run opens the camera and processes frames until ctx is cancelled, Quit is
// called or the quit key is pressed, all of which return nil. A camera that
// cannot be opened or read ends the loop with ErrCaptureFailed. display may
// be nil.
func (a *App) Run(ctx context.Context, display Display) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.log.Warning(fmt.Sprintf("Error closing camera: %v", err))
		}
	}()

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = a.config.Capture.FPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(max(fps, 1)))
	defer ticker.Stop()

	a.log.Info(fmt.Sprintf("Frame pump started at %d fps on maze %q", fps, a.Snapshot().Maze))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.quit:
			return nil
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCaptureFailed, err)
		}

		a.Step(frame)

		quit := false
		if display != nil {
			display.Show(frame)
			switch display.PollKey() {
			case KeyQuit:
				quit = true
			case KeyReset:
				a.Reset()
			}
		}
		frame.Close()

		if quit {
			a.log.Info("Quit requested from display")
			return nil
		}
	}
}

// Step processes one frame: it applies a pending reset, turns the detected
// hand into a gesture, advances the session and draws the result onto frame.
func (a *App) Step(frame *gocv.Mat) game.Status {
	select {
	case <-a.resets:
		a.resetSession()
	default:
	}

	var ev *game.GestureEvent
	if a.IsEnabled() {
		ev = a.detect(frame)
	}

	a.mu.Lock()
	prev := a.session.Status()
	status := prev
	if a.enabled {
		status = a.session.Update(ev)
	}
	snap := a.session.Snapshot()
	a.mu.Unlock()

	if status != prev {
		a.log.Info(fmt.Sprintf("Maze %q: %s", snap.Maze, status))
		a.fireHooks(store.HookEvent(status.String()), snap)
	}

	a.renderer.Draw(frame, snap)
	if a.config.PublishFrames {
		a.publish(frame)
	}

	return status
}

// detect returns the gesture for this frame, or nil when no usable hand is
// visible or the motion gate is closed.
func (a *App) detect(frame *gocv.Mat) *game.GestureEvent {
	if frame == nil || frame.Empty() {
		return nil
	}
	if a.motion != nil && !a.motion.Active(frame) {
		return nil
	}

	d := a.Detector()
	if d == nil {
		return nil
	}

	hands, err := d.Detect(frame)
	if err != nil {
		a.log.Warning(fmt.Sprintf("Error detecting hands: %v", err))
		return nil
	}

	ev, ok := a.interpreter.InterpretHands(hands)
	if !ok {
		return nil
	}
	return &ev
}

func (a *App) resetSession() {
	a.mu.Lock()
	a.session.Reset()
	snap := a.session.Snapshot()
	a.mu.Unlock()

	if a.motion != nil {
		a.motion.Reset()
	}

	a.log.Info(fmt.Sprintf("Maze %q: reset", snap.Maze))
	a.fireHooks(store.HookEventReset, snap)
}

func (a *App) publish(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		a.log.Warning(fmt.Sprintf("Error encoding frame: %v", err))
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.mu.Lock()
	a.latest = data
	a.mu.Unlock()
}
