package tray

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/pinchmaze/internal/game"
)

func TestStatusTitle(t *testing.T) {
	tests := []struct {
		name string
		snap game.Snapshot
		want string
	}{
		{"playing", game.Snapshot{Maze: "classic", Status: game.StatusPlaying}, "Playing: classic"},
		{"dragging", game.Snapshot{Maze: "classic", Player: game.Player{Grabbed: true}}, "Dragging: classic"},
		{"won", game.Snapshot{Maze: "corridor", Status: game.StatusWon}, "Won: corridor"},
		{"lost", game.Snapshot{Maze: "corridor", Status: game.StatusLost, Player: game.Player{Grabbed: true}}, "Lost: corridor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusTitle(tt.snap); got != tt.want {
				t.Errorf("statusTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToggleTitle(t *testing.T) {
	if got := toggleTitle(true); got != "● Tracking" {
		t.Errorf("toggleTitle(true) = %q", got)
	}
	if got := toggleTitle(false); got != "○ Paused" {
		t.Errorf("toggleTitle(false) = %q", got)
	}
}

// fakeLoop stands in for the native event loop. Run calls onReady unless
// skipReady is set, then blocks until Quit.
type fakeLoop struct {
	mu        sync.Mutex
	running   bool
	earlyQuit bool
	skipReady bool
	quit      chan struct{}
	quitOnce  sync.Once
}

func newFakeLoop() *fakeLoop {
	return &fakeLoop{quit: make(chan struct{})}
}

func (l *fakeLoop) Run(onReady, onExit func()) {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()

	if !l.skipReady {
		onReady()
	}
	<-l.quit
	onExit()
}

func (l *fakeLoop) Quit() {
	l.mu.Lock()
	if !l.running {
		l.earlyQuit = true
	}
	l.mu.Unlock()
	l.quitOnce.Do(func() { close(l.quit) })
}

type fakeController struct {
	quit     chan struct{}
	quitOnce sync.Once
}

func newFakeController() *fakeController {
	return &fakeController{quit: make(chan struct{})}
}

func (c *fakeController) Snapshot() game.Snapshot { return game.Snapshot{} }
func (c *fakeController) Reset()                  {}
func (c *fakeController) SetEnabled(bool)         {}
func (c *fakeController) IsEnabled() bool         { return true }
func (c *fakeController) Quit()                   { c.quitOnce.Do(func() { close(c.quit) }) }

func newTestTray(c Controller, l *fakeLoop) *Tray {
	t := New(c)
	t.loop = l
	t.setup = func() {}
	return t
}

func runTray(t *testing.T, tr *Tray, job func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- tr.Run(job) }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return")
		return nil
	}
}

func TestTray_Run_JobFailsBeforeMenuUsed(t *testing.T) {
	errCamera := errors.New("camera unavailable")
	loop := newFakeLoop()
	tr := newTestTray(newFakeController(), loop)

	err := runTray(t, tr, func() error { return errCamera })
	if !errors.Is(err, errCamera) {
		t.Errorf("Run() error = %v, want %v", err, errCamera)
	}
	if loop.earlyQuit {
		t.Error("loop was quit before it started running")
	}
}

func TestTray_Run_MenuQuitStopsJob(t *testing.T) {
	c := newFakeController()
	loop := newFakeLoop()
	tr := newTestTray(c, loop)

	jobStarted := make(chan struct{})
	go func() {
		<-jobStarted
		loop.Quit()
	}()

	err := runTray(t, tr, func() error {
		close(jobStarted)
		<-c.quit
		return nil
	})
	if err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestTray_Run_LoopExitsBeforeReady(t *testing.T) {
	loop := newFakeLoop()
	loop.skipReady = true
	tr := newTestTray(newFakeController(), loop)

	ran := false
	go loop.Quit()
	if err := runTray(t, tr, func() error { ran = true; return nil }); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if ran {
		t.Error("job ran without the menu being ready")
	}
}
