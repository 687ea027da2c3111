// Package tray provides a macOS menu bar front end for the maze game.
package tray

import (
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/pinchmaze/internal/game"
)

// refreshInterval is how often the status line is redrawn.
const refreshInterval = 250 * time.Millisecond

// Controller is the running game as driven from the menu.
type Controller interface {
	Snapshot() game.Snapshot
	Reset()
	SetEnabled(enabled bool)
	IsEnabled() bool
	Quit()
}

// loop is the native menu bar event loop.
type loop interface {
	Run(onReady, onExit func())
	Quit()
}

type systrayLoop struct{}

func (systrayLoop) Run(onReady, onExit func()) { systray.Run(onReady, onExit) }
func (systrayLoop) Quit()                      { systray.Quit() }

// Tray represents the menu bar application.
type Tray struct {
	game        Controller
	onDashboard func()
	mu          sync.RWMutex
	done        chan struct{}
	stopOnce    sync.Once

	loop    loop
	setup   func()
	started bool
	jobCh   chan error

	menuStatus *systray.MenuItem
	menuToggle *systray.MenuItem
}

// New creates a Tray driving the given controller.
func New(c Controller) *Tray {
	t := &Tray{
		game: c,
		done: make(chan struct{}),
		loop: systrayLoop{},
	}
	t.setup = t.buildMenu
	return t
}

// OnDashboard sets the callback for the "Open Dashboard" item. The item is
// hidden when no callback is set.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// Run starts the menu bar application and, once the menu is up, runs job on
// its own goroutine. It must be called from the main goroutine. The menu
// closes when job returns; if the menu is closed first the controller is told
// to quit and Run waits for job. Run returns job's error.
func (t *Tray) Run(job func() error) error {
	t.jobCh = make(chan error, 1)
	t.loop.Run(func() { t.onReady(job) }, t.onExit)

	t.mu.RLock()
	started := t.started
	t.mu.RUnlock()
	if !started {
		return nil
	}
	t.game.Quit()
	return <-t.jobCh
}

func (t *Tray) onReady(job func() error) {
	t.setup()

	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	// The loop is running, so Quit now reaches it.
	go func() {
		t.jobCh <- job()
		t.loop.Quit()
	}()
}

func (t *Tray) buildMenu() {
	systray.SetTitle("PinchMaze")
	systray.SetTooltip("PinchMaze hand tracking maze")

	t.menuStatus = systray.AddMenuItem(statusTitle(t.game.Snapshot()), "Current game")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(toggleTitle(t.game.IsEnabled()), "Pause or resume hand tracking")
	menuReset := systray.AddMenuItem("Reset", "Move the player back to the start")

	t.mu.RLock()
	dashboard := t.onDashboard
	t.mu.RUnlock()
	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the web dashboard")
	if dashboard == nil {
		menuDashboard.Hide()
	}
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit PinchMaze")

	go t.refresh()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.game.Reset()
			case <-menuDashboard.ClickedCh:
				if dashboard != nil {
					dashboard()
				}
			case <-menuQuit.ClickedCh:
				t.game.Quit()
				t.loop.Quit()
				return
			case <-t.done:
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.stopOnce.Do(func() { close(t.done) })
}

// refresh keeps the status line in step with the game.
func (t *Tray) refresh() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			title := statusTitle(t.game.Snapshot())
			if title != last {
				t.menuStatus.SetTitle(title)
				last = title
			}
		}
	}
}

func (t *Tray) handleToggle() {
	enabled := !t.game.IsEnabled()
	t.game.SetEnabled(enabled)
	t.menuToggle.SetTitle(toggleTitle(enabled))
}

func statusTitle(snap game.Snapshot) string {
	switch snap.Status {
	case game.StatusWon:
		return "Won: " + snap.Maze
	case game.StatusLost:
		return "Lost: " + snap.Maze
	}
	if snap.Player.Grabbed {
		return "Dragging: " + snap.Maze
	}
	return "Playing: " + snap.Maze
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}
