package server

import (
	"sync"

	"github.com/ayusman/pinchmaze/internal/game"
)

// fakeGame is a GameController backed by a real session.
type fakeGame struct {
	mu      sync.Mutex
	session *game.Session
	enabled bool
	resets  int
	frame   []byte
}

func newFakeGame() *fakeGame {
	s, err := game.NewSession(game.DefaultLayout())
	if err != nil {
		panic(err)
	}
	return &fakeGame{session: s, enabled: true}
}

func (g *fakeGame) Snapshot() game.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.Snapshot()
}

func (g *fakeGame) Update(ev *game.GestureEvent) game.Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.Update(ev)
}

func (g *fakeGame) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resets++
	g.session.Reset()
}

func (g *fakeGame) Resets() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resets
}

func (g *fakeGame) SetEnabled(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = enabled
}

func (g *fakeGame) IsEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

func (g *fakeGame) SetFrame(b []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frame = b
}

func (g *fakeGame) LatestFrame() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame
}
