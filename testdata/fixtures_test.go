package testdata

import (
	"testing"

	"github.com/ayusman/pinchmaze/internal/game"
	"github.com/ayusman/pinchmaze/internal/gesture"
)

// replay runs a track through the interpreter and a fresh session.
func replay(t *testing.T, tr *Track) game.Status {
	t.Helper()

	layout, err := LoadLayout(tr.Maze)
	if err != nil {
		t.Fatalf("LoadLayout(%s) error = %v", tr.Maze, err)
	}
	session, err := game.NewSession(layout)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	in := gesture.NewInterpreter(0)
	for _, hands := range tr.Hands() {
		var ev *game.GestureEvent
		if e, ok := in.InterpretHands(hands); ok {
			ev = &e
		}
		session.Update(ev)
	}
	return session.Status()
}

func TestTracks(t *testing.T) {
	names, err := Tracks()
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	if len(names) < 4 {
		t.Fatalf("expected at least 4 tracks, got %v", names)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tr, err := LoadTrack(name)
			if err != nil {
				t.Fatalf("LoadTrack() error = %v", err)
			}
			if got := replay(t, tr).String(); got != tr.Expect {
				t.Errorf("final status = %s, want %s", got, tr.Expect)
			}
		})
	}
}

func TestTrack_Hands(t *testing.T) {
	tr, err := LoadTrack("classic_wall")
	if err != nil {
		t.Fatal(err)
	}

	hands := tr.Hands()
	if len(hands) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(hands))
	}
	if hands[1] != nil {
		t.Error("null frame should have no hands")
	}
	if len(hands[0]) != 1 || !hands[0][0].Complete() {
		t.Error("pinch frame should carry one complete hand")
	}
}

func TestLoadLayout(t *testing.T) {
	l, err := LoadLayout("corridor")
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}
	if len(l.Obstacles) != 2 || l.Goal.Center != (game.Point{X: 1180, Y: 360}) {
		t.Errorf("unexpected layout %+v", l)
	}

	if _, err := LoadLayout("missing"); err == nil {
		t.Error("expected error for missing maze")
	}
	if _, err := LoadTrack("missing"); err == nil {
		t.Error("expected error for missing track")
	}
}
