// Package testdata holds recorded maze layouts and hand tracks for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/ayusman/pinchmaze/internal/detector"
	"github.com/ayusman/pinchmaze/internal/game"
)

//go:embed mazes/*.json tracks/*.json
var fixturesFS embed.FS

// Step is one frame of a track. A nil step means no hand was visible.
type Step struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Pinch bool    `json:"pinch"`
}

// Track is a scripted hand path through a maze with its expected outcome.
type Track struct {
	Name   string  `json:"-"`
	Maze   string  `json:"maze"`
	Expect string  `json:"expect"`
	Frames []*Step `json:"frames"`
}

// Hands expands the track into per-frame detector results.
func (t *Track) Hands() [][]detector.HandLandmarks {
	out := make([][]detector.HandLandmarks, len(t.Frames))
	for i, s := range t.Frames {
		switch {
		case s == nil:
			out[i] = nil
		case s.Pinch:
			out[i] = []detector.HandLandmarks{detector.PinchLandmarks(s.X, s.Y)}
		default:
			out[i] = []detector.HandLandmarks{detector.OpenHandLandmarks(s.X, s.Y)}
		}
	}
	return out
}

// LoadTrack loads a track by name, without the .json suffix.
func LoadTrack(name string) (*Track, error) {
	data, err := fixturesFS.ReadFile("tracks/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load track %s: %w", name, err)
	}

	t := &Track{Name: name}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode track %s: %w", name, err)
	}
	return t, nil
}

// Tracks returns the names of all recorded tracks.
func Tracks() ([]string, error) {
	entries, err := fixturesFS.ReadDir("tracks")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	return names, nil
}

// MazeJSON returns the raw layout document for a recorded maze.
func MazeJSON(name string) ([]byte, error) {
	data, err := fixturesFS.ReadFile("mazes/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load maze %s: %w", name, err)
	}
	return data, nil
}

// LoadLayout returns a recorded maze. The built-in "classic" maze comes from
// game.DefaultLayout.
func LoadLayout(name string) (game.Layout, error) {
	if name == game.DefaultLayoutName {
		return game.DefaultLayout(), nil
	}

	data, err := MazeJSON(name)
	if err != nil {
		return game.Layout{}, err
	}

	var l game.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return game.Layout{}, fmt.Errorf("decode maze %s: %w", name, err)
	}
	return l, l.Validate()
}
