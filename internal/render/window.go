package render

import (
	"gocv.io/x/gocv"
)

// Key is a keyboard code returned by a display. NoKey means nothing was
// pressed during the poll.
type Key int

// NoKey is reported when no key was pressed.
const NoKey Key = -1

// Window is an OpenCV HighGUI window. It must be used from the main
// goroutine on platforms whose GUI toolkit requires it.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays a frame.
func (w *Window) Show(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	w.win.IMShow(*frame)
}

// PollKey pumps window events for 1 ms and returns the key pressed, if any.
func (w *Window) PollKey() Key {
	k := w.win.WaitKey(1)
	if k < 0 {
		return NoKey
	}
	return Key(k & 0xFF)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
