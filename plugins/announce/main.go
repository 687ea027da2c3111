// Package main provides an outcome announcer plugin for macOS.
// It speaks, notifies or plays a sound when a maze is won, lost or reset.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Maze   string          `json:"maze"`
	Status string          `json:"status"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Options is the per-hook configuration stored with the hook.
type Options struct {
	Voice   string `json:"voice"`   // say -v
	Message string `json:"message"` // {maze} and {event} are substituted
	Sound   string `json:"sound"`   // name under /System/Library/Sounds
}

// defaultMessages are spoken when a hook has no message of its own.
var defaultMessages = map[string]string{
	"won":   "You solved {maze}!",
	"lost":  "Ouch, you hit a wall in {maze}.",
	"reset": "{maze} restarted.",
}

// defaultSounds pair each event with a stock system sound.
var defaultSounds = map[string]string{
	"won":   "Glass",
	"lost":  "Basso",
	"reset": "Pop",
}

// actionHandler defines a function type for handling specific actions.
type actionHandler func(req Request, opts Options) error

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"say":    say,
	"notify": notify,
	"sound":  sound,
}

// runner executes a command; replaced in tests.
var runner = func(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func main() {
	json.NewEncoder(os.Stdout).Encode(handle(os.Stdin))
}

// handle decodes one request and runs the matching action.
func handle(r io.Reader) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return errorResponse(fmt.Sprintf("failed to decode request: %v", err))
	}

	var opts Options
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &opts); err != nil {
			return errorResponse(fmt.Sprintf("invalid config: %v", err))
		}
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		return errorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}

	if err := handler(req, opts); err != nil {
		return errorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
	}

	data, _ := json.Marshal(map[string]string{"message": message(req, opts)})
	return Response{Success: true, Data: data}
}

func errorResponse(msg string) Response {
	return Response{Success: false, Error: msg}
}

// message renders the text for an event.
func message(req Request, opts Options) string {
	tmpl := opts.Message
	if tmpl == "" {
		tmpl = defaultMessages[req.Event]
	}
	if tmpl == "" {
		tmpl = "{maze}: {event}"
	}
	return strings.NewReplacer("{maze}", req.Maze, "{event}", req.Event).Replace(tmpl)
}

// say speaks the message with the macOS speech synthesizer.
func say(req Request, opts Options) error {
	args := []string{}
	if opts.Voice != "" {
		args = append(args, "-v", opts.Voice)
	}
	return runner("say", append(args, message(req, opts))...)
}

// notify posts a Notification Center banner.
func notify(req Request, opts Options) error {
	script := fmt.Sprintf("display notification %s with title %s",
		appleScriptString(message(req, opts)), appleScriptString("PinchMaze"))
	return runner("osascript", "-e", script)
}

// sound plays a system sound for the event.
func sound(req Request, opts Options) error {
	name := opts.Sound
	if name == "" {
		name = defaultSounds[req.Event]
	}
	if name == "" || strings.ContainsAny(name, "/.") {
		return fmt.Errorf("invalid sound %q", name)
	}
	return runner("afplay", "/System/Library/Sounds/"+name+".aiff")
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
