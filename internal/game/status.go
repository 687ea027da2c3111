package game

import "fmt"

// Status is the session outcome state.
type Status uint8

const (
	// StatusPlaying accepts input.
	StatusPlaying Status = iota
	// StatusLost means the player touched a wall.
	StatusLost
	// StatusWon means the player reached the goal.
	StatusWon
)

var statusNames = [...]string{
	StatusPlaying: "playing",
	StatusLost:    "lost",
	StatusWon:     "won",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Terminal reports whether the status freezes input until a reset.
func (s Status) Terminal() bool {
	return s == StatusLost || s == StatusWon
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}
