package game

// Session owns one maze run: the fixed layout, the player, and the outcome.
//
// A Session is not safe for concurrent use. Update and Reset calls must be
// strictly ordered.
type Session struct {
	layout Layout
	state  state
}

type state struct {
	player Player
	status Status
}

// Snapshot is a read-only view of a session for renderers and the API.
type Snapshot struct {
	Maze      string     `json:"maze"`
	Status    Status     `json:"status"`
	Player    Player     `json:"player"`
	Goal      Goal       `json:"goal"`
	Obstacles []Obstacle `json:"obstacles"`
}

// NewSession starts a session in StatusPlaying on a copy of layout.
func NewSession(layout Layout) (*Session, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	l := layout.clone()
	return &Session{
		layout: l,
		state: state{
			player: NewPlayer(l.Start, l.PlayerRadius),
			status: StatusPlaying,
		},
	}, nil
}

// Update advances the session by one frame. A nil event means no hand was
// usable this frame: the grab state is kept and the player does not move.
func (s *Session) Update(ev *GestureEvent) Status {
	s.state = advance(s.state, &s.layout, ev)
	return s.state.status
}

// advance computes the next state without touching the current one.
func advance(cur state, l *Layout, ev *GestureEvent) state {
	if cur.status.Terminal() {
		return cur
	}

	next := cur
	if ev != nil {
		next.player = cur.player.ApplyGesture(*ev)
	}

	for _, o := range l.Obstacles {
		if o.IntersectsCircle(next.player.Position, next.player.Radius) {
			next.status = StatusLost
			return next
		}
	}

	if l.Goal.Reached(next.player.Position, next.player.Radius) {
		next.status = StatusWon
	}
	return next
}

// Reset puts the player back at the start and resumes play.
func (s *Session) Reset() {
	s.state = state{
		player: s.state.player.Reset(),
		status: StatusPlaying,
	}
}

// Status returns the current outcome state.
func (s *Session) Status() Status { return s.state.status }

// Player returns a copy of the player.
func (s *Session) Player() Player { return s.state.player }

// Goal returns the goal region.
func (s *Session) Goal() Goal { return s.layout.Goal }

// Obstacles returns a copy of the ordered obstacle list.
func (s *Session) Obstacles() []Obstacle {
	return append([]Obstacle(nil), s.layout.Obstacles...)
}

// Layout returns a copy of the session layout.
func (s *Session) Layout() Layout { return s.layout.clone() }

// Snapshot captures the current public state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Maze:      s.layout.Name,
		Status:    s.state.status,
		Player:    s.state.player,
		Goal:      s.layout.Goal,
		Obstacles: s.Obstacles(),
	}
}
