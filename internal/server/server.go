// Package server provides the dashboard HTTP server: the JSON API, the MJPEG
// stream of rendered frames and the live session WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/pinchmaze/internal/game"
	"github.com/ayusman/pinchmaze/internal/plugin"
	"github.com/ayusman/pinchmaze/internal/server/api"
	"github.com/ayusman/pinchmaze/internal/store"
)

// GameController is the running game as seen by the server.
type GameController interface {
	Snapshot() game.Snapshot
	Reset()
	SetEnabled(enabled bool)
	IsEnabled() bool
	LatestFrame() []byte
}

// Logger is the component logger used by the server.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// Config holds the server configuration. Every dependency is optional; routes
// whose dependency is missing are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Game      GameController
	Plugins   *plugin.Manager
	Logger    Logger
}

// Server represents the HTTP server for the dashboard.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	state  *StateHandler
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = nopLogger{}
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.http = &http.Server{Handler: s}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		mazes := api.NewMazeHandler(s.config.Store)
		s.mux.Handle("/api/mazes", mazes)
		s.mux.Handle("/api/mazes/", mazes)

		hooks := api.NewHookHandler(s.config.Store, s.config.Plugins)
		s.mux.Handle("/api/hooks", hooks)
		s.mux.Handle("/api/hooks/", hooks)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	if s.config.Game != nil {
		session := api.NewSessionHandler(s.config.Game)
		s.mux.Handle("/api/session", session)
		s.mux.Handle("/api/session/", session)

		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Game))

		s.state = NewStateHandler(s.config.Game, s.config.Logger)
		s.mux.Handle("/api/state", s.state)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Game != nil {
		response["game"] = s.config.Game.Snapshot().Status
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address and blocks
// until Shutdown. A shutdown is not reported as an error.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.config.Logger.Info("Dashboard listening on " + ln.Addr().String())

	err = s.http.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener, closes WebSocket clients and waits for
// in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.state != nil {
		s.state.Close()
	}
	return s.http.Shutdown(ctx)
}
