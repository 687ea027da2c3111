package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/pinchmaze/internal/game"
)

func TestServer_HealthReportsGame(t *testing.T) {
	g := newFakeGame()
	s := New(Config{Game: g})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["game"] != "playing" {
		t.Errorf("expected game 'playing', got %v", response["game"])
	}
}

func TestServer_GameRoutesRequireGame(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/session", "/api/stream", "/api/state", "/api/mazes", "/api/hooks", "/api/plugins"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestStreamHandler(t *testing.T) {
	g := newFakeGame()
	g.SetFrame([]byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9})

	ts := httptest.NewServer(NewStreamHandler(g))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("unexpected Content-Type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	var headers []string
	for i := 0; i < 3; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read part header: %v", err)
		}
		headers = append(headers, strings.TrimSpace(line))
	}

	want := []string{"--frame", "Content-Type: image/jpeg", "Content-Length: 5"}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header %d = %q, want %q", i, headers[i], want[i])
		}
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStreamHandler(newFakeGame()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStateHandler_Broadcast(t *testing.T) {
	g := newFakeGame()
	srv := New(Config{Game: g})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Shutdown(context.Background())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/state"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	readState := func() stateMessage {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read error = %v", err)
		}
		var msg stateMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		return msg
	}

	first := readState()
	if first.Status != game.StatusPlaying || first.Maze != game.DefaultLayoutName {
		t.Errorf("initial state = %+v", first.Snapshot)
	}
	if len(first.Obstacles) != 12 {
		t.Errorf("expected 12 obstacles, got %d", len(first.Obstacles))
	}

	g.Update(&game.GestureEvent{Cursor: game.Point{X: 640, Y: 360}, Pinching: true})
	g.Update(&game.GestureEvent{Cursor: game.Point{X: 600, Y: 600}, Pinching: true})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msg := readState(); msg.Status == game.StatusLost {
			return
		}
	}
	t.Error("lost state was never broadcast")
}

func TestStateHandler_DropsFailedClients(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade error = %v", err)
			return
		}
		conns <- conn
	}))
	defer ts.Close()

	h := &StateHandler{
		source:  newFakeGame(),
		log:     nopLogger{},
		clients: make(map[*websocket.Conn]*sync.Mutex),
		done:    make(chan struct{}),
	}

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	var server []*websocket.Conn
	for i := 0; i < 2; i++ {
		client, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial error = %v", err)
		}
		defer client.Close()
		conn := <-conns
		defer conn.Close()
		server = append(server, conn)
		h.clients[conn] = &sync.Mutex{}
	}

	// Writes to the first client now fail; its read side is never polled.
	server[0].UnderlyingConn().Close()

	msg, err := h.message()
	if err != nil {
		t.Fatal(err)
	}
	h.sendAll(msg)

	if got := h.Clients(); got != 1 {
		t.Fatalf("Clients() = %d, want 1", got)
	}
	if _, ok := h.clients[server[1]]; !ok {
		t.Error("healthy client was dropped")
	}
}
