package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/pinchmaze/internal/game"
)

// stateInterval paces session broadcasts (~15 FPS).
const stateInterval = 66 * time.Millisecond

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SnapshotSource supplies the current session state.
type SnapshotSource interface {
	Snapshot() game.Snapshot
}

// stateMessage is one WebSocket frame.
type stateMessage struct {
	game.Snapshot
	Timestamp int64 `json:"timestamp"`
}

// StateHandler broadcasts session snapshots via WebSocket.
type StateHandler struct {
	source  SnapshotSource
	log     Logger
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	done    chan struct{}
	once    sync.Once
}

// NewStateHandler creates a StateHandler and starts its broadcast loop.
func NewStateHandler(source SnapshotSource, log Logger) *StateHandler {
	h := &StateHandler{
		source:  source,
		log:     log,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		done:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests. The current snapshot is sent
// immediately after the upgrade.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warning(fmt.Sprintf("websocket upgrade error: %v", err))
		return
	}
	defer conn.Close()

	wmu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = wmu
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	if msg, err := h.message(); err == nil {
		if err := send(conn, wmu, msg); err != nil {
			h.log.Warning(fmt.Sprintf("websocket initial write error: %v", err))
			return
		}
	}

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StateHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop and disconnects every client.
func (h *StateHandler) Close() {
	h.once.Do(func() {
		close(h.done)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.mu.Unlock()
	})
}

func (h *StateHandler) message() ([]byte, error) {
	return json.Marshal(stateMessage{
		Snapshot:  h.source.Snapshot(),
		Timestamp: time.Now().UnixMilli(),
	})
}

// broadcast sends the session state to all connected clients.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(stateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		msg, err := h.message()
		if err != nil {
			h.log.Error(fmt.Sprintf("encode session state: %v", err))
			continue
		}

		h.sendAll(msg)
	}
}

// sendAll writes msg to every client and drops the ones that fail.
func (h *StateHandler) sendAll(msg []byte) {
	var failed []*websocket.Conn
	h.mu.RLock()
	for conn, wmu := range h.clients {
		if err := send(conn, wmu, msg); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	if len(failed) == 0 {
		return
	}
	h.mu.Lock()
	for _, conn := range failed {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
	h.log.Warning(fmt.Sprintf("dropped %d websocket client(s) after write errors", len(failed)))
}

// send writes one text message. gorilla connections allow a single
// concurrent writer, which wmu enforces.
func send(conn *websocket.Conn, wmu *sync.Mutex, msg []byte) error {
	wmu.Lock()
	defer wmu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}
