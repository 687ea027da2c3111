package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/pinchmaze/internal/store"
)

func serve(s http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	rec := serve(s, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", response["status"])
	}
	if _, exists := response["uptime"]; !exists {
		t.Error("expected 'uptime' field in response")
	}
	if _, exists := response["game"]; exists {
		t.Error("'game' should be absent without a running game")
	}

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		if rec := serve(s, method, "/api/health"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

func TestServer_StoreRoutes(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	s := New(Config{Store: st})

	tests := []struct {
		path string
		want int
	}{
		{"/api/mazes", http.StatusOK},
		{"/api/mazes/missing", http.StatusNotFound},
		{"/api/hooks", http.StatusOK},
		{"/api/plugins", http.StatusNotFound},
		{"/api/session", http.StatusNotFound},
		{"/api/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if rec := serve(s, http.MethodGet, tt.path); rec.Code != tt.want {
				t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.want, rec.Code)
			}
		})
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>maze</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: dir})

	if rec := serve(s, http.MethodGet, "/"); rec.Code != http.StatusOK || rec.Body.String() != index {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(s, http.MethodGet, "/nonexistent.html"); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if rec := serve(New(Config{}), http.MethodGet, "/"); rec.Code != http.StatusNotFound {
		t.Errorf("root without static dir: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_Dashboard(t *testing.T) {
	dir := filepath.Join("..", "..", "web")
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		t.Skip("dashboard files not present")
	}

	rec := serve(New(Config{StaticDir: dir}), http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"/api/stream", "/api/state", "/api/session/reset"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard does not reference %s", want)
		}
	}
}

func TestServer_ListenAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	s := New(Config{})
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(addr) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + addr + "/api/health")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v, want nil after shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return")
	}
}
