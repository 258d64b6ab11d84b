package game

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func readUntil(t *testing.T, conn *websocket.Conn, marker string) string {
	t.Helper()
	var b strings.Builder
	for !strings.Contains(stripANSI(b.String()), marker) {
		if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			t.Fatalf("set deadline: %v", err)
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v (got %q)", marker, err, stripANSI(b.String()))
		}
		b.Write(payload)
	}
	return stripANSI(b.String())
}

func TestWebSocketSessionOneLinePerMessage(t *testing.T) {
	h := newTestHub(t)
	var (
		mu  sync.Mutex
		got []string
	)
	dispatch := func(_ context.Context, _ *Hub, s *Session, line string) bool {
		mu.Lock()
		got = append(got, line)
		mu.Unlock()
		s.Send("\r\necho " + line)
		return line == "quit"
	}
	server := httptest.NewServer(WebSocketHandler(h, dispatch, 1024))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	readUntil(t, conn, "What is your name?")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ana\r\n")); err != nil {
		t.Fatalf("write name: %v", err)
	}
	readUntil(t, conn, "Welcome, ana!")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("say hi")); err != nil {
		t.Fatalf("write command: %v", err)
	}
	readUntil(t, conn, "echo say hi")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("quit")); err != nil {
		t.Fatalf("write quit: %v", err)
	}
	readUntil(t, conn, "Until next time.")

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(got, "|") != "say hi|quit" {
		t.Fatalf("dispatched = %q", got)
	}
}

func TestWebSocketSplitsOversizedMessage(t *testing.T) {
	h := newTestHub(t)
	var (
		mu    sync.Mutex
		lines []string
	)
	dispatch := func(_ context.Context, _ *Hub, s *Session, line string) bool {
		if s.Active == nil {
			s.Active = pasteHandler{}
			return false
		}
		if line == "quit" {
			return true
		}
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
		return false
	}
	server := httptest.NewServer(WebSocketHandler(h, dispatch, 64))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	readUntil(t, conn, "What is your name?")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ana")); err != nil {
		t.Fatalf("write name: %v", err)
	}
	readUntil(t, conn, "Welcome, ana!")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("paste")); err != nil {
		t.Fatalf("write paste: %v", err)
	}

	payload := strings.Repeat(`{"name": "café"}`, 300)
	for _, msg := range []string{payload, "quit"} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	readUntil(t, conn, "Until next time.")

	mu.Lock()
	defer mu.Unlock()
	if len(lines) < len(payload)/64 {
		t.Fatalf("payload arrived as %d lines", len(lines))
	}
	for _, line := range lines {
		if len(line) > 64 {
			t.Fatalf("fragment of %d bytes exceeds the limit", len(line))
		}
	}
	if got := strings.Join(lines, ""); got != payload {
		t.Fatalf("fragments do not rebuild the message (%d of %d bytes)", len(got), len(payload))
	}
}
