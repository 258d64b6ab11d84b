package game

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

type stubListener struct {
	addr      net.Addr
	acceptErr error
	mu        sync.Mutex
	closed    bool
}

func (s *stubListener) Accept() (net.Conn, error) { return nil, s.acceptErr }

func (s *stubListener) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *stubListener) Addr() net.Addr { return s.addr }

// scriptedConn replays input lines and records everything written.
type scriptedConn struct {
	mu     sync.Mutex
	lines  []string
	output strings.Builder
	closed bool
}

func (c *scriptedConn) ReadLine() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return "", io.EOF
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line, nil
}

func (c *scriptedConn) WriteString(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output.WriteString(msg)
	return nil
}

func (c *scriptedConn) Width() int { return 80 }

func (c *scriptedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *scriptedConn) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stripANSI(c.output.String())
}

type pasteHandler struct{}

func (pasteHandler) Tier() Tier { return Free }

func TestListenAndServeReturnsListenerError(t *testing.T) {
	sentinel := errors.New("stub listener failure")
	listener := &stubListener{addr: &net.TCPAddr{}, acceptErr: sentinel}

	original := netListenFunc
	t.Cleanup(func() { netListenFunc = original })
	netListenFunc = func(string, string) (net.Listener, error) { return listener, nil }

	h := newTestHub(t)
	err := ListenAndServe(context.Background(), h, func(context.Context, *Hub, *Session, string) bool { return false }, ServerConfig{TelnetAddr: "127.0.0.1:0"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("ListenAndServe() error = %v, want %v", err, sentinel)
	}
	listener.mu.Lock()
	defer listener.mu.Unlock()
	if !listener.closed {
		t.Fatalf("listener was not closed")
	}
}

func TestListenAndServeRequiresDispatcher(t *testing.T) {
	if err := ListenAndServe(context.Background(), newTestHub(t), nil, ServerConfig{}); err == nil {
		t.Fatalf("ListenAndServe(nil dispatcher) error = nil, want error")
	}
}

func TestServeConnRunsSessionUntilQuit(t *testing.T) {
	h := newTestHub(t)
	conn := &scriptedConn{lines: []string{"ana", "   ", "look", "quit"}}

	var seen []string
	dispatch := func(_ context.Context, _ *Hub, s *Session, line string) bool {
		seen = append(seen, line)
		return line == "quit"
	}
	serveConn(context.Background(), h, conn, dispatch, "test")

	if got, want := strings.Join(seen, "|"), "look|quit"; got != want {
		t.Fatalf("dispatched %q, want %q", got, want)
	}
	out := conn.text()
	for _, want := range []string{"What is your name?", "Welcome, ana!", "lobby>", "Until next time."} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	}
	if !conn.closed {
		t.Fatalf("connection was not closed")
	}
	if n := h.Sessions(); n != 0 {
		t.Fatalf("Sessions() = %d after disconnect, want 0", n)
	}
}

func TestServeConnPassesRawLinesToActiveHandler(t *testing.T) {
	h := newTestHub(t)
	conn := &scriptedConn{lines: []string{"ana", "paste", `  {"rooms": `, "quit"}}

	var seen []string
	dispatch := func(_ context.Context, _ *Hub, s *Session, line string) bool {
		seen = append(seen, line)
		if line == "paste" {
			s.Active = pasteHandler{}
		}
		return line == "quit"
	}
	serveConn(context.Background(), h, conn, dispatch, "test")

	if len(seen) != 3 || seen[1] != `  {"rooms": ` {
		t.Fatalf("dispatched %q, want the paste fragment untouched", seen)
	}
}

func TestServeConnObserverLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	h := newTestHub(t)
	h.opts.ObserverName = "ghost"
	h.opts.ObserverHash = string(hash)
	conn := &scriptedConn{lines: []string{"ghost", "wrong", "ghost", "secret", "quit"}}

	var observer bool
	dispatch := func(_ context.Context, _ *Hub, s *Session, line string) bool {
		observer = s.Observer()
		return true
	}
	serveConn(context.Background(), h, conn, dispatch, "test")

	if !observer {
		t.Fatalf("session is not an observer")
	}
	if out := conn.text(); !strings.Contains(out, ErrObserverRefused.Error()) {
		t.Fatalf("output %q does not mention the refused passphrase", out)
	}
}
