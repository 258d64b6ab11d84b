package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"Kilnworld/internal/world"
)

// SessionKind separates regular players from observers.
type SessionKind int

const (
	KindPlayer SessionKind = iota
	// KindObserver sessions are counted as privileged in every world.
	KindObserver
)

const outputBuffer = 64

// Handler is the state of a multi-turn interaction owned by a session.
type Handler interface {
	// Tier is checked before every message is forwarded to the handler.
	Tier() Tier
}

// Session is one connected client. Everything except Output is touched only
// by the goroutine serving the connection.
type Session struct {
	ID     string
	Kind   SessionKind
	User   *world.User
	Output chan string
	// Active is the interaction that receives the next message, if any.
	Active   Handler
	JoinedAt time.Time
	Width    int

	mu      sync.Mutex
	closed  bool
	history []time.Time
}

// NewSession returns a session for u with a fresh connection handle.
func NewSession(kind SessionKind, u *world.User) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Kind:     kind,
		User:     u,
		Output:   make(chan string, outputBuffer),
		JoinedAt: time.Now().UTC(),
		Width:    80,
	}
}

// Send queues msg for the client, dropping it when the client falls behind.
func (s *Session) Send(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.Output <- msg:
	default:
	}
}

// Close stops the output pump. Send after Close is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.Output)
	}
}

// Room is the room the session's user occupies, nil in the lobby.
func (s *Session) Room() *world.Room {
	if s.User == nil {
		return nil
	}
	return s.User.Room
}

// World is the world the session's user occupies, nil in the lobby.
func (s *Session) World() *world.World {
	r := s.Room()
	if r == nil || r.State == nil {
		return nil
	}
	return r.State.World
}

// Observer reports whether the session is an observer.
func (s *Session) Observer() bool { return s.Kind == KindObserver }

const (
	commandLimit  = 10
	commandWindow = time.Second
)

// allowCommand applies a sliding-window rate limit to new commands.
func (s *Session) allowCommand(now time.Time) bool {
	cutoff := now.Add(-commandWindow)
	kept := s.history[:0]
	for _, t := range s.history {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.history = kept
	if len(s.history) >= commandLimit {
		return false
	}
	s.history = append(s.history, now)
	return true
}
