package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"Kilnworld/internal/persist"
	"Kilnworld/internal/store"
	"Kilnworld/internal/world"
)

const maxNameLength = 24

var (
	// ErrAlreadyConnected rejects a second session for the same user.
	ErrAlreadyConnected = errors.New("that user is already connected")
	// ErrObserverRefused rejects an observer login with a wrong or
	// unconfigured passphrase.
	ErrObserverRefused = errors.New("the observer passphrase was not accepted")
	// ErrInvalidUserName rejects empty, long or spaced names.
	ErrInvalidUserName = errors.New("names must be 1-24 characters without spaces")
)

// IsObserverName reports whether name is reserved for observer logins.
func (h *Hub) IsObserverName(name string) bool {
	return h.opts.ObserverName != "" && strings.EqualFold(name, h.opts.ObserverName)
}

// Login opens a session for the user called name, creating the user on
// first login. passphrase is only checked for the observer name.
func (h *Hub) Login(ctx context.Context, name, passphrase string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength || strings.ContainsAny(name, " \t") {
		return nil, ErrInvalidUserName
	}
	kind := KindPlayer
	if h.IsObserverName(name) {
		if h.opts.ObserverHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(h.opts.ObserverHash), []byte(passphrase)) != nil {
			h.logger.Warn("observer login refused", zap.String("user", name))
			return nil, ErrObserverRefused
		}
		kind = KindObserver
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.userLocked(name)
	if !ok {
		// Another process sharing the store may have created the user.
		stored, err := persist.FindUser(ctx, h.store, name)
		switch {
		case err == nil:
			u = stored
		case errors.Is(err, store.ErrNotFound):
			u = &world.User{Name: name}
			if err := persist.SaveUser(ctx, h.store, u); err != nil {
				return nil, fmt.Errorf("create user %s: %w", name, err)
			}
		default:
			return nil, err
		}
		h.users = append(h.users, u)
	}
	if u.Client != "" {
		return nil, ErrAlreadyConnected
	}
	s := NewSession(kind, u)
	u.Client = s.ID
	u.MasterMode = kind == KindObserver
	h.sessions[s.ID] = s
	var at *world.World
	if u.Room != nil && u.Room.State != nil {
		at = u.Room.State.World
	}
	h.location[s] = at
	h.logger.Info("login", zap.String("user", u.Name), zap.String("session", s.ID), zap.Bool("observer", kind == KindObserver))
	return s, nil
}

// Disconnect says goodbye to the room s was in and forgets the session.
func (h *Hub) Disconnect(s *Session) {
	if w := s.World(); w != nil {
		w.Lock()
		h.BroadcastToRoom(s.Room(), Ansi(fmt.Sprintf("\r\n%s leaves.", HighlightName(s.User.Name))), s)
		w.Unlock()
	}
	h.mu.Lock()
	delete(h.sessions, s.ID)
	delete(h.location, s)
	if s.User != nil {
		s.User.Client = ""
	}
	h.mu.Unlock()
	s.Close()
	h.logger.Info("logout", zap.String("user", s.User.Name), zap.String("session", s.ID))
}

// Sessions returns the number of live sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
