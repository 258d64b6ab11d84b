// Package game runs the shared side of a Kilnworld server: the hub that
// tracks users, worlds, snapshots and live sessions, the permission gate,
// room rendering and the telnet and websocket transports.
package game

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"Kilnworld/internal/persist"
	"Kilnworld/internal/store"
	"Kilnworld/internal/world"
)

// Options tunes a Hub.
type Options struct {
	Logger       *zap.Logger
	ImportLimit  int
	ObserverName string
	// ObserverHash is the bcrypt hash of the observer passphrase. Observer
	// logins are refused while it is empty.
	ObserverHash string
}

// Hub is the in-memory registry every session shares.
//
// Lock order: a world's mutex is always taken before mu.
type Hub struct {
	mu        sync.RWMutex
	store     store.Store
	logger    *zap.Logger
	opts      Options
	users     []*world.User
	worlds    []*world.World
	snapshots []*world.Snapshot
	sessions  map[string]*Session
	// location maps each live session to the world it occupies; lobby
	// sessions map to nil.
	location map[*Session]*world.World
}

// NewHub wraps an already loaded universe.
func NewHub(st store.Store, u *world.Universe, opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if u == nil {
		u = &world.Universe{}
	}
	for _, user := range u.Users {
		user.Client = ""
	}
	return &Hub{
		store:     st,
		logger:    opts.Logger,
		opts:      opts,
		users:     slices.Clone(u.Users),
		worlds:    slices.Clone(u.Worlds),
		snapshots: slices.Clone(u.Snapshots),
		sessions:  make(map[string]*Session),
		location:  make(map[*Session]*world.World),
	}
}

// LoadHub rebuilds the universe stored in st.
func LoadHub(ctx context.Context, st store.Store, opts Options) (*Hub, error) {
	u, err := persist.Load(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	h := NewHub(st, u, opts)
	h.logger.Info("universe loaded",
		zap.Int("users", len(u.Users)),
		zap.Int("worlds", len(u.Worlds)),
		zap.Int("snapshots", len(u.Snapshots)),
	)
	return h, nil
}

// Store returns the backing store.
func (h *Hub) Store() store.Store { return h.store }

// Logger returns the hub logger.
func (h *Hub) Logger() *zap.Logger { return h.logger }

// ImportLimit is the byte ceiling of an import payload.
func (h *Hub) ImportLimit() int { return h.opts.ImportLimit }

// Worlds lists every world in creation order.
func (h *Hub) Worlds() []*world.World {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.worlds)
}

// WorldsBy lists the worlds created by u.
func (h *Hub) WorldsBy(u *world.User) []*world.World {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*world.World
	for _, w := range h.worlds {
		if w.IsCreator(u) {
			out = append(out, w)
		}
	}
	return out
}

// Snapshots lists stored snapshots, only public ones when publicOnly is set.
func (h *Hub) Snapshots(publicOnly bool) []*world.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*world.Snapshot
	for _, snap := range h.snapshots {
		if snap.Public || !publicOnly {
			out = append(out, snap)
		}
	}
	return out
}

// HasSnapshot reports whether a snapshot called name exists.
func (h *Hub) HasSnapshot(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, snap := range h.snapshots {
		if strings.EqualFold(snap.Name, name) {
			return true
		}
	}
	return false
}

// User returns the known user called name.
func (h *Hub) User(name string) (*world.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.userLocked(name)
}

func (h *Hub) userLocked(name string) (*world.User, bool) {
	for _, u := range h.users {
		if strings.EqualFold(u.Name, name) {
			return u, true
		}
	}
	return nil, false
}

// ConnectedCount reports how many live sessions are inside w.
func (h *Hub) ConnectedCount(w *world.World) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connectedLocked(w)
}

func (h *Hub) connectedLocked(w *world.World) int {
	n := 0
	for _, at := range h.location {
		if at == w {
			n++
		}
	}
	return n
}

// Occupants returns the sessions in room other than except. Callers hold the
// lock of the room's world.
func (h *Hub) Occupants(room *world.Room, except *Session) []*Session {
	if room == nil || room.State == nil {
		return nil
	}
	w := room.State.World
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*Session
	for s, at := range h.location {
		if s == except || at != w || s.User == nil || s.User.Room != room {
			continue
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Session) int { return strings.Compare(a.User.Name, b.User.Name) })
	return out
}

// BroadcastToRoom sends msg to every session in room except one. Callers
// hold the lock of the room's world.
func (h *Hub) BroadcastToRoom(room *world.Room, msg string, except *Session) {
	for _, s := range h.Occupants(room, except) {
		s.Send(msg)
	}
}

// setLocation records which world s occupies.
func (h *Hub) setLocation(s *Session, w *world.World) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID]; ok {
		h.location[s] = w
	}
}

func (h *Hub) addWorld(w *world.World) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.worlds = append(h.worlds, w)
}

func (h *Hub) addSnapshot(snap *world.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, snap)
}
