package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"Kilnworld/internal/codec"
	"Kilnworld/internal/persist"
	"Kilnworld/internal/world"
)

// ErrWorldGone is returned when a world was deleted while a session was
// choosing it.
var ErrWorldGone = errors.New("that world no longer exists")

const (
	originName        = "Origin"
	originDescription = "An empty expanse of raw clay, waiting to be shaped."
)

// CreateWorld creates an empty world owned by creator.
func (h *Hub) CreateWorld(ctx context.Context, creator *world.User, name string) (*world.World, error) {
	state := world.NewWorldState()
	origin := world.NewRoom(originName, originDescription)
	state.AddRoom(origin)
	state.StartingRoom = origin
	w := &world.World{Name: name, Creator: creator, State: state}
	state.World = w
	if err := h.register(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// DeploySnapshot creates a world for creator from a copy of snap.
func (h *Hub) DeploySnapshot(ctx context.Context, creator *world.User, snap *world.Snapshot, name string) (*world.World, error) {
	state, err := world.CloneState(snap.State)
	if err != nil {
		return nil, fmt.Errorf("clone snapshot %q: %w", snap.Name, err)
	}
	w := &world.World{Name: name, Creator: creator, State: state}
	state.World = w
	if err := h.register(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ImportWorld builds a world for creator from an exported payload. It holds
// no world lock while committing.
func (h *Hub) ImportWorld(ctx context.Context, creator *world.User, p codec.Portable, name string) (*world.World, error) {
	w, err := codec.Build(p, creator, name)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", name, err)
	}
	if err := h.register(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (h *Hub) register(ctx context.Context, w *world.World) error {
	if err := persist.CommitWorld(ctx, h.store, w); err != nil {
		h.logger.Error("commit world failed", zap.String("world", w.Name), zap.Error(err))
		return err
	}
	h.mu.Lock()
	if w.Creator != nil {
		if _, known := h.userLocked(w.Creator.Name); !known {
			h.users = append(h.users, w.Creator)
		}
	}
	h.mu.Unlock()
	h.addWorld(w)
	h.logger.Info("world created",
		zap.String("world", w.Name),
		zap.String("id", w.ID),
		zap.Int("rooms", len(w.State.Rooms)),
	)
	return nil
}

// TakeSnapshot stores a copy of w as a template. Callers hold w's lock.
func (h *Hub) TakeSnapshot(ctx context.Context, w *world.World, name string, public bool) (*world.Snapshot, error) {
	state, err := world.CloneState(w.State)
	if err != nil {
		return nil, fmt.Errorf("clone world %q: %w", w.Name, err)
	}
	snap := &world.Snapshot{Name: name, State: state, Public: public}
	if err := persist.CommitSnapshot(ctx, h.store, snap); err != nil {
		return nil, err
	}
	h.addSnapshot(snap)
	h.logger.Info("snapshot taken", zap.String("world", w.Name), zap.String("snapshot", name), zap.Bool("public", public))
	return snap, nil
}

// RegisterSnapshot commits a transient snapshot and lists it.
func (h *Hub) RegisterSnapshot(ctx context.Context, snap *world.Snapshot) error {
	if err := persist.CommitSnapshot(ctx, h.store, snap); err != nil {
		return err
	}
	h.addSnapshot(snap)
	return nil
}

// EnterWorld moves s from the lobby to the starting room of w and shows it.
func (h *Hub) EnterWorld(ctx context.Context, s *Session, w *world.World) error {
	w.Lock()
	defer w.Unlock()
	if w.Deleted() {
		return ErrWorldGone
	}
	start := w.State.StartingRoom
	s.User.Room = start
	if err := persist.SaveUser(ctx, h.store, s.User); err != nil {
		s.User.Room = nil
		return fmt.Errorf("enter world: %w", err)
	}
	h.setLocation(s, w)
	s.Send(Notice("Travelling to " + w.Name + "..."))
	h.ShowRoom(s)
	h.BroadcastToRoom(start, Ansi(fmt.Sprintf("\r\nPoof! %s appears.", HighlightName(s.User.Name))), s)
	return nil
}

// LeaveWorld returns s to the lobby. Callers hold the lock of the world s
// is leaving.
func (h *Hub) LeaveWorld(ctx context.Context, s *Session) error {
	room := s.Room()
	if room == nil {
		return nil
	}
	s.User.Room = nil
	if err := persist.SaveUser(ctx, h.store, s.User); err != nil {
		s.User.Room = room
		return fmt.Errorf("leave world: %w", err)
	}
	h.setLocation(s, nil)
	h.BroadcastToRoom(room, Ansi(fmt.Sprintf("\r\n%s fades away.", HighlightName(s.User.Name))), s)
	return nil
}

// DeleteWorld removes w on behalf of u. It is refused while a connected
// user is inside; offline users stored inside are moved to the lobby first.
func (h *Hub) DeleteWorld(ctx context.Context, u *world.User, w *world.World) error {
	w.Lock()
	defer w.Unlock()
	if w.Deleted() {
		return ErrWorldGone
	}
	if !w.IsCreator(u) {
		return ErrPermissionDenied
	}

	h.mu.Lock()
	if n := h.connectedLocked(w); n > 0 {
		h.mu.Unlock()
		return &world.CantDeleteError{Reason: fmt.Sprintf("%d connected user(s) are inside", n)}
	}
	for _, other := range h.users {
		if other.Room == nil || other.Room.State != w.State {
			continue
		}
		room := other.Room
		other.Room = nil
		if err := persist.SaveUser(ctx, h.store, other); err != nil {
			other.Room = room
			h.mu.Unlock()
			return fmt.Errorf("move %s to the lobby: %w", other.Name, err)
		}
	}
	h.mu.Unlock()

	if err := persist.DeleteWorld(ctx, h.store, w); err != nil {
		h.logger.Warn("delete world failed", zap.String("world", w.Name), zap.Error(err))
		return err
	}
	w.MarkDeleted()

	h.mu.Lock()
	h.worlds = slices.DeleteFunc(h.worlds, func(candidate *world.World) bool { return candidate == w })
	h.mu.Unlock()
	h.logger.Info("world deleted", zap.String("world", w.Name), zap.String("by", u.Name))
	return nil
}
