// Package world holds the entity graph of a Kilnworld server: users, worlds,
// their mutable state (rooms, exits, items, inventories, custom verbs) and
// the snapshots used as deployable templates.
//
// Entities are plain pointer graphs. An entity with an empty ID is transient;
// the store assigns identities when the entity is first committed.
package world

import (
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// User is a person who has logged in at least once.
type User struct {
	ID   string
	Name string
	// Room is nil while the user is in the lobby.
	Room       *Room
	MasterMode bool
	// Client is the connection handle of the live session, empty when offline.
	Client string
}

// World is a playable instance owned by its creator.
type World struct {
	ID         string
	Name       string
	Creator    *User
	State      *WorldState
	AllCanEdit bool

	mu      sync.Mutex
	deleted bool
}

// Lock serialises mutations of the world graph.
func (w *World) Lock() { w.mu.Lock() }

// Unlock releases the world graph.
func (w *World) Unlock() { w.mu.Unlock() }

// Deleted reports whether the world has been removed. Callers hold the lock.
func (w *World) Deleted() bool { return w.deleted }

// MarkDeleted flags the world as removed. Callers hold the lock.
func (w *World) MarkDeleted() { w.deleted = true }

// IsCreator reports whether u created the world.
func (w *World) IsCreator(u *User) bool {
	if w == nil || u == nil || w.Creator == nil {
		return false
	}
	if w.Creator == u {
		return true
	}
	return w.Creator.ID != "" && w.Creator.ID == u.ID
}

// WorldState is the mutable graph behind a World or a Snapshot.
type WorldState struct {
	ID           string
	StartingRoom *Room
	// Rooms holds every room, the starting room included.
	Rooms       []*Room
	NextItemID  int
	CustomVerbs []*CustomVerb
	SavedItems  []*Item
	Inventories []*Inventory
	// World is the owning world; nil for snapshot states.
	World *World
}

// NewWorldState returns an empty state whose item counter starts at 1.
func NewWorldState() *WorldState {
	return &WorldState{NextItemID: 1}
}

// OtherRooms returns every room except the starting room.
func (s *WorldState) OtherRooms() []*Room {
	out := make([]*Room, 0, len(s.Rooms))
	for _, r := range s.Rooms {
		if r != s.StartingRoom {
			out = append(out, r)
		}
	}
	return out
}

// AddRoom attaches r to the state.
func (s *WorldState) AddRoom(r *Room) {
	r.State = s
	for _, existing := range s.Rooms {
		if existing == r {
			return
		}
	}
	s.Rooms = append(s.Rooms, r)
}

// Items returns every item of the state: room items, inventory items and
// saved items.
func (s *WorldState) Items() []*Item {
	return append(s.PlacedItems(), s.SavedItems...)
}

// PlacedItems returns the items players can reach: room items and
// inventory items. Saved items are not part of the naming namespace.
func (s *WorldState) PlacedItems() []*Item {
	var out []*Item
	for _, r := range s.Rooms {
		out = append(out, r.Items...)
	}
	for _, inv := range s.Inventories {
		out = append(out, inv.Items...)
	}
	return out
}

// InventoryFor returns the inventory of u in this state, creating a transient
// one on first access.
func (s *WorldState) InventoryFor(u *User) *Inventory {
	for _, inv := range s.Inventories {
		if inv.User == u || (u.ID != "" && inv.User != nil && inv.User.ID == u.ID) {
			return inv
		}
	}
	inv := &Inventory{User: u, State: s}
	s.Inventories = append(s.Inventories, inv)
	return inv
}

// Room is a location inside a WorldState.
type Room struct {
	ID          string
	Alias       string
	Name        string
	Description string
	State       *WorldState
	Exits       []*Exit
	Items       []*Item
	CustomVerbs []*CustomVerb
}

// NewRoom returns a transient room with a fresh alias.
func NewRoom(name, description string) *Room {
	return &Room{
		Alias:       NewAlias(),
		Name:        name,
		Description: description,
	}
}

// NewAlias returns a portable room alias.
func NewAlias() string {
	return strings.ToLower(ulid.Make().String())
}

// ExitTo returns the first visible exit of r leading to dest.
func (r *Room) ExitTo(dest *Room) (*Exit, bool) {
	for _, e := range r.Exits {
		if e.Destination == dest && !e.Hidden() {
			return e, true
		}
	}
	return nil, false
}

// AddExit attaches e as an outgoing exit of r.
func (r *Room) AddExit(e *Exit) {
	e.Room = r
	r.Exits = append(r.Exits, e)
}

// AddItem places it in r, clearing any other location.
func (r *Room) AddItem(it *Item) {
	it.clearLocation()
	it.Room = r
	r.Items = append(r.Items, it)
}

// RemoveItem detaches it from r.
func (r *Room) RemoveItem(it *Item) bool {
	for i, candidate := range r.Items {
		if candidate == it {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			it.Room = nil
			return true
		}
	}
	return false
}

// ExitNames lists exit names in room order.
func (r *Room) ExitNames() []string {
	names := make([]string, len(r.Exits))
	for i, e := range r.Exits {
		names[i] = e.Name
	}
	return names
}

// Exit connects a room to a destination room of the same state.
type Exit struct {
	ID          string
	Name        string
	Description string
	Visible     bool
	Open        bool
	KeyNames    []string
	Room        *Room
	Destination *Room
}

// Hidden reports whether the exit is concealed from narration.
func (e *Exit) Hidden() bool { return !e.Visible }

// Item is an object located in a room, an inventory or the saved set of a state.
type Item struct {
	ID          string
	ItemID      int
	Name        string
	Description string
	Visible     bool
	Takable     bool
	CustomVerbs []*CustomVerb

	Room      *Room
	Inventory *Inventory
	SavedIn   *WorldState
}

func (it *Item) clearLocation() {
	it.Room = nil
	it.Inventory = nil
	it.SavedIn = nil
}

// Inventory is the set of items a user carries inside one state.
type Inventory struct {
	ID    string
	User  *User
	State *WorldState
	Items []*Item
}

// Add places it in the inventory, clearing any other location.
func (inv *Inventory) Add(it *Item) {
	it.clearLocation()
	it.Inventory = inv
	inv.Items = append(inv.Items, it)
}

// Remove detaches it from the inventory.
func (inv *Inventory) Remove(it *Item) bool {
	for i, candidate := range inv.Items {
		if candidate == it {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			it.Inventory = nil
			return true
		}
	}
	return false
}

// CustomVerb is a user-authored command attached to a room, item or state.
type CustomVerb struct {
	ID       string
	Names    []string
	Commands []string
}

// Snapshot is a frozen copy of a state usable as a template.
type Snapshot struct {
	ID     string
	Name   string
	State  *WorldState
	Public bool
}

// Universe is everything a server knows about.
type Universe struct {
	Users     []*User
	Worlds    []*World
	Snapshots []*Snapshot
}
