package persist

import (
	"context"
	"fmt"

	"Kilnworld/internal/store"
	"Kilnworld/internal/world"
)

// Load rebuilds the universe from st. Rooms whose state backlink was never
// patched belong to an interrupted import and are skipped.
func Load(ctx context.Context, st store.Store) (*world.Universe, error) {
	l := loader{
		ctx:    ctx,
		st:     st,
		verbs:  map[string]*world.CustomVerb{},
		states: map[string]*world.WorldState{},
		rooms:  map[string]*world.Room{},
		items:  map[string]*world.Item{},
		users:  map[string]*world.User{},
	}
	steps := []func(*world.Universe) error{
		l.loadVerbs,
		l.loadStates,
		l.loadRooms,
		l.loadExits,
		l.loadItems,
		l.loadUsers,
		l.loadInventories,
		l.loadWorlds,
		l.loadSnapshots,
	}
	u := &world.Universe{}
	for _, step := range steps {
		if err := step(u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

type loader struct {
	ctx context.Context
	st  store.Store

	verbs        map[string]*world.CustomVerb
	states       map[string]*world.WorldState
	startingRoom map[*world.WorldState]string
	rooms        map[string]*world.Room
	items        map[string]*world.Item
	users        map[string]*world.User
}

func (l *loader) each(kind store.Kind, fn func(store.Document) error) error {
	docs, err := l.st.All(l.ctx, kind)
	if err != nil {
		return fmt.Errorf("load %s: %w", kind, err)
	}
	for _, doc := range docs {
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) verbList(ids []string) []*world.CustomVerb {
	var out []*world.CustomVerb
	for _, id := range ids {
		if v, ok := l.verbs[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (l *loader) loadVerbs(*world.Universe) error {
	return l.each(store.KindVerb, func(doc store.Document) error {
		var rec verbRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		l.verbs[doc.ID] = &world.CustomVerb{ID: doc.ID, Names: rec.Names, Commands: rec.Commands}
		return nil
	})
}

func (l *loader) loadStates(*world.Universe) error {
	l.startingRoom = map[*world.WorldState]string{}
	return l.each(store.KindWorldState, func(doc store.Document) error {
		var rec stateRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		s := &world.WorldState{ID: doc.ID, NextItemID: rec.NextItemID, CustomVerbs: l.verbList(rec.Verbs)}
		l.states[doc.ID] = s
		l.startingRoom[s] = rec.StartingRoom
		return nil
	})
}

func (l *loader) loadRooms(*world.Universe) error {
	err := l.each(store.KindRoom, func(doc store.Document) error {
		var rec roomRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		s, ok := l.states[rec.State]
		if !ok {
			return nil
		}
		r := &world.Room{
			ID:          doc.ID,
			Alias:       rec.Alias,
			Name:        rec.Name,
			Description: rec.Description,
			CustomVerbs: l.verbList(rec.Verbs),
		}
		s.AddRoom(r)
		l.rooms[doc.ID] = r
		return nil
	})
	if err != nil {
		return err
	}
	for s, id := range l.startingRoom {
		s.StartingRoom = l.rooms[id]
	}
	return nil
}

func (l *loader) loadExits(*world.Universe) error {
	return l.each(store.KindExit, func(doc store.Document) error {
		var rec exitRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		from, ok := l.rooms[rec.Room]
		if !ok {
			return nil
		}
		to, ok := l.rooms[rec.Destination]
		if !ok {
			return nil
		}
		from.AddExit(&world.Exit{
			ID:          doc.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Visible:     rec.Visible,
			Open:        rec.Open,
			KeyNames:    rec.KeyNames,
			Destination: to,
		})
		return nil
	})
}

func (l *loader) loadItems(*world.Universe) error {
	return l.each(store.KindItem, func(doc store.Document) error {
		var rec itemRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		it := &world.Item{
			ID:          doc.ID,
			ItemID:      rec.ItemID,
			Name:        rec.Name,
			Description: rec.Description,
			Visible:     rec.Visible,
			Takable:     rec.Takable,
			CustomVerbs: l.verbList(rec.Verbs),
		}
		l.items[doc.ID] = it
		switch {
		case rec.Room != "":
			if r, ok := l.rooms[rec.Room]; ok {
				r.AddItem(it)
			}
		case rec.SavedIn != "":
			if s, ok := l.states[rec.SavedIn]; ok {
				it.SavedIn = s
				s.SavedItems = append(s.SavedItems, it)
			}
		}
		return nil
	})
}

func (l *loader) loadUsers(u *world.Universe) error {
	return l.each(store.KindUser, func(doc store.Document) error {
		var rec userRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		user := &world.User{ID: doc.ID, Name: rec.Name, Room: l.rooms[rec.Room]}
		l.users[doc.ID] = user
		u.Users = append(u.Users, user)
		return nil
	})
}

func (l *loader) loadInventories(*world.Universe) error {
	return l.each(store.KindInventory, func(doc store.Document) error {
		var rec inventoryRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		s, ok := l.states[rec.State]
		if !ok {
			return nil
		}
		inv := &world.Inventory{ID: doc.ID, User: l.users[rec.User], State: s}
		if inv.User == nil {
			return fmt.Errorf("inventory %s has no owner", doc.ID)
		}
		for _, id := range rec.Items {
			if it, ok := l.items[id]; ok {
				inv.Add(it)
			}
		}
		s.Inventories = append(s.Inventories, inv)
		return nil
	})
}

func (l *loader) loadWorlds(u *world.Universe) error {
	return l.each(store.KindWorld, func(doc store.Document) error {
		var rec worldRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		s, ok := l.states[rec.State]
		if !ok || s.StartingRoom == nil {
			return fmt.Errorf("world %q: state %s is incomplete", rec.Name, rec.State)
		}
		w := &world.World{
			ID:         doc.ID,
			Name:       rec.Name,
			Creator:    l.users[rec.Creator],
			State:      s,
			AllCanEdit: rec.AllCanEdit,
		}
		s.World = w
		u.Worlds = append(u.Worlds, w)
		return nil
	})
}

func (l *loader) loadSnapshots(u *world.Universe) error {
	return l.each(store.KindSnapshot, func(doc store.Document) error {
		var rec snapshotRecord
		if err := decode(doc, &rec); err != nil {
			return err
		}
		s, ok := l.states[rec.State]
		if !ok {
			return fmt.Errorf("snapshot %q: unknown state %s", rec.Name, rec.State)
		}
		u.Snapshots = append(u.Snapshots, &world.Snapshot{ID: doc.ID, Name: rec.Name, State: s, Public: rec.Public})
		return nil
	})
}

// FindUser returns the stored user called name.
func FindUser(ctx context.Context, st store.Store, name string) (*world.User, error) {
	docs, err := st.Find(ctx, store.KindUser, "name", name)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", name, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("find user %q: %w", name, store.ErrNotFound)
	}
	var rec userRecord
	if err := decode(docs[0], &rec); err != nil {
		return nil, err
	}
	return &world.User{ID: docs[0].ID, Name: rec.Name}, nil
}
