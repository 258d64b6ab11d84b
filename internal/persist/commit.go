// Package persist maps the world graph onto store documents. It owns the
// commit order that keeps every reference pointing at an entity that already
// has identity, the cascade used to delete a world, and the loader that
// rebuilds the graph at startup.
package persist

import (
	"context"
	"fmt"

	"Kilnworld/internal/store"
	"Kilnworld/internal/world"
)

func save(ctx context.Context, st store.Store, doc store.Document) (string, error) {
	if doc.ID == "" {
		id, err := st.Create(ctx, doc)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", doc.Kind, err)
		}
		return id, nil
	}
	if err := st.Update(ctx, doc); err != nil {
		return "", fmt.Errorf("update %s: %w", doc.Kind, err)
	}
	return doc.ID, nil
}

func verbIDs(verbs []*world.CustomVerb) []string {
	ids := make([]string, len(verbs))
	for i, v := range verbs {
		ids[i] = v.ID
	}
	return ids
}

// SaveVerbs creates each transient verb. Verbs never change once stored.
func SaveVerbs(ctx context.Context, st store.Store, verbs []*world.CustomVerb) error {
	for _, v := range verbs {
		if v.ID != "" {
			continue
		}
		doc, err := document(store.KindVerb, v.ID, verbRecord{Names: v.Names, Commands: v.Commands}, nil, nil)
		if err != nil {
			return err
		}
		if v.ID, err = save(ctx, st, doc); err != nil {
			return err
		}
	}
	return nil
}

// SaveRoom commits r with its verbs and its state backlink.
func SaveRoom(ctx context.Context, st store.Store, r *world.Room) error {
	return saveRoom(ctx, st, r, true)
}

func saveRoom(ctx context.Context, st store.Store, r *world.Room, withState bool) error {
	if err := SaveVerbs(ctx, st, r.CustomVerbs); err != nil {
		return err
	}
	rec := roomRecord{
		Alias:       r.Alias,
		Name:        r.Name,
		Description: r.Description,
		Verbs:       verbIDs(r.CustomVerbs),
	}
	required := rec.Verbs
	var index map[string]string
	if withState && r.State != nil {
		rec.State = r.State.ID
		required = append(required, r.State.ID)
		index = map[string]string{"world_state": r.State.ID}
	}
	doc, err := document(store.KindRoom, r.ID, rec, index, required)
	if err != nil {
		return err
	}
	r.ID, err = save(ctx, st, doc)
	return err
}

// SaveExit commits e. Both endpoint rooms need identity.
func SaveExit(ctx context.Context, st store.Store, e *world.Exit) error {
	if e.Room == nil || e.Destination == nil {
		return fmt.Errorf("exit %q has no endpoints", e.Name)
	}
	rec := exitRecord{
		Name:        e.Name,
		Description: e.Description,
		Room:        e.Room.ID,
		Destination: e.Destination.ID,
		Visible:     e.Visible,
		Open:        e.Open,
		KeyNames:    e.KeyNames,
	}
	doc, err := document(store.KindExit, e.ID, rec, map[string]string{"room": e.Room.ID}, []string{e.Room.ID, e.Destination.ID})
	if err != nil {
		return err
	}
	e.ID, err = save(ctx, st, doc)
	return err
}

// SaveItem commits it with its verbs and its location.
func SaveItem(ctx context.Context, st store.Store, it *world.Item) error {
	if err := SaveVerbs(ctx, st, it.CustomVerbs); err != nil {
		return err
	}
	rec := itemRecord{
		ItemID:      it.ItemID,
		Name:        it.Name,
		Description: it.Description,
		Visible:     it.Visible,
		Takable:     it.Takable,
		Verbs:       verbIDs(it.CustomVerbs),
	}
	required := append([]string(nil), rec.Verbs...)
	index := map[string]string{}
	switch {
	case it.Room != nil:
		rec.Room = it.Room.ID
		required = append(required, it.Room.ID)
		index["room"] = it.Room.ID
	case it.SavedIn != nil:
		rec.SavedIn = it.SavedIn.ID
		required = append(required, it.SavedIn.ID)
		index["saved_in"] = it.SavedIn.ID
	}
	doc, err := document(store.KindItem, it.ID, rec, index, required)
	if err != nil {
		return err
	}
	it.ID, err = save(ctx, st, doc)
	return err
}

// SaveInventory commits inv. Its user, state and items need identity.
func SaveInventory(ctx context.Context, st store.Store, inv *world.Inventory) error {
	if inv.User == nil || inv.State == nil {
		return fmt.Errorf("inventory has no owner")
	}
	rec := inventoryRecord{User: inv.User.ID, State: inv.State.ID}
	for _, it := range inv.Items {
		rec.Items = append(rec.Items, it.ID)
	}
	required := append([]string{inv.User.ID, inv.State.ID}, rec.Items...)
	doc, err := document(store.KindInventory, inv.ID, rec, map[string]string{"world_state": inv.State.ID}, required)
	if err != nil {
		return err
	}
	inv.ID, err = save(ctx, st, doc)
	return err
}

// SaveState commits the state record with its global verbs.
func SaveState(ctx context.Context, st store.Store, s *world.WorldState) error {
	return saveState(ctx, st, s, true)
}

func saveState(ctx context.Context, st store.Store, s *world.WorldState, withStart bool) error {
	if err := SaveVerbs(ctx, st, s.CustomVerbs); err != nil {
		return err
	}
	rec := stateRecord{NextItemID: s.NextItemID, Verbs: verbIDs(s.CustomVerbs)}
	required := rec.Verbs
	if withStart && s.StartingRoom != nil {
		rec.StartingRoom = s.StartingRoom.ID
		required = append(required, s.StartingRoom.ID)
	}
	doc, err := document(store.KindWorldState, s.ID, rec, nil, required)
	if err != nil {
		return err
	}
	s.ID, err = save(ctx, st, doc)
	return err
}

// SaveUser commits u and its location.
func SaveUser(ctx context.Context, st store.Store, u *world.User) error {
	rec := userRecord{Name: u.Name}
	var required []string
	if u.Room != nil {
		rec.Room = u.Room.ID
		required = append(required, u.Room.ID)
	}
	doc, err := document(store.KindUser, u.ID, rec, map[string]string{"name": u.Name}, required)
	if err != nil {
		return err
	}
	u.ID, err = save(ctx, st, doc)
	return err
}

// SaveWorld commits the world record. Creator and state need identity.
func SaveWorld(ctx context.Context, st store.Store, w *world.World) error {
	if w.Creator == nil || w.State == nil {
		return fmt.Errorf("world %q has no creator or state", w.Name)
	}
	rec := worldRecord{Name: w.Name, Creator: w.Creator.ID, State: w.State.ID, AllCanEdit: w.AllCanEdit}
	doc, err := document(store.KindWorld, w.ID, rec, map[string]string{"name": w.Name}, []string{w.Creator.ID, w.State.ID})
	if err != nil {
		return err
	}
	w.ID, err = save(ctx, st, doc)
	return err
}

// SaveSnapshot commits the snapshot record. Its state needs identity.
func SaveSnapshot(ctx context.Context, st store.Store, snap *world.Snapshot) error {
	if snap.State == nil {
		return fmt.Errorf("snapshot %q has no state", snap.Name)
	}
	rec := snapshotRecord{Name: snap.Name, State: snap.State.ID, Public: snap.Public}
	doc, err := document(store.KindSnapshot, snap.ID, rec, map[string]string{"name": snap.Name}, []string{snap.State.ID})
	if err != nil {
		return err
	}
	snap.ID, err = save(ctx, st, doc)
	return err
}

// CommitGraph commits every entity reachable from s so that no document is
// written before the documents it references:
//
//  1. starting room verbs, then the starting room without its state backlink
//  2. global verbs, then the state pointing at the starting room
//  3. the starting room again, now with its backlink
//  4. saved items
//  5. the remaining rooms
//  6. exits
//  7. room items, then inventory items
//  8. inventories
//
// Callers commit whatever owns the state (world or snapshot) afterwards.
// The commit is not transactional; a failure leaves what was already written.
func CommitGraph(ctx context.Context, st store.Store, s *world.WorldState) error {
	start := s.StartingRoom
	if start == nil {
		return fmt.Errorf("state has no starting room")
	}
	if start.ID == "" {
		if err := saveRoom(ctx, st, start, false); err != nil {
			return fmt.Errorf("starting room shell: %w", err)
		}
	}
	if err := SaveState(ctx, st, s); err != nil {
		return fmt.Errorf("world state: %w", err)
	}
	if err := SaveRoom(ctx, st, start); err != nil {
		return fmt.Errorf("starting room: %w", err)
	}
	for _, it := range s.SavedItems {
		if err := SaveItem(ctx, st, it); err != nil {
			return fmt.Errorf("saved item %q: %w", it.Name, err)
		}
	}
	others := s.OtherRooms()
	for _, r := range others {
		if err := SaveRoom(ctx, st, r); err != nil {
			return fmt.Errorf("room %q: %w", r.Name, err)
		}
	}
	for _, r := range s.Rooms {
		for _, e := range r.Exits {
			if err := SaveExit(ctx, st, e); err != nil {
				return fmt.Errorf("exit %q: %w", e.Name, err)
			}
		}
	}
	for _, r := range s.Rooms {
		for _, it := range r.Items {
			if err := SaveItem(ctx, st, it); err != nil {
				return fmt.Errorf("item %q: %w", it.Name, err)
			}
		}
	}
	for _, inv := range s.Inventories {
		for _, it := range inv.Items {
			if err := SaveItem(ctx, st, it); err != nil {
				return fmt.Errorf("inventory item %q: %w", it.Name, err)
			}
		}
	}
	for _, inv := range s.Inventories {
		if inv.User != nil && inv.User.ID == "" {
			if err := SaveUser(ctx, st, inv.User); err != nil {
				return fmt.Errorf("inventory owner %q: %w", inv.User.Name, err)
			}
		}
		if err := SaveInventory(ctx, st, inv); err != nil {
			return fmt.Errorf("inventory: %w", err)
		}
	}
	return nil
}

// CommitWorld commits the graph of w and then the world record itself.
func CommitWorld(ctx context.Context, st store.Store, w *world.World) error {
	if w.Creator != nil && w.Creator.ID == "" {
		if err := SaveUser(ctx, st, w.Creator); err != nil {
			return fmt.Errorf("creator: %w", err)
		}
	}
	if err := CommitGraph(ctx, st, w.State); err != nil {
		return fmt.Errorf("commit world %q: %w", w.Name, err)
	}
	w.State.World = w
	if err := SaveWorld(ctx, st, w); err != nil {
		return fmt.Errorf("commit world %q: %w", w.Name, err)
	}
	return nil
}

// CommitSnapshot commits the graph of snap and then the snapshot record.
func CommitSnapshot(ctx context.Context, st store.Store, snap *world.Snapshot) error {
	if err := CommitGraph(ctx, st, snap.State); err != nil {
		return fmt.Errorf("commit snapshot %q: %w", snap.Name, err)
	}
	if err := SaveSnapshot(ctx, st, snap); err != nil {
		return fmt.Errorf("commit snapshot %q: %w", snap.Name, err)
	}
	return nil
}
