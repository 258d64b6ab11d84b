package codec

import (
	"fmt"
	"strings"

	"Kilnworld/internal/world"
)

// Build turns p into a transient world owned by creator. The creator's
// inventory receives p.Inventory. Nothing is committed; callers hand the
// result to persist.CommitWorld.
func Build(p Portable, creator *world.User, name string) (*world.World, error) {
	state, err := BuildState(p, creator)
	if err != nil {
		return nil, err
	}
	w := &world.World{Name: name, Creator: creator, State: state}
	state.World = w
	return w, nil
}

// BuildState turns p into a transient state. p.Inventory goes to owner and
// is dropped when owner is nil.
func BuildState(p Portable, owner *world.User) (*world.WorldState, error) {
	state := world.NewWorldState()
	if p.NextRoomID > 0 {
		state.NextItemID = p.NextRoomID
	}
	byAlias := map[string]*world.Room{}

	addRoom := func(rec RoomRecord) (*world.Room, error) {
		if rec.Alias == "" {
			return nil, fmt.Errorf("room %q has no alias", rec.Name)
		}
		if _, dup := byAlias[rec.Alias]; dup {
			return nil, fmt.Errorf("room alias %q is used twice", rec.Alias)
		}
		r := &world.Room{
			Alias:       rec.Alias,
			Name:        rec.Name,
			Description: rec.Description,
			CustomVerbs: buildVerbs(rec.CustomVerbs),
		}
		for _, it := range rec.Items {
			r.AddItem(buildItem(it))
		}
		state.AddRoom(r)
		byAlias[rec.Alias] = r
		return r, nil
	}

	start, err := addRoom(p.StartingRoom)
	if err != nil {
		return nil, fmt.Errorf("starting room: %w", err)
	}
	state.StartingRoom = start
	for _, rec := range p.OtherRooms {
		if _, err := addRoom(rec); err != nil {
			return nil, err
		}
	}
	for _, rec := range p.Exits {
		from, ok := byAlias[rec.Room]
		if !ok {
			return nil, fmt.Errorf("exit %q leaves unknown room %q", rec.Name, rec.Room)
		}
		to, ok := byAlias[rec.Destination]
		if !ok {
			return nil, fmt.Errorf("exit %q leads to unknown room %q", rec.Name, rec.Destination)
		}
		from.AddExit(&world.Exit{
			Name:        rec.Name,
			Description: rec.Description,
			Visible:     rec.Visible,
			Open:        rec.Open,
			KeyNames:    rec.KeyNames,
			Destination: to,
		})
	}
	state.CustomVerbs = buildVerbs(p.CustomVerbs)
	for _, rec := range p.SavedItems {
		it := buildItem(rec)
		it.Takable = false
		it.SavedIn = state
		state.SavedItems = append(state.SavedItems, it)
	}
	if len(p.Inventory) > 0 && owner != nil {
		inv := state.InventoryFor(owner)
		for _, rec := range p.Inventory {
			inv.Add(buildItem(rec))
		}
	}
	if err := validate(state); err != nil {
		return nil, err
	}
	return state, nil
}

// validate checks every exit and item name against the naming rules.
func validate(state *world.WorldState) error {
	for _, r := range state.Rooms {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("room %q: %w", r.Alias, world.ErrEmptyName)
		}
		for _, e := range r.Exits {
			if err := world.ValidateExitName(state, r, e.Name, e); err != nil {
				return fmt.Errorf("exit %q in %q: %w", e.Name, r.Name, err)
			}
		}
		for _, it := range r.Items {
			if err := world.ValidateItemName(state, r, it.Name, it.Takable, it); err != nil {
				return fmt.Errorf("item %q in %q: %w", it.Name, r.Name, err)
			}
		}
	}
	for _, it := range state.SavedItems {
		if err := world.ValidateName(it.Name); err != nil {
			return fmt.Errorf("saved item %q: %w", it.Name, err)
		}
	}
	for _, inv := range state.Inventories {
		for _, it := range inv.Items {
			if err := world.ValidateItemName(state, nil, it.Name, it.Takable, it); err != nil {
				return fmt.Errorf("inventory item %q: %w", it.Name, err)
			}
		}
	}
	return nil
}

func buildItem(rec ItemRecord) *world.Item {
	return &world.Item{
		ItemID:      rec.ItemID,
		Name:        rec.Name,
		Description: rec.Description,
		Visible:     rec.Visible,
		Takable:     rec.Takable,
		CustomVerbs: buildVerbs(rec.CustomVerbs),
	}
}

func buildVerbs(recs []VerbRecord) []*world.CustomVerb {
	var out []*world.CustomVerb
	for _, rec := range recs {
		out = append(out, &world.CustomVerb{Names: rec.Names, Commands: rec.Commands})
	}
	return out
}
