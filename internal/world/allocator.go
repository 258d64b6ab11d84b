package world

import "fmt"

// AllocateItemID issues the next world-unique item id.
func (s *WorldState) AllocateItemID() int {
	if s.NextItemID < 1 {
		s.NextItemID = 1
	}
	id := s.NextItemID
	s.NextItemID++
	return id
}

// CloneVerbs deep-copies verbs. The copies are transient.
func CloneVerbs(verbs []*CustomVerb) []*CustomVerb {
	if verbs == nil {
		return nil
	}
	out := make([]*CustomVerb, len(verbs))
	for i, v := range verbs {
		out[i] = &CustomVerb{
			Names:    append([]string(nil), v.Names...),
			Commands: append([]string(nil), v.Commands...),
		}
	}
	return out
}

// CloneItem deep-copies it and its verbs. The copy is transient and has no
// location; the item id is kept so clones inside one state stay addressable.
func CloneItem(it *Item) *Item {
	return &Item{
		ItemID:      it.ItemID,
		Name:        it.Name,
		Description: it.Description,
		Visible:     it.Visible,
		Takable:     it.Takable,
		CustomVerbs: CloneVerbs(it.CustomVerbs),
	}
}

// CloneState deep-copies the room graph, global verbs, saved items and the
// item counter of s. Exits are re-pointed at the cloned rooms. Inventories
// belong to players and are not copied. Every cloned entity is transient.
func CloneState(s *WorldState) (*WorldState, error) {
	clone := &WorldState{
		NextItemID:  s.NextItemID,
		CustomVerbs: CloneVerbs(s.CustomVerbs),
	}
	rooms := make(map[*Room]*Room, len(s.Rooms))
	for _, r := range s.Rooms {
		copyRoom := &Room{
			Alias:       r.Alias,
			Name:        r.Name,
			Description: r.Description,
			CustomVerbs: CloneVerbs(r.CustomVerbs),
		}
		if copyRoom.Alias == "" {
			copyRoom.Alias = NewAlias()
		}
		for _, it := range r.Items {
			copyRoom.AddItem(CloneItem(it))
		}
		rooms[r] = copyRoom
		clone.AddRoom(copyRoom)
	}
	if s.StartingRoom != nil {
		start, ok := rooms[s.StartingRoom]
		if !ok {
			return nil, fmt.Errorf("starting room %q is not part of the state", s.StartingRoom.Name)
		}
		clone.StartingRoom = start
	}
	for _, r := range s.Rooms {
		for _, e := range r.Exits {
			dest, ok := rooms[e.Destination]
			if !ok {
				return nil, fmt.Errorf("exit %q leads outside the state", e.Name)
			}
			rooms[r].AddExit(&Exit{
				Name:        e.Name,
				Description: e.Description,
				Visible:     e.Visible,
				Open:        e.Open,
				KeyNames:    append([]string(nil), e.KeyNames...),
				Destination: dest,
			})
		}
	}
	for _, it := range s.SavedItems {
		saved := CloneItem(it)
		saved.SavedIn = clone
		clone.SavedItems = append(clone.SavedItems, saved)
	}
	return clone, nil
}

// SaveItem stores a copy of it in the saved items of the state the user is
// in and gives the copy a fresh item id. Saved copies are never takable.
func (u *User) SaveItem(it *Item) (*Item, error) {
	if u.Room == nil || u.Room.State == nil {
		return nil, fmt.Errorf("%s is not inside a world", u.Name)
	}
	state := u.Room.State
	saved := CloneItem(it)
	saved.SavedIn = state
	saved.Takable = false
	saved.ItemID = state.AllocateItemID()
	state.SavedItems = append(state.SavedItems, saved)
	return saved, nil
}
