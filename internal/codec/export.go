package codec

import "Kilnworld/internal/world"

// Export captures s and the exporting user's inventory. inv may be nil.
func Export(s *world.WorldState, inv *world.Inventory) Portable {
	p := Portable{
		OtherRooms:  []RoomRecord{},
		Exits:       []ExitRecord{},
		CustomVerbs: exportVerbs(s.CustomVerbs),
		SavedItems:  exportItems(s.SavedItems),
		Inventory:   []ItemRecord{},
		NextRoomID:  s.NextItemID,
	}
	if s.StartingRoom != nil {
		p.StartingRoom = exportRoom(s.StartingRoom)
	}
	for _, r := range s.OtherRooms() {
		p.OtherRooms = append(p.OtherRooms, exportRoom(r))
	}
	for _, r := range s.Rooms {
		for _, e := range r.Exits {
			p.Exits = append(p.Exits, ExitRecord{
				Name:        e.Name,
				Description: e.Description,
				Room:        r.Alias,
				Destination: e.Destination.Alias,
				Visible:     e.Visible,
				Open:        e.Open,
				KeyNames:    append([]string{}, e.KeyNames...),
			})
		}
	}
	if inv != nil {
		p.Inventory = exportItems(inv.Items)
	}
	return p
}

func exportRoom(r *world.Room) RoomRecord {
	return RoomRecord{
		Name:        r.Name,
		Alias:       r.Alias,
		Description: r.Description,
		Items:       exportItems(r.Items),
		CustomVerbs: exportVerbs(r.CustomVerbs),
	}
}

func exportItems(items []*world.Item) []ItemRecord {
	out := make([]ItemRecord, 0, len(items))
	for _, it := range items {
		out = append(out, ItemRecord{
			ItemID:      it.ItemID,
			Name:        it.Name,
			Description: it.Description,
			Visible:     it.Visible,
			Takable:     it.Takable,
			CustomVerbs: exportVerbs(it.CustomVerbs),
		})
	}
	return out
}

func exportVerbs(verbs []*world.CustomVerb) []VerbRecord {
	out := make([]VerbRecord, 0, len(verbs))
	for _, v := range verbs {
		out = append(out, VerbRecord{
			Names:    append([]string{}, v.Names...),
			Commands: append([]string{}, v.Commands...),
		})
	}
	return out
}
