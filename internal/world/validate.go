package world

import (
	"regexp"
	"strings"
)

var reservedSuffix = regexp.MustCompile(`#\d+$`)

// ValidateName checks the rules every exit and item name obeys.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if reservedSuffix.MatchString(trimmed) {
		return ErrWrongNameFormat
	}
	return nil
}

// ValidateExitName checks that name can label an exit leaving room inside
// state. self is the exit being named; it is ignored during clash checks.
func ValidateExitName(state *WorldState, room *Room, name string, self *Exit) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if room != nil && roomNameTaken(room, name, self) {
		return ErrRoomNameClash
	}
	if state != nil && takableNameTaken(state, name, nil) {
		return ErrTakableItemNameClash
	}
	return nil
}

// ValidateItemName checks that name can label an item placed in room (nil for
// items outside rooms) of state. Takable items additionally need a name no
// other item or exit of the state uses.
func ValidateItemName(state *WorldState, room *Room, name string, takable bool, self *Item) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if room != nil && roomNameTaken(room, name, self) {
		return ErrRoomNameClash
	}
	if state == nil {
		return nil
	}
	if takableNameTaken(state, name, self) {
		return ErrTakableItemNameClash
	}
	if takable && nameUsedInState(state, name, self) {
		return ErrTakableItemNameClash
	}
	return nil
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func roomNameTaken(room *Room, name string, self any) bool {
	for _, e := range room.Exits {
		if any(e) != self && sameName(e.Name, name) {
			return true
		}
	}
	for _, it := range room.Items {
		if any(it) != self && sameName(it.Name, name) {
			return true
		}
	}
	return false
}

func takableNameTaken(state *WorldState, name string, self *Item) bool {
	for _, it := range state.PlacedItems() {
		if it != self && it.Takable && sameName(it.Name, name) {
			return true
		}
	}
	return false
}

func nameUsedInState(state *WorldState, name string, self *Item) bool {
	for _, it := range state.PlacedItems() {
		if it != self && sameName(it.Name, name) {
			return true
		}
	}
	for _, r := range state.Rooms {
		for _, e := range r.Exits {
			if sameName(e.Name, name) {
				return true
			}
		}
	}
	return false
}
