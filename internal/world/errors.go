package world

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongNameFormat rejects names ending in the reserved "#<digits>" suffix.
	ErrWrongNameFormat = errors.New("names cannot end with # followed by a number")
	// ErrRoomNameClash indicates an exit or item with that name already exists in the room.
	ErrRoomNameClash = errors.New("there is already an item or exit with that name in this room")
	// ErrTakableItemNameClash indicates the name is used by a takable item elsewhere in the world.
	ErrTakableItemNameClash = errors.New("takable items need a name that is unique in the whole world")
	// ErrEmptyName rejects blank names.
	ErrEmptyName = errors.New("names cannot be empty")
	// ErrNotFound indicates no candidate matched.
	ErrNotFound = errors.New("nothing matches that name")
	// ErrAmbiguous indicates more than one candidate matched.
	ErrAmbiguous = errors.New("more than one thing matches that name, be more specific")
	// ErrInvalidInput indicates an empty or malformed answer to a prompt.
	ErrInvalidInput = errors.New("invalid input")
)

// CantDeleteError reports a deletion refused because a precondition failed.
type CantDeleteError struct {
	Reason string
}

func (e *CantDeleteError) Error() string {
	return fmt.Sprintf("cannot delete: %s", e.Reason)
}
