package game

import "errors"

// Tier is the permission level a verb requires.
type Tier int

const (
	// Free verbs are always allowed.
	Free Tier = iota
	// Privileged verbs edit the world: the creator, observers, and everyone
	// in worlds with AllCanEdit set may use them.
	Privileged
	// Creator verbs are reserved to the world's creator.
	Creator
)

func (t Tier) String() string {
	switch t {
	case Free:
		return "free"
	case Privileged:
		return "privileged"
	case Creator:
		return "creator"
	default:
		return "unknown"
	}
}

// ErrPermissionDenied is returned by Authorize when the tier is not met.
var ErrPermissionDenied = errors.New("you are not allowed to do that in this world")

// Authorize checks whether s may run a verb of tier. Sessions in the lobby
// are always allowed.
func Authorize(s *Session, tier Tier) error {
	if tier == Free || s == nil || s.User == nil {
		return nil
	}
	w := s.World()
	if w == nil {
		return nil
	}
	switch tier {
	case Privileged:
		if w.AllCanEdit || s.Observer() || w.IsCreator(s.User) {
			return nil
		}
	case Creator:
		if w.IsCreator(s.User) {
			return nil
		}
	}
	return ErrPermissionDenied
}
