package persist

import (
	"context"
	"errors"
	"fmt"

	"Kilnworld/internal/store"
	"Kilnworld/internal/world"
)

// DeleteWorld removes every document of w, referencing documents first.
// Users located in the world must have been moved out and saved before.
// A refusal from the store is reported as *world.CantDeleteError.
func DeleteWorld(ctx context.Context, st store.Store, w *world.World) error {
	s := w.State
	steps := []func() error{
		func() error { return drop(ctx, st, store.KindWorld, w.ID) },
		func() error {
			for _, inv := range s.Inventories {
				if err := drop(ctx, st, store.KindInventory, inv.ID); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			for _, r := range s.Rooms {
				for _, e := range r.Exits {
					if err := drop(ctx, st, store.KindExit, e.ID); err != nil {
						return err
					}
				}
			}
			return nil
		},
		func() error {
			for _, it := range s.Items() {
				if err := dropItem(ctx, st, it); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			if s.ID == "" {
				return nil
			}
			return saveState(ctx, st, s, false)
		},
		func() error {
			for _, r := range s.Rooms {
				if err := drop(ctx, st, store.KindRoom, r.ID); err != nil {
					return err
				}
				if err := dropVerbs(ctx, st, r.CustomVerbs); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			if err := drop(ctx, st, store.KindWorldState, s.ID); err != nil {
				return err
			}
			return dropVerbs(ctx, st, s.CustomVerbs)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			if errors.Is(err, store.ErrStillReferenced) {
				return &world.CantDeleteError{Reason: err.Error()}
			}
			return fmt.Errorf("delete world %q: %w", w.Name, err)
		}
	}
	return nil
}

func drop(ctx context.Context, st store.Store, kind store.Kind, id string) error {
	if id == "" {
		return nil
	}
	err := st.Delete(ctx, kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func dropItem(ctx context.Context, st store.Store, it *world.Item) error {
	if err := drop(ctx, st, store.KindItem, it.ID); err != nil {
		return err
	}
	return dropVerbs(ctx, st, it.CustomVerbs)
}

func dropVerbs(ctx context.Context, st store.Store, verbs []*world.CustomVerb) error {
	for _, v := range verbs {
		if err := drop(ctx, st, store.KindVerb, v.ID); err != nil {
			return err
		}
	}
	return nil
}
