package commands

import (
	"context"
	"strings"
	"testing"

	"Kilnworld/internal/codec"
	"Kilnworld/internal/persist"
)

func TestTakeAndDropPersistLocation(t *testing.T) {
	h := newTestHub(t)
	ana := login(t, h, "ana")
	w := newWorld(t, h, ana, "Keep")
	run(h, ana, "item", "lamp", "A brass lamp.", "yes")
	drainAll(ana)

	run(h, ana, "take lamp")
	if out := drainOutput(ana.Output); !strings.Contains(out, "You take lamp.") {
		t.Fatalf("take output = %q", out)
	}
	if len(w.State.StartingRoom.Items) != 0 {
		t.Fatalf("lamp is still in the room")
	}
	run(h, ana, "inventory")
	if out := drainOutput(ana.Output); !strings.Contains(out, "You carry: lamp") {
		t.Fatalf("inventory output = %q", out)
	}

	u, err := persist.Load(context.Background(), h.Store())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	state := u.Worlds[0].State
	if len(state.StartingRoom.Items) != 0 {
		t.Fatalf("reloaded room still holds %d items", len(state.StartingRoom.Items))
	}
	if len(state.Inventories) != 1 || len(state.Inventories[0].Items) != 1 {
		t.Fatalf("reloaded inventory is missing the lamp")
	}

	run(h, ana, "drop lamp")
	if out := drainOutput(ana.Output); !strings.Contains(out, "You drop lamp.") {
		t.Fatalf("drop output = %q", out)
	}
	if len(w.State.StartingRoom.Items) != 1 {
		t.Fatalf("lamp did not return to the room")
	}
}

func TestTakeRefusesScenery(t *testing.T) {
	h := newTestHub(t)
	ana := login(t, h, "ana")
	w := newWorld(t, h, ana, "Keep")
	run(h, ana, "item", "statue", "A marble statue.", "no")
	drainAll(ana)

	run(h, ana, "take statue")
	if out := drainOutput(ana.Output); !strings.Contains(out, ErrNotTakable.Error()) {
		t.Fatalf("take output = %q", out)
	}
	if len(w.State.StartingRoom.Items) != 1 {
		t.Fatalf("statue left the room")
	}
	run(h, ana, "drop statue")
	if out := drainOutput(ana.Output); !strings.Contains(out, "You are not carrying anything.") {
		t.Fatalf("drop output = %q", out)
	}
}

func TestSaveAllocatesItemIDs(t *testing.T) {
	h := newTestHub(t)
	ana := login(t, h, "ana")
	w := newWorld(t, h, ana, "Keep")
	run(h, ana, "item", "lamp", "A brass lamp.", "yes")
	drainAll(ana)

	run(h, ana, "save lamp", "save lamp")
	out := drainOutput(ana.Output)
	if !strings.Contains(out, "saved as item #1.") || !strings.Contains(out, "saved as item #2.") {
		t.Fatalf("save output = %q", out)
	}
	if len(w.State.SavedItems) != 2 || w.State.NextItemID != 3 {
		t.Fatalf("saved = %d, next id = %d", len(w.State.SavedItems), w.State.NextItemID)
	}

	u, err := persist.Load(context.Background(), h.Store())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := u.Worlds[0].State.NextItemID; got != 3 {
		t.Fatalf("reloaded next item id = %d, want 3", got)
	}
}

func TestSavedTakableItemSurvivesExportImport(t *testing.T) {
	h := newTestHub(t)
	ana := login(t, h, "ana")
	bob := login(t, h, "bob")
	w := newWorld(t, h, ana, "Keep")
	run(h, ana, "item", "lamp", "A brass lamp.", "yes", "save lamp")
	drainAll(ana)

	data, err := codec.Encode(codec.Export(w.State, nil))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	p, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	copied, err := h.ImportWorld(context.Background(), bob.User, p, "Copy")
	if err != nil {
		t.Fatalf("ImportWorld() error = %v", err)
	}
	if len(copied.State.SavedItems) != 1 || copied.State.SavedItems[0].Takable {
		t.Fatalf("imported saved items = %+v", copied.State.SavedItems)
	}
	if lamp := copied.State.StartingRoom.Items[0]; !lamp.Takable {
		t.Fatalf("imported room lamp lost its takable flag")
	}
}
