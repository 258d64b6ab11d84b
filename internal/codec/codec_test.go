package codec

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"Kilnworld/internal/persist"
	"Kilnworld/internal/store"
	"Kilnworld/internal/world"
)

func sampleState(owner *world.User) *world.WorldState {
	state := world.NewWorldState()
	hall := world.NewRoom("hall", "a long hall")
	cellar := world.NewRoom("cellar", "damp")
	state.AddRoom(hall)
	state.AddRoom(cellar)
	state.StartingRoom = hall
	hall.CustomVerbs = []*world.CustomVerb{{Names: []string{"knock"}, Commands: []string{"say knock"}}}
	hall.AddExit(&world.Exit{Name: "stairs", Description: "stone steps", Destination: cellar, Visible: true, Open: true})
	cellar.AddExit(&world.Exit{Name: "hatch", Destination: hall, KeyNames: []string{"key"}})
	hall.AddItem(&world.Item{Name: "lamp", Description: "brass", Visible: true})
	cellar.AddItem(&world.Item{Name: "barrel", CustomVerbs: []*world.CustomVerb{{Names: []string{"open"}}}})
	state.CustomVerbs = []*world.CustomVerb{{Names: []string{"dance"}, Commands: []string{"say la"}}}
	state.SavedItems = append(state.SavedItems, &world.Item{Name: "statue", ItemID: state.AllocateItemID(), SavedIn: state})
	state.InventoryFor(owner).Add(&world.Item{Name: "key", Takable: true, ItemID: state.AllocateItemID()})
	return state
}

func TestRoundTripPreservesGraph(t *testing.T) {
	owner := &world.User{Name: "ana"}
	state := sampleState(owner)
	exported := Export(state, state.InventoryFor(owner))

	data, err := Encode(exported)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	importer := &world.User{Name: "bea"}
	w, err := Build(decoded, importer, "copy")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	again := Export(w.State, w.State.InventoryFor(importer))

	if diff := cmp.Diff(exported, again, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if w.State.NextItemID != 3 {
		t.Fatalf("NextItemID = %d, want 3", w.State.NextItemID)
	}
}

func TestImportCommitsThroughStrictStore(t *testing.T) {
	owner := &world.User{Name: "ana"}
	state := sampleState(owner)
	p := Export(state, state.InventoryFor(owner))

	w, err := Build(p, &world.User{Name: "bea"}, "copy")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	st := store.NewMemory()
	if err := persist.CommitWorld(context.Background(), st, w); err != nil {
		t.Fatalf("CommitWorld: %v", err)
	}
	u, err := persist.Load(context.Background(), st)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(u.Worlds) != 1 {
		t.Fatalf("worlds = %d, want 1", len(u.Worlds))
	}
	loaded := u.Worlds[0]
	reloaded := Export(loaded.State, loaded.State.InventoryFor(loaded.Creator))
	if diff := cmp.Diff(p, reloaded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("stored graph mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRejectsUnknownAlias(t *testing.T) {
	p := Portable{
		StartingRoom: RoomRecord{Name: "hall", Alias: "a"},
		Exits:        []ExitRecord{{Name: "door", Room: "a", Destination: "missing"}},
	}
	if _, err := Build(p, &world.User{Name: "ana"}, "broken"); err == nil {
		t.Fatalf("expected error for an exit to an unknown alias")
	}
}

func TestBuildRejectsReservedSuffix(t *testing.T) {
	p := Portable{
		StartingRoom: RoomRecord{Name: "hall", Alias: "a", Items: []ItemRecord{{Name: "lamp #2"}}},
	}
	if _, err := Build(p, &world.User{Name: "ana"}, "broken"); !errors.Is(err, world.ErrWrongNameFormat) {
		t.Fatalf("Build error = %v, want ErrWrongNameFormat", err)
	}
}

func TestAssemblerThreeFragmentsEqualOne(t *testing.T) {
	owner := &world.User{Name: "ana"}
	state := sampleState(owner)
	data, err := Encode(Export(state, state.InventoryFor(owner)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	whole, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	text := string(data)
	third := len(text) / 3
	parts := []string{text[:third], text[third : 2*third], text[2*third:]}

	a := NewAssembler(0)
	for i, part := range parts[:2] {
		if _, err := a.Add(part); !errors.Is(err, ErrImportIncomplete) {
			t.Fatalf("fragment %d error = %v, want ErrImportIncomplete", i, err)
		}
	}
	got, err := a.Add(parts[2])
	if err != nil {
		t.Fatalf("final fragment: %v", err)
	}
	if diff := cmp.Diff(whole, got); diff != "" {
		t.Fatalf("assembled payload mismatch (-want +got):\n%s", diff)
	}
	if a.Len() != len(text) {
		t.Fatalf("Len() = %d, want %d", a.Len(), len(text))
	}
}

func TestAssemblerEnforcesLimit(t *testing.T) {
	a := NewAssembler(8)
	if _, err := a.Add(`{"start`); !errors.Is(err, ErrImportIncomplete) {
		t.Fatalf("first fragment error = %v, want ErrImportIncomplete", err)
	}
	if _, err := a.Add(`ing_room":{}}`); !errors.Is(err, ErrImportTooLarge) {
		t.Fatalf("second fragment error = %v, want ErrImportTooLarge", err)
	}
}

func TestYAMLTemplateDecodes(t *testing.T) {
	owner := &world.User{Name: "ana"}
	state := sampleState(owner)
	p := Export(state, nil)

	data, err := EncodeYAML(p)
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	got, err := DecodeYAML(data)
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if diff := cmp.Diff(p, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
	if _, err := BuildState(got, nil); err != nil {
		t.Fatalf("BuildState: %v", err)
	}
}
