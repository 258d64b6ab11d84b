package world

import "testing"

func TestExitToSkipsHiddenExits(t *testing.T) {
	hall := NewRoom("hall", "")
	cellar := NewRoom("cellar", "")
	trapdoor := &Exit{Name: "trapdoor", Destination: hall}
	stairs := &Exit{Name: "stairs", Destination: hall, Visible: true}
	cellar.AddExit(trapdoor)
	cellar.AddExit(stairs)

	got, ok := cellar.ExitTo(hall)
	if !ok || got != stairs {
		t.Fatalf("ExitTo(hall) = %v, %v, want stairs", got, ok)
	}
	if _, ok := hall.ExitTo(cellar); ok {
		t.Fatalf("ExitTo found an exit in a room without exits")
	}
}

func TestPlacedItemsLeavesOutSavedItems(t *testing.T) {
	state := NewWorldState()
	hall := NewRoom("hall", "")
	state.AddRoom(hall)
	hall.AddItem(&Item{Name: "lamp"})
	state.InventoryFor(&User{Name: "ana"}).Add(&Item{Name: "key"})
	state.SavedItems = append(state.SavedItems, &Item{Name: "statue", SavedIn: state})

	if got := len(state.PlacedItems()); got != 2 {
		t.Fatalf("PlacedItems() = %d items, want 2", got)
	}
	if got := len(state.Items()); got != 3 {
		t.Fatalf("Items() = %d items, want 3", got)
	}
}
