package world

import (
	"errors"
	"testing"
)

func TestValidateNameRejectsReservedSuffix(t *testing.T) {
	tests := []struct {
		name string
		want error
	}{
		{"door", nil},
		{"door #2", ErrWrongNameFormat},
		{"door#15", ErrWrongNameFormat},
		{"room #a", nil},
		{"   ", ErrEmptyName},
	}
	for _, tt := range tests {
		if err := ValidateName(tt.name); !errors.Is(err, tt.want) {
			t.Fatalf("ValidateName(%q) = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestValidateExitNameDetectsRoomClash(t *testing.T) {
	state := NewWorldState()
	hall := NewRoom("hall", "")
	state.AddRoom(hall)
	hall.AddItem(&Item{Name: "Lamp"})
	hall.AddExit(&Exit{Name: "north", Destination: hall})

	if err := ValidateExitName(state, hall, "lamp", nil); !errors.Is(err, ErrRoomNameClash) {
		t.Fatalf("ValidateExitName(lamp) = %v, want ErrRoomNameClash", err)
	}
	if err := ValidateExitName(state, hall, "NORTH", nil); !errors.Is(err, ErrRoomNameClash) {
		t.Fatalf("ValidateExitName(NORTH) = %v, want ErrRoomNameClash", err)
	}
	if err := ValidateExitName(state, hall, "north", hall.Exits[0]); err != nil {
		t.Fatalf("renaming an exit to its own name should pass, got %v", err)
	}
}

func TestValidateTakableNamesAreWorldUnique(t *testing.T) {
	state := NewWorldState()
	hall := NewRoom("hall", "")
	cellar := NewRoom("cellar", "")
	state.AddRoom(hall)
	state.AddRoom(cellar)
	hall.AddItem(&Item{Name: "key", Takable: true})
	hall.AddExit(&Exit{Name: "ladder", Destination: cellar})

	if err := ValidateExitName(state, cellar, "key", nil); !errors.Is(err, ErrTakableItemNameClash) {
		t.Fatalf("exit named like a takable item = %v, want ErrTakableItemNameClash", err)
	}
	if err := ValidateItemName(state, cellar, "key", false, nil); !errors.Is(err, ErrTakableItemNameClash) {
		t.Fatalf("item named like a takable item = %v, want ErrTakableItemNameClash", err)
	}
	if err := ValidateItemName(state, cellar, "ladder", true, nil); !errors.Is(err, ErrTakableItemNameClash) {
		t.Fatalf("takable item named like an exit = %v, want ErrTakableItemNameClash", err)
	}
	if err := ValidateItemName(state, cellar, "barrel", true, nil); err != nil {
		t.Fatalf("unused name should pass, got %v", err)
	}
}

func TestValidateIgnoresSavedItems(t *testing.T) {
	state := NewWorldState()
	hall := NewRoom("hall", "")
	state.AddRoom(hall)
	state.SavedItems = append(state.SavedItems, &Item{Name: "lamp", SavedIn: state})

	if err := ValidateItemName(state, hall, "lamp", true, nil); err != nil {
		t.Fatalf("takable item named like a saved copy = %v, want nil", err)
	}
}
