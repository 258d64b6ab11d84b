package world

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeStripsCaseAndDiacritics(t *testing.T) {
	cases := map[string]string{
		"Puérta":    "puerta",
		"  ÁRBOL  ": "arbol",
		"niño":      "nino",
		"plain":     "plain",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchesIsContainmentSet(t *testing.T) {
	candidates := []string{"north door", "North Gate", "cellar", "puérta roja", "Door"}
	fragments := []string{"", "door", "NORTH", "puerta", "x", "rt", "cellar"}
	for _, frag := range fragments {
		got := Matches(frag, candidates)
		var want []string
		for _, c := range candidates {
			if strings.Contains(Normalize(c), Normalize(frag)) {
				want = append(want, c)
			}
		}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Fatalf("Matches(%q) = %v, want %v", frag, got, want)
		}
	}
}

func TestResolveOutcomes(t *testing.T) {
	candidates := []string{"north door", "north gate", "cellar"}

	if _, err := Resolve("attic", candidates); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve(attic) error = %v, want ErrNotFound", err)
	}
	if _, err := Resolve("north", candidates); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("Resolve(north) error = %v, want ErrAmbiguous", err)
	}
	idx, err := Resolve("CELL", candidates)
	if err != nil {
		t.Fatalf("Resolve(CELL) unexpected error: %v", err)
	}
	if idx != 2 {
		t.Fatalf("Resolve(CELL) = %d, want 2", idx)
	}
}

func TestResolveOrdinalSelectsFromMatchSet(t *testing.T) {
	candidates := []string{"north door", "cellar", "north gate"}

	idx, err := Resolve("north #2", candidates)
	if err != nil {
		t.Fatalf("Resolve(north #2) unexpected error: %v", err)
	}
	if idx != 2 {
		t.Fatalf("Resolve(north #2) = %d, want 2", idx)
	}
	if _, err := Resolve("north #3", candidates); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve(north #3) error = %v, want ErrNotFound", err)
	}
}

func TestResolvePrefersContainmentOverOrdinal(t *testing.T) {
	candidates := []string{"room", "room #1 annex"}
	idx, err := Resolve("room #1", candidates)
	if err != nil {
		t.Fatalf("Resolve(room #1) unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("Resolve(room #1) = %d, want 1", idx)
	}
	if idx, err := Resolve("room #2", candidates); err != nil || idx != 1 {
		t.Fatalf("Resolve(room #2) = %d, %v, want 1", idx, err)
	}
}

func TestResolveExitUsesRoomOrder(t *testing.T) {
	hall := NewRoom("hall", "")
	cellar := NewRoom("cellar", "")
	hall.AddExit(&Exit{Name: "stairs down", Destination: cellar, Visible: true})
	hall.AddExit(&Exit{Name: "trapdoor", Destination: cellar})

	e, err := ResolveExit(hall, "trap")
	if err != nil {
		t.Fatalf("ResolveExit unexpected error: %v", err)
	}
	if e.Name != "trapdoor" {
		t.Fatalf("ResolveExit = %q, want %q", e.Name, "trapdoor")
	}
}
