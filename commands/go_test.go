package commands

import (
	"strings"
	"testing"

	"Kilnworld/internal/world"
)

func TestGoNarratesDepartureAndArrival(t *testing.T) {
	h := newTestHub(t)
	ana := login(t, h, "ana")
	bob := login(t, h, "bob")
	carl := login(t, h, "carl")
	w := newWorld(t, h, ana, "Keep")
	run(h, ana, "build", "Library", "Dusty shelves.", "", "")
	enter(t, h, bob, w)
	enter(t, h, carl, w)
	run(h, carl, "go libr")
	drainAll(ana, bob, carl)

	origin := w.State.StartingRoom
	run(h, ana, "go library")
	if ana.Room() == origin || ana.Room().Name != "Library" {
		t.Fatalf("ana is in %q, want Library", ana.Room().Name)
	}
	if out := drainOutput(bob.Output); !strings.Contains(out, "ana leaves through to Library.") {
		t.Fatalf("bob saw %q", out)
	}
	if out := drainOutput(carl.Output); !strings.Contains(out, "ana arrives from to Origin.") {
		t.Fatalf("carl saw %q", out)
	}
	if out := drainOutput(ana.Output); !strings.Contains(out, "Library") || !strings.Contains(out, "Dusty shelves.") {
		t.Fatalf("ana saw %q, want the new room", out)
	}
}

func TestGoThroughHiddenExitNarratesSomewhere(t *testing.T) {
	h := newTestHub(t)
	ana := login(t, h, "ana")
	bob := login(t, h, "bob")
	carl := login(t, h, "carl")
	w := newWorld(t, h, ana, "Keep")
	run(h, ana, "build", "Library", "", "", "")
	enter(t, h, bob, w)
	enter(t, h, carl, w)
	run(h, carl, "go library")
	for _, r := range w.State.Rooms {
		for _, e := range r.Exits {
			e.Visible = false
		}
	}
	drainAll(ana, bob, carl)

	run(h, ana, "go library")
	if out := drainOutput(bob.Output); !strings.Contains(out, "ana leaves towards somewhere.") {
		t.Fatalf("origin occupant saw %q", out)
	}
	if out := drainOutput(carl.Output); !strings.Contains(out, "ana arrives from somewhere.") {
		t.Fatalf("destination occupant saw %q", out)
	}
}

func TestGoReportsResolverErrors(t *testing.T) {
	h := newTestHub(t)
	ana := login(t, h, "ana")
	w := newWorld(t, h, ana, "Keep")
	run(h, ana, "build", "Library", "", "", "")
	run(h, ana, "build", "Library", "", "", "")
	drainOutput(ana.Output)

	run(h, ana, "go library")
	out := drainOutput(ana.Output)
	if !strings.Contains(out, world.ErrAmbiguous.Error()) || !strings.Contains(out, "to Library, direct to Library") {
		t.Fatalf("ambiguous go = %q", out)
	}
	run(h, ana, "go cellar")
	if out := drainOutput(ana.Output); !strings.Contains(out, world.ErrNotFound.Error()) {
		t.Fatalf("unknown go = %q", out)
	}
	if ana.Room() != w.State.StartingRoom {
		t.Fatalf("ana moved on a failed go")
	}

	run(h, ana, "go library #2")
	exit, err := world.ResolveExit(w.State.StartingRoom, "library #2")
	if err != nil {
		t.Fatalf("ResolveExit() error = %v", err)
	}
	if ana.Room() != exit.Destination {
		t.Fatalf("ordinal go did not follow the second exit")
	}
}
