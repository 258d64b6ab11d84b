package commands

import (
	"errors"
	"strings"
	"testing"

	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

func newWizardContext() *Context {
	return &Context{Session: game.NewSession(game.KindPlayer, &world.User{Name: "ana"})}
}

func TestWizardAdvancesRepromptsAndFinishes(t *testing.T) {
	c := newWizardContext()
	var got []string
	wz := NewWizard("test", game.Free, "first", map[Step]State{
		"first": {
			Prompt: func(*Context) string { return "first?" },
			Handle: func(_ *Context, msg string) Transition {
				if msg == "" {
					return Reprompt(world.ErrInvalidInput)
				}
				got = append(got, msg)
				return Next("second")
			},
		},
		"second": {
			Prompt: func(*Context) string { return "second?" },
			Handle: func(_ *Context, msg string) Transition {
				got = append(got, msg)
				return Finish()
			},
		},
	})
	wz.Begin(c, "")
	if c.Session.Active != wz {
		t.Fatalf("Begin() did not attach the wizard")
	}

	wz.Handle(c, "")
	if wz.Current() != "first" {
		t.Fatalf("Current() = %q after invalid input, want first", wz.Current())
	}
	out := drainOutput(c.Session.Output)
	if strings.Count(out, "first?") != 2 || !strings.Contains(out, world.ErrInvalidInput.Error()) {
		t.Fatalf("output = %q, want the error and the prompt twice", out)
	}

	wz.Handle(c, "a")
	wz.Handle(c, "b")
	if strings.Join(got, ",") != "a,b" {
		t.Fatalf("handled %v, want [a b]", got)
	}
	if c.Session.Active != nil {
		t.Fatalf("Active = %v after Finish, want nil", c.Session.Active)
	}
}

func TestWizardCancelRunsHook(t *testing.T) {
	c := newWizardContext()
	cancelled := false
	wz := NewWizard("test", game.Free, "only", map[Step]State{
		"only": {Handle: func(*Context, string) Transition {
			t.Fatalf("step ran on cancel")
			return Finish()
		}},
	}).OnCancel(func(*Context) { cancelled = true })
	wz.Begin(c, "")

	wz.Handle(c, "  / ")
	if !cancelled || c.Session.Active != nil {
		t.Fatalf("cancel: hook = %v, active = %v", cancelled, c.Session.Active)
	}
}

func TestWizardPanicsOnRevisit(t *testing.T) {
	c := newWizardContext()
	wz := NewWizard("loop", game.Free, "a", map[Step]State{
		"a": {Handle: func(*Context, string) Transition { return Next("b") }},
		"b": {Handle: func(*Context, string) Transition { return Next("a") }},
	})
	wz.Begin(c, "")
	wz.Handle(c, "x")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("revisiting a step did not panic")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "revisits") {
			t.Fatalf("panic = %v, want revisit message", r)
		}
	}()
	wz.Handle(c, "y")
}

func TestNewWizardPanicsOnMissingFirstStep(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewWizard() with unknown first step did not panic")
		}
	}()
	NewWizard("broken", game.Free, "missing", map[Step]State{})
}

func TestParseYesNo(t *testing.T) {
	cases := map[string]struct{ value, ok bool }{
		"yes":  {true, true},
		" Y ":  {true, true},
		"no":   {false, true},
		"N":    {false, true},
		"okay": {false, false},
	}
	for in, want := range cases {
		value, ok := parseYesNo(in)
		if value != want.value || ok != want.ok {
			t.Fatalf("parseYesNo(%q) = %v, %v, want %v, %v", in, value, ok, want.value, want.ok)
		}
	}
}

func TestMenuIndex(t *testing.T) {
	if idx, err := menuIndex("1", 2); err != nil || idx != 1 {
		t.Fatalf("menuIndex(1) = %d, %v", idx, err)
	}
	if _, err := menuIndex("x", 2); !errors.Is(err, world.ErrInvalidInput) {
		t.Fatalf("menuIndex(x) = %v, want ErrInvalidInput", err)
	}
	if _, err := menuIndex("2", 2); !errors.Is(err, errNoSuchEntry) {
		t.Fatalf("menuIndex(2) = %v, want errNoSuchEntry", err)
	}
}
