package commands

import (
	"fmt"
	"strings"

	"Kilnworld/internal/game"
)

// CancelToken aborts any wizard step.
const CancelToken = "/"

// Step names a state of a Wizard.
type Step string

// Transition is what a step decided after reading one message.
type Transition struct {
	next   Step
	finish bool
	err    error
}

// Next moves the wizard to step.
func Next(step Step) Transition { return Transition{next: step} }

// Reprompt keeps the wizard on the current step, reporting err if set.
func Reprompt(err error) Transition { return Transition{err: err} }

// Finish releases the session back to the router.
func Finish() Transition { return Transition{finish: true} }

// State is one node of a wizard's transition table.
type State struct {
	// Prompt is shown on entering the state and after every reprompt. It
	// may be nil.
	Prompt func(c *Context) string
	Handle func(c *Context, msg string) Transition
}

// Wizard is a multi-turn interaction over named steps. A step is entered at
// most once; going back to a visited step panics.
type Wizard struct {
	name     string
	tier     game.Tier
	states   map[Step]State
	current  Step
	visited  map[Step]bool
	cmd      *Command
	onCancel func(c *Context)
}

// NewWizard returns a wizard that starts at first.
func NewWizard(name string, tier game.Tier, first Step, states map[Step]State) *Wizard {
	if _, ok := states[first]; !ok {
		panic(fmt.Sprintf("commands: wizard %s has no step %q", name, first))
	}
	return &Wizard{
		name:    name,
		tier:    tier,
		states:  states,
		current: first,
		visited: map[Step]bool{first: true},
	}
}

// OnCancel registers fn to run when the user cancels.
func (w *Wizard) OnCancel(fn func(c *Context)) *Wizard {
	w.onCancel = fn
	return w
}

// Tier is the permission tier checked before every message.
func (w *Wizard) Tier() game.Tier { return w.tier }

// Current is the step waiting for the next message.
func (w *Wizard) Current() Step { return w.current }

// Begin attaches the wizard to the session and prompts the first step.
func (w *Wizard) Begin(c *Context, intro string) bool {
	w.cmd = c.Command
	c.Session.Active = w
	if intro != "" {
		c.Notify(intro)
	}
	w.prompt(c)
	return false
}

// Handle feeds one message to the current step.
func (w *Wizard) Handle(c *Context, msg string) {
	if c.Command == nil {
		c.Command = w.cmd
	}
	if strings.TrimSpace(msg) == CancelToken {
		w.release(c)
		c.Notify("Cancelled.")
		if w.onCancel != nil {
			w.onCancel(c)
		}
		return
	}

	t := w.states[w.current].Handle(c, msg)
	switch {
	case t.finish:
		w.release(c)
	case t.next == "":
		if t.err != nil {
			c.Fail(t.err.Error())
		}
		w.prompt(c)
	default:
		if w.visited[t.next] {
			panic(fmt.Sprintf("commands: wizard %s revisits step %q", w.name, t.next))
		}
		if _, ok := w.states[t.next]; !ok {
			panic(fmt.Sprintf("commands: wizard %s has no step %q", w.name, t.next))
		}
		w.current = t.next
		w.visited[t.next] = true
		w.prompt(c)
	}
}

func (w *Wizard) prompt(c *Context) {
	if p := w.states[w.current].Prompt; p != nil {
		if text := p(c); text != "" {
			c.Notify(text)
		}
	}
}

func (w *Wizard) release(c *Context) {
	if c.Session.Active == w {
		c.Session.Active = nil
	}
}
