// Package commands holds the verbs a Kilnworld session can type and the
// engine that routes each line either to the verb that matches it or to the
// wizard the session is already talking to.
package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

// Scope restricts where a verb can start.
type Scope int

const (
	// ScopeRoom verbs need the session to be inside a world.
	ScopeRoom Scope = iota
	// ScopeLobby verbs only start from the lobby.
	ScopeLobby
	// ScopeAnywhere verbs start in both places.
	ScopeAnywhere
)

// Definition describes a verb.
type Definition struct {
	Name        string
	Usage       string
	Description string
	Tier        game.Tier
	Scope       Scope
	// Priority orders predicate evaluation; lower values are tried first.
	Priority int
	// Match overrides the default predicate, which compares the first word
	// of the line with Name.
	Match func(line string) bool
}

// Handler runs a verb. Returning true ends the session.
type Handler func(*Context) bool

// Command is a registered verb.
type Command struct {
	Definition
	Handler Handler
	seq     int
}

// Context carries the state of one turn.
type Context struct {
	Ctx     context.Context
	Hub     *game.Hub
	Session *game.Session
	// Raw is the line as received; wizard steps that need exact payloads
	// read it instead of Arg.
	Raw     string
	Arg     string
	Input   string
	Command *Command
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Command{}
	ordered    []*Command
)

// Define registers a verb. It panics on programmer errors such as duplicate
// names or a missing handler.
func Define(def Definition, handler Handler) *Command {
	if handler == nil {
		panic("commands: nil handler for " + def.Name)
	}
	name := strings.ToLower(strings.TrimSpace(def.Name))
	if name == "" {
		panic("commands: command name must not be empty")
	}
	def.Name = name
	if def.Match == nil {
		def.Match = firstWord(name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("commands: duplicate command %q", name))
	}
	cmd := &Command{Definition: def, Handler: handler, seq: len(ordered)}
	registry[name] = cmd
	ordered = append(ordered, cmd)
	slices.SortStableFunc(ordered, func(a, b *Command) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return a.seq - b.seq
	})
	return cmd
}

func firstWord(name string) func(string) bool {
	return func(line string) bool {
		fields := strings.Fields(line)
		return len(fields) > 0 && strings.ToLower(fields[0]) == name
	}
}

// All returns the registered commands in evaluation order.
func All() []*Command {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Clone(ordered)
}

// Lookup returns the command registered under name.
func Lookup(name string) (*Command, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cmd, ok := registry[strings.ToLower(name)]
	return cmd, ok
}

// Available reports whether the command can start for s.
func (c *Command) Available(s *game.Session) bool {
	inRoom := s.Room() != nil
	switch c.Scope {
	case ScopeRoom:
		return inRoom
	case ScopeLobby:
		return !inRoom
	default:
		return true
	}
}

// match returns the first command, in priority order, whose predicate
// accepts line for s.
func match(s *game.Session, line string) *Command {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, cmd := range ordered {
		if cmd.Available(s) && cmd.Match(line) {
			return cmd
		}
	}
	return nil
}

// Dispatch executes one line for s. While s talks to a wizard the line goes
// to the wizard's current step; otherwise the first matching verb starts.
// The world the session occupies stays locked for the whole turn.
func Dispatch(ctx context.Context, h *game.Hub, s *game.Session, line string) bool {
	if w := s.World(); w != nil {
		w.Lock()
		defer w.Unlock()
	}
	c := &Context{Ctx: ctx, Hub: h, Session: s, Raw: line}

	if s.Active != nil {
		wz, ok := s.Active.(*Wizard)
		if !ok {
			s.Active = nil
			return false
		}
		if err := game.Authorize(s, wz.Tier()); err != nil {
			s.Active = nil
			c.Fail(err.Error())
			return false
		}
		wz.Handle(c, line)
		return false
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	cmd := match(s, trimmed)
	if cmd == nil {
		c.Reply("Unknown command. Type 'help'.")
		return false
	}
	if err := game.Authorize(s, cmd.Tier); err != nil {
		c.Fail(err.Error())
		return false
	}
	input, arg, _ := strings.Cut(trimmed, " ")
	c.Input = input
	c.Arg = strings.TrimSpace(arg)
	c.Command = cmd
	return cmd.Handler(c)
}

// Reply sends text on a fresh line.
func (c *Context) Reply(text string) {
	c.Session.Send(game.Ansi("\r\n" + text))
}

// Notify sends a highlighted system message.
func (c *Context) Notify(text string) {
	c.Session.Send(game.Notice(text))
}

// Fail sends an error message.
func (c *Context) Fail(text string) {
	c.Session.Send(game.Failure(text))
}

// User is the session's user.
func (c *Context) User() *world.User { return c.Session.User }

// Room is the room the session occupies, nil in the lobby.
func (c *Context) Room() *world.Room { return c.Session.Room() }

// World is the world the session occupies, nil in the lobby.
func (c *Context) World() *world.World { return c.Session.World() }

// storeFailed logs a persistence failure and tells the user the action did
// not stick.
func (c *Context) storeFailed(action string, err error) {
	c.Hub.Logger().Error(action+" failed",
		zap.String("user", c.User().Name),
		zap.String("command", c.commandName()),
		zap.Error(err),
	)
	c.Fail("Something went wrong while saving. Please try again later.")
}

func (c *Context) commandName() string {
	if c.Command == nil {
		return ""
	}
	return c.Command.Name
}
