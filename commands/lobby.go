package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

// errNoSuchEntry rejects a menu number outside the listed range.
var errNoSuchEntry = errors.New("type the number of one of the entries")

var Enter = Define(Definition{
	Name:        "enter",
	Usage:       "<number>",
	Description: "travel to the world with that number",
	Scope:       ScopeLobby,
	Priority:    0,
	Match:       isNumber,
}, func(ctx *Context) bool {
	worlds := ctx.Hub.Worlds()
	idx, err := menuIndex(ctx.Input, len(worlds))
	if err != nil {
		ctx.Fail(err.Error())
		return false
	}
	if err := ctx.Hub.EnterWorld(ctx.Ctx, ctx.Session, worlds[idx]); err != nil {
		if errors.Is(err, game.ErrWorldGone) {
			ctx.Fail(err.Error())
			return false
		}
		ctx.storeFailed("enter world", err)
	}
	return false
})

const stepWorldName Step = "world_name"

var Create = Define(Definition{
	Name:        "+",
	Usage:       "+",
	Description: "create a new world",
	Scope:       ScopeLobby,
	Priority:    5,
}, func(ctx *Context) bool {
	wz := NewWizard("create", game.Free, stepWorldName, map[Step]State{
		stepWorldName: {
			Prompt: func(*Context) string { return "Name of the new world:" },
			Handle: func(c *Context, msg string) Transition {
				name := game.Trim(msg)
				if name == "" {
					return Reprompt(world.ErrEmptyName)
				}
				if _, err := c.Hub.CreateWorld(c.Ctx, c.User(), name); err != nil {
					c.storeFailed("create world", err)
					return Finish()
				}
				c.Reply("Your new world is ready.")
				c.Hub.ShowLobby(c.Session)
				return Finish()
			},
		},
	})
	return wz.Begin(ctx, "Creating a new world. Type '/' to cancel.")
})

func isNumber(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// menuIndex parses a 0-based menu choice among n entries.
func menuIndex(msg string, n int) (int, error) {
	idx, err := strconv.Atoi(game.Trim(msg))
	if err != nil || idx < 0 {
		return -1, world.ErrInvalidInput
	}
	if idx >= n {
		return -1, errNoSuchEntry
	}
	return idx, nil
}

// menu renders a 0-based numbered list.
func menu(title string, entries []string) string {
	var b strings.Builder
	b.WriteString(title)
	for i, entry := range entries {
		fmt.Fprintf(&b, "\r\n%d. %s", i, entry)
	}
	return b.String()
}

func showLobby(c *Context) {
	c.Hub.ShowLobby(c.Session)
}
