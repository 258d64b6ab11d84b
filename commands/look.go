package commands

import (
	"fmt"
	"strings"

	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

var Look = Define(Definition{
	Name:        "look",
	Usage:       "look [target]",
	Description: "describe your surroundings or inspect an item or exit",
	Scope:       ScopeRoom,
	Priority:    10,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		ctx.Hub.ShowRoom(ctx.Session)
		return false
	}

	room := ctx.Room()
	var names []string
	var targets []any
	for _, it := range game.VisibleItems(room) {
		names = append(names, it.Name)
		targets = append(targets, it)
	}
	if inv := carried(ctx); inv != nil {
		for _, it := range inv.Items {
			names = append(names, it.Name)
			targets = append(targets, it)
		}
	}
	for _, e := range room.Exits {
		if !e.Hidden() {
			names = append(names, e.Name)
			targets = append(targets, e)
		}
	}

	idx, err := world.Resolve(ctx.Arg, names)
	if err != nil {
		ctx.Fail(err.Error())
		return false
	}
	switch target := targets[idx].(type) {
	case *world.Item:
		ctx.Reply(fmt.Sprintf("You study %s. %s", game.HighlightItem(target.Name), describe(target.Description, ctx.Session.Width)))
	case *world.Exit:
		ctx.Reply(fmt.Sprintf("Through %s you glimpse %s. %s",
			game.HighlightExit(target.Name),
			game.Style(target.Destination.Name, game.AnsiBold, game.AnsiCyan),
			describe(target.Description, ctx.Session.Width),
		))
	}
	return false
})

func describe(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "You see nothing special."
	}
	return game.WrapText(text, width)
}

// carried returns the inventory the user already has in the current world
// without creating one.
func carried(ctx *Context) *world.Inventory {
	room := ctx.Room()
	if room == nil || room.State == nil {
		return nil
	}
	u := ctx.User()
	for _, inv := range room.State.Inventories {
		if inv.User == u || (u.ID != "" && inv.User != nil && inv.User.ID == u.ID) {
			return inv
		}
	}
	return nil
}
