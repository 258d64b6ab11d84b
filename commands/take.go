package commands

import (
	"errors"
	"fmt"
	"strings"

	"Kilnworld/internal/game"
	"Kilnworld/internal/persist"
	"Kilnworld/internal/world"
)

// ErrNotTakable rejects picking up scenery.
var ErrNotTakable = errors.New("you can't take that")

var Take = Define(Definition{
	Name:        "take",
	Usage:       "take <item>",
	Description: "pick up an item in the room",
	Scope:       ScopeRoom,
	Priority:    10,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		ctx.Reply("Take what?")
		return false
	}
	room := ctx.Room()
	it, err := world.ResolveItem(room.Items, ctx.Arg)
	if err != nil {
		ctx.Fail(err.Error())
		return false
	}
	if !it.Takable {
		ctx.Fail(ErrNotTakable.Error())
		return false
	}

	inv := room.State.InventoryFor(ctx.User())
	room.RemoveItem(it)
	inv.Add(it)
	if err := storeTransfer(ctx, it, inv); err != nil {
		inv.Remove(it)
		room.AddItem(it)
		ctx.storeFailed("take item", err)
		return false
	}
	ctx.Reply(fmt.Sprintf("You take %s.", game.HighlightItem(it.Name)))
	ctx.Hub.BroadcastToRoom(room, game.Ansi(fmt.Sprintf("\r\n%s takes %s.", game.HighlightName(ctx.User().Name), game.HighlightItem(it.Name))), ctx.Session)
	return false
})

var Drop = Define(Definition{
	Name:        "drop",
	Usage:       "drop <item>",
	Description: "leave something you carry in the room",
	Scope:       ScopeRoom,
	Priority:    10,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		ctx.Reply("Drop what?")
		return false
	}
	inv := carried(ctx)
	if inv == nil || len(inv.Items) == 0 {
		ctx.Reply("You are not carrying anything.")
		return false
	}
	it, err := world.ResolveItem(inv.Items, ctx.Arg)
	if err != nil {
		ctx.Fail(err.Error())
		return false
	}

	room := ctx.Room()
	inv.Remove(it)
	room.AddItem(it)
	if err := storeTransfer(ctx, it, inv); err != nil {
		room.RemoveItem(it)
		inv.Add(it)
		ctx.storeFailed("drop item", err)
		return false
	}
	ctx.Reply(fmt.Sprintf("You drop %s.", game.HighlightItem(it.Name)))
	ctx.Hub.BroadcastToRoom(room, game.Ansi(fmt.Sprintf("\r\n%s drops %s.", game.HighlightName(ctx.User().Name), game.HighlightItem(it.Name))), ctx.Session)
	return false
})

var Inventory = Define(Definition{
	Name:        "inventory",
	Usage:       "inventory",
	Description: "list what you carry in this world",
	Scope:       ScopeRoom,
	Priority:    10,
}, func(ctx *Context) bool {
	inv := carried(ctx)
	if inv == nil || len(inv.Items) == 0 {
		ctx.Reply("You are not carrying anything.")
		return false
	}
	names := make([]string, len(inv.Items))
	for i, it := range inv.Items {
		names[i] = game.HighlightItem(it.Name)
	}
	ctx.Reply("You carry: " + strings.Join(names, ", "))
	return false
})

// storeTransfer commits an item that moved between a room and inv. The
// item goes first so the inventory never lists an unknown item.
func storeTransfer(ctx *Context, it *world.Item, inv *world.Inventory) error {
	st := ctx.Hub.Store()
	if err := persist.SaveItem(ctx.Ctx, st, it); err != nil {
		return err
	}
	return persist.SaveInventory(ctx.Ctx, st, inv)
}
