package commands

import (
	"fmt"

	"Kilnworld/internal/game"
	"Kilnworld/internal/persist"
	"Kilnworld/internal/world"
)

var Save = Define(Definition{
	Name:        "save",
	Usage:       "save <item>",
	Description: "store a copy of an item in the world's saved items",
	Tier:        game.Privileged,
	Scope:       ScopeRoom,
	Priority:    20,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		ctx.Reply("Save what?")
		return false
	}
	items := append([]*world.Item(nil), ctx.Room().Items...)
	if inv := carried(ctx); inv != nil {
		items = append(items, inv.Items...)
	}
	it, err := world.ResolveItem(items, ctx.Arg)
	if err != nil {
		ctx.Fail(err.Error())
		return false
	}

	state := ctx.Room().State
	saved, err := ctx.User().SaveItem(it)
	if err != nil {
		ctx.Fail(err.Error())
		return false
	}
	st := ctx.Hub.Store()
	if err := persist.SaveItem(ctx.Ctx, st, saved); err != nil {
		state.SavedItems = state.SavedItems[:len(state.SavedItems)-1]
		ctx.storeFailed("save item", err)
		return false
	}
	if err := persist.SaveState(ctx.Ctx, st, state); err != nil {
		ctx.storeFailed("save item counter", err)
		return false
	}
	ctx.Reply(fmt.Sprintf("A copy of %s is saved as item #%d.", game.HighlightItem(saved.Name), saved.ItemID))
	return false
})
