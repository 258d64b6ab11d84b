package commands

import (
	"Kilnworld/internal/codec"
	"Kilnworld/internal/game"
)

var Export = Define(Definition{
	Name:        "export",
	Usage:       "export",
	Description: "print this world as text that '>' can import",
	Tier:        game.Creator,
	Scope:       ScopeRoom,
	Priority:    20,
}, func(ctx *Context) bool {
	data, err := codec.Encode(codec.Export(ctx.Room().State, carried(ctx)))
	if err != nil {
		ctx.storeFailed("export world", err)
		return false
	}
	ctx.Notify("Copy everything below. Paste it after '>' in the lobby to import it.")
	ctx.Session.Send("\r\n" + string(data))
	return false
})
