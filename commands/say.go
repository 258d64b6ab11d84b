package commands

import (
	"fmt"

	"Kilnworld/internal/game"
)

var Say = Define(Definition{
	Name:        "say",
	Usage:       "say <message>",
	Description: "talk to everyone in the room",
	Scope:       ScopeRoom,
	Priority:    10,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		ctx.Notify("Say what?")
		return false
	}
	ctx.Hub.BroadcastToRoom(ctx.Room(), game.Ansi(fmt.Sprintf("\r\n%s says: %s", game.HighlightName(ctx.User().Name), ctx.Arg)), ctx.Session)
	ctx.Reply(fmt.Sprintf("%s %s", game.Style("You say:", game.AnsiBold, game.AnsiYellow), ctx.Arg))
	return false
})
