package commands

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"Kilnworld/internal/game"
	"Kilnworld/internal/persist"
	"Kilnworld/internal/world"
)

var Go = Define(Definition{
	Name:        "go",
	Usage:       "go <exit>",
	Description: "walk through one of the exits of the room",
	Scope:       ScopeRoom,
	Priority:    10,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		ctx.Reply("Go where?")
		return false
	}
	room := ctx.Room()
	exit, err := world.ResolveExit(room, ctx.Arg)
	if errors.Is(err, world.ErrAmbiguous) {
		ctx.Fail(fmt.Sprintf("%s: %s", err, strings.Join(world.Matches(ctx.Arg, room.ExitNames()), ", ")))
		return false
	}
	if err != nil {
		ctx.Fail(err.Error())
		return false
	}
	move(ctx, exit)
	return false
})

// move takes the session through exit, narrating the departure and the
// arrival to whoever is in each room.
func move(ctx *Context, exit *world.Exit) {
	s := ctx.Session
	origin := ctx.Room()
	name := game.HighlightName(s.User.Name)

	if exit.Hidden() {
		ctx.Hub.BroadcastToRoom(origin, game.Ansi(fmt.Sprintf("\r\n%s leaves towards somewhere.", name)), s)
	} else {
		ctx.Hub.BroadcastToRoom(origin, game.Ansi(fmt.Sprintf("\r\n%s leaves through %s.", name, game.HighlightExit(exit.Name))), s)
	}

	s.User.Room = exit.Destination
	if err := persist.SaveUser(ctx.Ctx, ctx.Hub.Store(), s.User); err != nil {
		ctx.Hub.Logger().Warn("save location failed", zap.String("user", s.User.Name), zap.Error(err))
	}

	arrival := fmt.Sprintf("\r\n%s arrives from somewhere.", name)
	if back, ok := exit.Destination.ExitTo(origin); ok {
		arrival = fmt.Sprintf("\r\n%s arrives from %s.", name, game.HighlightExit(back.Name))
	}
	ctx.Hub.BroadcastToRoom(exit.Destination, game.Ansi(arrival), s)
	ctx.Hub.ShowRoom(s)
}
