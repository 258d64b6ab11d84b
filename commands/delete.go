package commands

import (
	"errors"
	"fmt"

	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

const (
	stepChooseWorld  Step = "choose_world"
	stepConfirmWorld Step = "confirm_world"
)

var Delete = Define(Definition{
	Name:        "-",
	Usage:       "-",
	Description: "delete one of your worlds",
	Scope:       ScopeLobby,
	Priority:    5,
}, func(ctx *Context) bool {
	worlds := ctx.Hub.WorldsBy(ctx.User())
	if len(worlds) == 0 {
		ctx.Reply("You have not created any world.")
		return false
	}
	names := make([]string, len(worlds))
	for i, w := range worlds {
		names[i] = w.Name
	}

	var chosen *world.World
	wz := NewWizard("delete", game.Free, stepChooseWorld, map[Step]State{
		stepChooseWorld: {
			Prompt: func(*Context) string {
				return menu("Which world do you want to delete? IT IS IRREVERSIBLE! ('/' to cancel)", names)
			},
			Handle: func(_ *Context, msg string) Transition {
				idx, err := menuIndex(msg, len(worlds))
				if err != nil {
					return Reprompt(err)
				}
				chosen = worlds[idx]
				return Next(stepConfirmWorld)
			},
		},
		stepConfirmWorld: {
			Prompt: func(*Context) string {
				return fmt.Sprintf("Delete %q for good? (yes/no)", chosen.Name)
			},
			Handle: func(c *Context, msg string) Transition {
				confirmed, ok := parseYesNo(msg)
				if !ok {
					return Reprompt(world.ErrInvalidInput)
				}
				if !confirmed {
					c.Reply("Nothing was deleted.")
					showLobby(c)
					return Finish()
				}
				err := c.Hub.DeleteWorld(c.Ctx, c.User(), chosen)
				var cant *world.CantDeleteError
				switch {
				case err == nil:
					c.Reply("Done.")
				case errors.As(err, &cant), errors.Is(err, game.ErrWorldGone), errors.Is(err, game.ErrPermissionDenied):
					c.Fail("Could not delete it: " + err.Error())
				default:
					c.storeFailed("delete world", err)
				}
				showLobby(c)
				return Finish()
			},
		},
	}).OnCancel(showLobby)
	return wz.Begin(ctx, "")
})
