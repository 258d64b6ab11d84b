package commands

import (
	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

const stepChooseSnapshot Step = "choose_snapshot"

var Deploy = Define(Definition{
	Name:        "*",
	Usage:       "*",
	Description: "deploy your own copy of a public world",
	Scope:       ScopeLobby,
	Priority:    5,
}, func(ctx *Context) bool {
	snaps := ctx.Hub.Snapshots(true)
	if len(snaps) == 0 {
		ctx.Reply("There are no public worlds to deploy.")
		return false
	}
	names := make([]string, len(snaps))
	for i, snap := range snaps {
		names[i] = snap.Name
	}

	var chosen *world.Snapshot
	wz := NewWizard("deploy", game.Free, stepChooseSnapshot, map[Step]State{
		stepChooseSnapshot: {
			Prompt: func(*Context) string {
				return menu("Which world do you want to deploy? ('/' to cancel)", names)
			},
			Handle: func(_ *Context, msg string) Transition {
				idx, err := menuIndex(msg, len(snaps))
				if err != nil {
					return Reprompt(err)
				}
				chosen = snaps[idx]
				return Next(stepWorldName)
			},
		},
		stepWorldName: {
			Prompt: func(*Context) string { return "Name of the new world: ('/' to cancel)" },
			Handle: func(c *Context, msg string) Transition {
				name := game.Trim(msg)
				if name == "" {
					return Reprompt(world.ErrEmptyName)
				}
				if _, err := c.Hub.DeploySnapshot(c.Ctx, c.User(), chosen, name); err != nil {
					c.storeFailed("deploy snapshot", err)
					return Finish()
				}
				c.Reply("Done.")
				showLobby(c)
				return Finish()
			},
		},
	}).OnCancel(showLobby)
	return wz.Begin(ctx, "")
})
