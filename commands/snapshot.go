package commands

import (
	"errors"
	"strings"

	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

// errSnapshotExists rejects a snapshot name already in use.
var errSnapshotExists = errors.New("there is already a snapshot with that name")

const (
	stepSnapshotName   Step = "name"
	stepSnapshotPublic Step = "public"
)

var Snapshot = Define(Definition{
	Name:        "snapshot",
	Usage:       "snapshot",
	Description: "save this world as a template others can deploy",
	Tier:        game.Creator,
	Scope:       ScopeRoom,
	Priority:    20,
}, func(ctx *Context) bool {
	var name string
	wz := NewWizard("snapshot", game.Creator, stepSnapshotName, map[Step]State{
		stepSnapshotName: {
			Prompt: func(*Context) string { return "Name of the snapshot:" },
			Handle: func(c *Context, msg string) Transition {
				msg = game.Trim(msg)
				if msg == "" {
					return Reprompt(world.ErrEmptyName)
				}
				if c.Hub.HasSnapshot(msg) {
					return Reprompt(errSnapshotExists)
				}
				name = msg
				return Next(stepSnapshotPublic)
			},
		},
		stepSnapshotPublic: {
			Prompt: func(*Context) string { return "Should everyone be able to deploy it? (yes/no)" },
			Handle: func(c *Context, msg string) Transition {
				public, ok := parseYesNo(msg)
				if !ok {
					return Reprompt(world.ErrInvalidInput)
				}
				if _, err := c.Hub.TakeSnapshot(c.Ctx, c.World(), name, public); err != nil {
					c.storeFailed("take snapshot", err)
					return Finish()
				}
				c.Reply("Snapshot " + game.Style(name, game.AnsiBold) + " saved.")
				return Finish()
			},
		},
	})
	return wz.Begin(ctx, "Taking a snapshot of "+ctx.World().Name+". Type '/' to cancel.")
})

func parseYesNo(msg string) (bool, bool) {
	switch strings.ToLower(game.Trim(msg)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
