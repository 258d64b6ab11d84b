package commands

import (
	"fmt"

	"Kilnworld/internal/game"
	"Kilnworld/internal/persist"
	"Kilnworld/internal/world"
)

const (
	stepItemName        Step = "item_name"
	stepItemDescription Step = "item_description"
	stepItemTakable     Step = "item_takable"
)

var Item = Define(Definition{
	Name:        "item",
	Usage:       "item",
	Description: "create an item in this room",
	Tier:        game.Privileged,
	Scope:       ScopeRoom,
	Priority:    20,
}, func(ctx *Context) bool {
	room := ctx.Room()
	it := &world.Item{Visible: true}
	wz := NewWizard("item", game.Privileged, stepItemName, map[Step]State{
		stepItemName: {
			Prompt: func(*Context) string { return "Name of the item:" },
			Handle: func(_ *Context, msg string) Transition {
				name := game.Trim(msg)
				if err := world.ValidateItemName(room.State, room, name, false, nil); err != nil {
					return Reprompt(err)
				}
				it.Name = name
				return Next(stepItemDescription)
			},
		},
		stepItemDescription: {
			Prompt: func(*Context) string { return "Description:" },
			Handle: func(_ *Context, msg string) Transition {
				it.Description = game.Trim(msg)
				return Next(stepItemTakable)
			},
		},
		stepItemTakable: {
			Prompt: func(*Context) string { return "Can it be picked up? (yes/no)" },
			Handle: func(c *Context, msg string) Transition {
				takable, ok := parseYesNo(msg)
				if !ok {
					return Reprompt(world.ErrInvalidInput)
				}
				if takable {
					if err := world.ValidateItemName(room.State, room, it.Name, true, nil); err != nil {
						return Reprompt(err)
					}
				}
				it.Takable = takable
				it.Room = room
				if err := persist.SaveItem(c.Ctx, c.Hub.Store(), it); err != nil {
					c.storeFailed("create item", err)
					return Finish()
				}
				room.AddItem(it)
				c.Reply(fmt.Sprintf("%s is ready.", game.HighlightItem(it.Name)))
				if !c.User().MasterMode {
					c.Hub.BroadcastToRoom(room, game.Ansi(fmt.Sprintf("\r\n%s shapes %s out of thin air.",
						game.HighlightName(c.User().Name), game.HighlightItem(it.Name))), c.Session)
				}
				return Finish()
			},
		},
	})
	return wz.Begin(ctx, "You begin to shape a new item. Type '/' at any time to cancel.")
})
