package commands

import (
	"fmt"

	"Kilnworld/internal/game"
	"Kilnworld/internal/persist"
	"Kilnworld/internal/world"
)

const (
	stepRoomName        Step = "room_name"
	stepRoomDescription Step = "room_description"
	stepHereExit        Step = "here_exit"
	stepThereExit       Step = "there_exit"
)

// directPrefix is prepended to a default exit name until it stops clashing.
const directPrefix = "direct "

var Build = Define(Definition{
	Name:        "build",
	Usage:       "build",
	Description: "create a new room connected to this one",
	Tier:        game.Privileged,
	Scope:       ScopeRoom,
	Priority:    20,
}, func(ctx *Context) bool {
	b := &roomBuild{
		here:    ctx.Room(),
		state:   ctx.Room().State,
		newRoom: world.NewRoom("", ""),
	}
	b.hereExit = &world.Exit{Visible: true, Open: true, Destination: b.newRoom}
	b.thereExit = &world.Exit{Visible: true, Open: true, Destination: b.here}
	return b.wizard().Begin(ctx, "You begin to build a new room. Type '/' at any time to cancel.")
})

// roomBuild holds the transient room and exits until the last step commits
// them.
type roomBuild struct {
	here      *world.Room
	state     *world.WorldState
	newRoom   *world.Room
	hereExit  *world.Exit
	thereExit *world.Exit
}

func (b *roomBuild) wizard() *Wizard {
	return NewWizard("build", game.Privileged, stepRoomName, map[Step]State{
		stepRoomName: {
			Prompt: func(*Context) string { return "Name of the room:" },
			Handle: func(_ *Context, msg string) Transition {
				name := game.Trim(msg)
				if name == "" {
					return Reprompt(world.ErrEmptyName)
				}
				b.newRoom.Name = name
				return Next(stepRoomDescription)
			},
		},
		stepRoomDescription: {
			Prompt: func(*Context) string { return "Description:" },
			Handle: func(_ *Context, msg string) Transition {
				b.newRoom.Description = game.Trim(msg)
				return Next(stepHereExit)
			},
		},
		stepHereExit: {
			Prompt: func(*Context) string {
				return fmt.Sprintf("Name of the exit in %q towards %q [default: %q]",
					b.here.Name, b.newRoom.Name, b.defaultName(b.here, b.newRoom))
			},
			Handle: func(_ *Context, msg string) Transition {
				name := game.Trim(msg)
				if name == "" {
					name = b.defaultName(b.here, b.newRoom)
				}
				if err := world.ValidateExitName(b.state, b.here, name, nil); err != nil {
					return Reprompt(err)
				}
				b.hereExit.Name = name
				return Next(stepThereExit)
			},
		},
		stepThereExit: {
			Prompt: func(*Context) string {
				return fmt.Sprintf("Name of the exit in %q towards %q [default: %q]",
					b.newRoom.Name, b.here.Name, b.defaultName(b.newRoom, b.here))
			},
			Handle: func(c *Context, msg string) Transition {
				name := game.Trim(msg)
				if name == "" {
					name = b.defaultName(b.newRoom, b.here)
				}
				if err := world.ValidateExitName(b.state, b.newRoom, name, nil); err != nil {
					return Reprompt(err)
				}
				b.thereExit.Name = name
				if err := b.recheck(); err != nil {
					c.Fail("The room changed while you were building, nothing was built: " + err.Error())
					return Finish()
				}
				if err := b.commit(c); err != nil {
					c.storeFailed("build room", err)
					return Finish()
				}
				c.Reply("Congratulations! Your new room is ready.")
				if !c.User().MasterMode {
					c.Hub.BroadcastToRoom(b.here, game.Ansi(fmt.Sprintf(
						"\r\n%s's eyes go blank for a moment. A new exit appears in the room.",
						game.HighlightName(c.User().Name))), c.Session)
				}
				return Finish()
			},
		},
	})
}

// defaultName proposes "to <dest>" and prefixes it until it is a valid exit
// name for from.
func (b *roomBuild) defaultName(from, dest *world.Room) string {
	return defaultExitName("to "+dest.Name, b.state, from)
}

func defaultExitName(name string, state *world.WorldState, room *world.Room) string {
	for world.ValidateExitName(state, room, name, nil) != nil {
		if world.ValidateName(name) != nil {
			return name
		}
		name = directPrefix + name
	}
	return name
}

// recheck validates both exit names again right before commit, since other
// sessions may have changed the room between wizard turns.
func (b *roomBuild) recheck() error {
	if err := world.ValidateExitName(b.state, b.here, b.hereExit.Name, nil); err != nil {
		return fmt.Errorf("exit %q: %w", b.hereExit.Name, err)
	}
	if err := world.ValidateExitName(b.state, b.newRoom, b.thereExit.Name, nil); err != nil {
		return fmt.Errorf("exit %q: %w", b.thereExit.Name, err)
	}
	return nil
}

// commit stores the room and both exits, then links them into the live
// graph. The store writes are not transactional.
func (b *roomBuild) commit(c *Context) error {
	st := c.Hub.Store()
	b.newRoom.State = b.state
	if err := persist.SaveRoom(c.Ctx, st, b.newRoom); err != nil {
		return err
	}
	b.hereExit.Room = b.here
	b.thereExit.Room = b.newRoom
	if err := persist.SaveExit(c.Ctx, st, b.hereExit); err != nil {
		return err
	}
	if err := persist.SaveExit(c.Ctx, st, b.thereExit); err != nil {
		return err
	}
	b.state.AddRoom(b.newRoom)
	b.here.AddExit(b.hereExit)
	b.newRoom.AddExit(b.thereExit)
	return nil
}
