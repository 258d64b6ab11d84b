package commands

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"Kilnworld/internal/codec"
	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

const stepImportPayload Step = "import_payload"

const importInstructions = "Now paste the text of the world, as printed by 'export'. " +
	"Long text may arrive in several pieces; nothing is imported until the whole text is valid. " +
	"Send '/' to cancel."

var Import = Define(Definition{
	Name:        ">",
	Usage:       ">",
	Description: "import a world from exported text",
	Scope:       ScopeLobby,
	Priority:    5,
}, func(ctx *Context) bool {
	var name string
	payload := codec.NewAssembler(ctx.Hub.ImportLimit())
	wz := NewWizard("import", game.Free, stepWorldName, map[Step]State{
		stepWorldName: {
			Prompt: func(*Context) string { return "Name of the imported world: ('/' to cancel)" },
			Handle: func(_ *Context, msg string) Transition {
				name = game.Trim(msg)
				if name == "" {
					return Reprompt(world.ErrEmptyName)
				}
				return Next(stepImportPayload)
			},
		},
		stepImportPayload: {
			Prompt: func(*Context) string {
				if payload.Len() == 0 {
					return importInstructions
				}
				return "Not a complete world yet. Waiting for the rest ('/' to cancel)."
			},
			Handle: func(c *Context, msg string) Transition {
				c.Reply(fmt.Sprintf("Received a message of %d characters.", len([]rune(msg))))
				p, err := payload.Add(msg)
				switch {
				case errors.Is(err, codec.ErrImportIncomplete):
					return Reprompt(nil)
				case errors.Is(err, codec.ErrImportTooLarge):
					c.Fail("The import was abandoned: " + err.Error())
					showLobby(c)
					return Finish()
				case err != nil:
					c.storeFailed("import world", err)
					return Finish()
				}

				c.Notify("Valid world text, building the world.")
				w, err := c.Hub.ImportWorld(c.Ctx, c.User(), p, name)
				if err != nil {
					c.Hub.Logger().Warn("import failed", zap.String("user", c.User().Name), zap.String("world", name), zap.Error(err))
					c.Fail("The import failed: " + err.Error())
					showLobby(c)
					return Finish()
				}
				c.Reply(fmt.Sprintf("Your new world %s is ready. Items from the exported inventory are now in yours.", game.Style(w.Name, game.AnsiBold)))
				showLobby(c)
				return Finish()
			},
		},
	}).OnCancel(showLobby)
	return wz.Begin(ctx, "")
})
