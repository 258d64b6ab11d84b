package commands

import (
	"fmt"
	"strings"

	"Kilnworld/internal/game"
)

var Help = Define(Definition{
	Name:        "help",
	Usage:       "help [command]",
	Description: "show this message, or how to use one command",
	Scope:       ScopeAnywhere,
	Priority:    90,
}, func(ctx *Context) bool {
	if ctx.Arg != "" {
		cmd, ok := Lookup(ctx.Arg)
		if !ok {
			ctx.Fail(fmt.Sprintf("There is no command called %q.", ctx.Arg))
			return false
		}
		ctx.Reply(fmt.Sprintf("%s - %s", game.Style(cmd.Usage, game.AnsiBold), cmd.Description))
		return false
	}
	var builder strings.Builder
	builder.WriteString(game.Style("\r\nCommands:\r\n", game.AnsiBold))
	for _, cmd := range All() {
		if !cmd.Available(ctx.Session) || game.Authorize(ctx.Session, cmd.Tier) != nil {
			continue
		}
		usage := cmd.Usage
		if strings.TrimSpace(usage) == "" {
			usage = cmd.Name
		}
		builder.WriteString(fmt.Sprintf("  %-18s - %s\r\n", usage, cmd.Description))
	}
	builder.WriteString("Type '" + CancelToken + "' at any prompt to cancel.")
	ctx.Session.Send(game.Ansi(builder.String()))
	return false
})
