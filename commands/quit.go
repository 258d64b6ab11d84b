package commands

var Quit = Define(Definition{
	Name:        "quit",
	Usage:       "quit",
	Description: "disconnect",
	Scope:       ScopeAnywhere,
	Priority:    90,
}, func(ctx *Context) bool {
	ctx.Reply("Goodbye.")
	return true
})
