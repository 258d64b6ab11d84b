package commands

var Leave = Define(Definition{
	Name:        "leave",
	Usage:       "leave",
	Description: "go back to the lobby",
	Scope:       ScopeRoom,
	Priority:    10,
}, func(ctx *Context) bool {
	if err := ctx.Hub.LeaveWorld(ctx.Ctx, ctx.Session); err != nil {
		ctx.storeFailed("leave world", err)
		return false
	}
	ctx.Hub.ShowLobby(ctx.Session)
	return false
})
