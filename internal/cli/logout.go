package cli

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if _, err := ctx.Start(ctx.context()); err != nil {
		return err
	}

	// The cache is cleared below; keep a copy first.
	ctx.PerformAutomaticBackup()

	if err := ctx.App.Logout(ctx.context()); err != nil {
		return err
	}
	ctx.println("✓ Signed out. Local progress cleared; a backup was kept.")
	return nil
}
