package cli

import (
	"github.com/julianstephens/brahmapath/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if err := ctx.Open(ctx.context()); err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	return tui.Run(ctx.context(), ctx.App)
}
