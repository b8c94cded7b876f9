package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/brahmapath/internal/remote/postgres"
)

var errNoRemote = errors.New("no remote configured. Use --remote, BRAHMAPATH_REMOTE or 'brahmapath keyring set remote'")

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	if ctx.RemoteDSN == "" {
		return errNoRemote
	}
	if err := postgres.ValidateConnString(ctx.RemoteDSN, ctx.RemoteFromKeyring); err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	count, err := postgres.Migrate(ctx.context(), ctx.RemoteDSN, func(msg string) {
		ctx.println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.println("No migrations to apply. Remote schema is up to date.")
	} else {
		ctx.printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
