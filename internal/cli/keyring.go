package cli

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/julianstephens/brahmapath/internal/keyring"
	"github.com/julianstephens/brahmapath/internal/remote/postgres"
)

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Entry string `arg:"" help:"Secret to store: advice-key or remote."`
	Value string `arg:"" help:"The API key or PostgreSQL connection string."`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}

	if entry == keyring.Remote {
		if err := postgres.ValidateConnString(cmd.Value, false); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(entry, cmd.Value); err != nil {
		return err
	}
	ctx.printf("✓ %s stored successfully in OS keyring\n", entry)
	return nil
}

// KeyringGetCmd shows a stored secret with the sensitive part masked
type KeyringGetCmd struct {
	Entry string `arg:"" help:"Secret to show: advice-key or remote."`
}

func (cmd *KeyringGetCmd) Run(ctx *Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}
	value, err := keyring.Get(entry)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'brahmapath keyring set %s' to store one", entry, cmd.Entry)
		}
		return err
	}

	if entry == keyring.Remote {
		ctx.println(maskPassword(value))
	} else {
		ctx.println(maskKey(value))
	}
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring
type KeyringDeleteCmd struct {
	Entry string `arg:"" help:"Secret to delete: advice-key or remote."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}
	if err := keyring.Delete(entry); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", entry)
		}
		return err
	}
	ctx.printf("✓ %s deleted from OS keyring\n", entry)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		ctx.println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.println("✓ OS keyring is available")
	for _, e := range keyring.Entries {
		if _, err := keyring.Get(e); err == nil {
			ctx.printf("✓ %s is stored\n", e)
		} else {
			ctx.printf("ℹ No %s stored\n", e)
		}
	}
	return nil
}

var dsnPassword = regexp.MustCompile(`(password\s*=\s*)('[^']*'|\S+)`)

// maskPassword hides the password in a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return "****"
		}
		return u.Redacted()
	}
	return dsnPassword.ReplaceAllString(connStr, "${1}****")
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
