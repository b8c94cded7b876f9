package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/brahmapath/internal/backup"
	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/keyring"
	"github.com/julianstephens/brahmapath/internal/models"
	"github.com/julianstephens/brahmapath/internal/remote/postgres"
	"github.com/julianstephens/brahmapath/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false

	// Check 1: Local profile readable
	profile, cachePath, err := readLocalProfile(ctx.DataPath)
	readable := err == nil || errors.Is(err, storage.ErrNoProfile)
	switch {
	case err == nil:
		ctx.printf("✓ Local profile: OK\n")
	case errors.Is(err, storage.ErrNoProfile):
		ctx.printf("✓ Local profile: OK (nothing saved yet)\n")
	default:
		ctx.printf("❌ Local profile: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	}

	// Check 2: Profile integrity (only if a profile was read)
	if err == nil {
		if err := checkProfileIntegrity(profile); err != nil {
			ctx.printf("❌ Profile integrity: FAIL\n")
			ctx.printf("   Error: %v\n", err)
			hasError = true
		} else {
			ctx.printf("✓ Profile integrity: OK\n")
		}
	} else {
		ctx.printf("⊘ Profile integrity: SKIPPED (no profile)\n")
	}

	// Check 3: Backups present (warning only)
	if readable {
		if err := checkBackupsPresent(cachePath); err != nil {
			ctx.printf("⚠ Backups present: WARNING\n")
			ctx.printf("   %v\n", err)
		} else {
			ctx.printf("✓ Backups present: OK\n")
		}
	}

	// Check 4: OS keyring (warning only)
	if keyring.IsAvailable() {
		ctx.printf("✓ OS keyring: OK\n")
	} else {
		ctx.printf("⚠ OS keyring: WARNING\n")
		ctx.printf("   Secrets must be passed by flag or environment\n")
	}

	// Check 5: Remote schema
	if ctx.RemoteDSN == "" {
		ctx.printf("⊘ Remote schema: SKIPPED (offline, no remote configured)\n")
	} else if err := checkRemoteSchema(ctx.context(), ctx.RemoteDSN, ctx.RemoteFromKeyring); err != nil {
		ctx.printf("❌ Remote schema: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Remote schema: OK\n")
	}

	// Check 6: Advice backend
	if ctx.AdviceKey == "" {
		ctx.printf("⊘ Advice backend: SKIPPED (no API key, fixed reminders are used)\n")
	} else {
		ctx.printf("✓ Advice backend: configured\n")
	}

	// Check 7: Clock sanity
	if err := checkClock(time.Now()); err != nil {
		ctx.printf("❌ Clock: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Clock: OK\n")
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

func readLocalProfile(path string) (models.Profile, string, error) {
	if path == "" {
		path = constants.DefaultConfigPath
	}
	cache, err := storage.New(path)
	if err != nil {
		return models.Profile{}, "", err
	}
	if err := cache.Init(); err != nil {
		return models.Profile{}, cache.GetConfigPath(), err
	}
	defer cache.Close()
	p, err := cache.Read()
	return p, cache.GetConfigPath(), err
}

func checkProfileIntegrity(p models.Profile) error {
	if p.CurrentDay < 1 || p.CurrentDay > constants.ProgramDays {
		return fmt.Errorf("current day %d is outside 1..%d", p.CurrentDay, constants.ProgramDays)
	}
	for _, k := range badges.For(p.CurrentDay) {
		if !badges.Contains(p.UnlockedBadges, k) {
			return fmt.Errorf("badge %q is earned on day %d but not unlocked", k, p.CurrentDay)
		}
	}
	for day := range p.JournalEntries {
		if day < 1 || day > p.CurrentDay {
			return fmt.Errorf("journal entry for day %d is ahead of day %d", day, p.CurrentDay)
		}
	}
	if p.Paid && !p.Onboarded {
		return errors.New("paid but never onboarded")
	}
	return nil
}

func checkBackupsPresent(cachePath string) error {
	mgr := backup.NewManager(cachePath)
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.GetBackupDir())
	}
	return nil
}

func checkRemoteSchema(ctx context.Context, dsn string, fromKeyring bool) error {
	if err := postgres.ValidateConnString(dsn, fromKeyring); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, constants.ResolveTimeout)
	defer cancel()
	current, latest, err := postgres.CheckSchema(ctx, dsn)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'brahmapath migrate'", current, latest)
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2024 {
		return fmt.Errorf("system clock reads %s", now.Format(constants.DateFormat))
	}
	return nil
}
