package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/brahmapath/internal/advice"
	"github.com/julianstephens/brahmapath/internal/app"
	"github.com/julianstephens/brahmapath/internal/backup"
	"github.com/julianstephens/brahmapath/internal/constants"
	apperrors "github.com/julianstephens/brahmapath/internal/errors"
	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/instance"
	"github.com/julianstephens/brahmapath/internal/keyring"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/reconcile"
	"github.com/julianstephens/brahmapath/internal/remote"
	"github.com/julianstephens/brahmapath/internal/remote/postgres"
	"github.com/julianstephens/brahmapath/internal/storage"
)

// Context is handed to every command. The config fields come from flags;
// the rest is filled by Open.
type Context struct {
	DataPath  string
	ConfigDir string
	RemoteDSN string
	// RemoteFromKeyring allows an embedded password in RemoteDSN.
	RemoteFromKeyring bool
	AdviceKey         string
	AdviceModel       string
	AdviceURL         string
	Debug             bool

	// Ctx is cancelled on interrupt.
	Ctx context.Context
	Out io.Writer
	In  io.Reader

	Lock    *instance.Lock
	Cache   storage.Cache
	Remote  remote.Remote
	App     *app.App
	Backups *backup.Manager
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Open takes the instance lock and builds the app. A preset Remote is kept.
func (c *Context) Open(ctx context.Context) error {
	if c.App != nil {
		return nil
	}
	if err := c.openLocal(); err != nil {
		return err
	}
	if c.Remote == nil {
		c.Remote = c.openRemote(ctx)
	}
	c.App = app.New(app.Config{
		Cache:   c.Cache,
		Remote:  c.Remote,
		Adviser: c.openAdviser(),
	})
	return nil
}

// openLocal takes the instance lock and opens the cache and its backups.
func (c *Context) openLocal() error {
	if c.Cache != nil {
		return nil
	}
	dir := c.ConfigDir
	if dir == "" {
		dir = constants.DefaultConfigDir
	}
	dir, err := storage.ExpandPath(dir)
	if err != nil {
		return err
	}
	lock, err := instance.Acquire(dir)
	if err != nil {
		return err
	}

	path := c.DataPath
	if path == "" {
		path = constants.DefaultConfigPath
	}
	cache, err := storage.New(path)
	if err != nil {
		lock.Release()
		return err
	}
	if err := cache.Init(); err != nil {
		lock.Release()
		return fmt.Errorf("failed to open local profile: %w", err)
	}

	c.Lock = lock
	c.Cache = cache
	c.Backups = backup.NewManager(cache.GetConfigPath())
	return nil
}

// openRemote connects to the configured remote. Any failure leaves the
// client offline.
func (c *Context) openRemote(ctx context.Context) remote.Remote {
	if c.RemoteDSN == "" {
		logger.Debug("no remote configured, running offline")
		return remote.Offline{}
	}
	if err := postgres.ValidateConnString(c.RemoteDSN, c.RemoteFromKeyring); err != nil {
		logger.Warn("remote connection string rejected, running offline", "error", err)
		return remote.Offline{}
	}
	store, err := postgres.New(ctx, c.RemoteDSN, keyring.TokenStore{})
	if err != nil {
		logger.Warn("remote unavailable, running offline", "error", err)
		return remote.Offline{}
	}
	return store
}

func (c *Context) openAdviser() *advice.Adviser {
	if c.AdviceKey == "" {
		return advice.New(nil, constants.DefaultAdviceTimeout)
	}
	gemini, err := advice.NewGemini(advice.GeminiConfig{
		BaseURL: c.AdviceURL,
		APIKey:  c.AdviceKey,
		Model:   c.AdviceModel,
	})
	if err != nil {
		logger.Warn("advice backend disabled", "error", err)
		return advice.New(nil, constants.DefaultAdviceTimeout)
	}
	return advice.New(gemini, constants.DefaultAdviceTimeout)
}

// Start opens the context and resolves the first screen.
func (c *Context) Start(ctx context.Context) (reconcile.Resolution, error) {
	if err := c.Open(ctx); err != nil {
		return reconcile.Resolution{}, err
	}
	return c.App.Start(ctx)
}

// requireDashboard starts the app and fails unless the user has reached
// the daily practice.
func (c *Context) requireDashboard(ctx context.Context) error {
	res, err := c.Start(ctx)
	if err != nil {
		return err
	}
	if res.Screen != flow.Dashboard {
		return fmt.Errorf("%w: %s", errNotOnPath, nextStep(res.Screen))
	}
	return nil
}

var errNotOnPath = errors.New("the 108-day path has not started")

// userError prints the screen message for err while keeping it matchable.
type userError struct {
	err  error
	hint string
}

func (e *userError) Error() string {
	msg := apperrors.UserMessage(e.err)
	if e.hint != "" {
		msg += " " + e.hint
	}
	return msg
}

func (e *userError) Unwrap() error {
	return e.err
}

func nextStep(s flow.Screen) string {
	switch s {
	case flow.Landing, flow.Onboarding, flow.Commitment:
		return "run 'brahmapath' to begin your journey"
	case flow.Auth:
		return "run 'brahmapath' to sign in"
	case flow.Payment:
		return "run 'brahmapath' to complete your offering"
	}
	return "run 'brahmapath' to continue"
}

// PerformAutomaticBackup snapshots the cache, logging instead of failing.
func (c *Context) PerformAutomaticBackup() {
	if c.Backups == nil {
		return
	}
	if _, err := c.Backups.CreateBackup(); err != nil {
		if errors.Is(err, backup.ErrNoCache) {
			logger.Debug("automatic backup skipped", "reason", err)
			return
		}
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Close drains pending remote writes and releases everything Open took.
func (c *Context) Close() error {
	var errs []error
	if c.App != nil {
		ctx, cancel := context.WithTimeout(context.Background(), constants.MirrorDrainTimeout)
		if err := c.App.Close(ctx); err != nil {
			logger.Warn("pending remote writes dropped", "error", err)
		}
		cancel()
		c.App = nil
	}
	if c.Remote != nil {
		c.Remote.Close()
		c.Remote = nil
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
		c.Cache = nil
	}
	if c.Lock != nil {
		errs = append(errs, c.Lock.Release())
		c.Lock = nil
	}
	return errors.Join(errs...)
}
