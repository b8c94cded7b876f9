// Package app owns the user's record for one process. Every screen action
// goes through it: the change is computed by the pure packages, written to
// the local cache, and then mirrored to the remote in the background.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/brahmapath/internal/advice"
	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/gate"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/models"
	"github.com/julianstephens/brahmapath/internal/progression"
	"github.com/julianstephens/brahmapath/internal/reconcile"
	"github.com/julianstephens/brahmapath/internal/remote"
	"github.com/julianstephens/brahmapath/internal/storage"
	"github.com/julianstephens/brahmapath/internal/validation"
)

var (
	ErrNotStarted     = errors.New("app not started")
	ErrAlreadyStarted = errors.New("app already started")
)

// unspecifiedReason is stored remotely when intake was skipped.
const unspecifiedReason = "Not specified"

type Config struct {
	Cache  storage.Cache
	Remote remote.Remote
	// Adviser may be nil; guidance then uses the no-backend fallbacks.
	Adviser *advice.Adviser
	// Mirror defaults to a new mirror over Remote.
	Mirror    *reconcile.Mirror
	Validator *validation.Validator
	Now       func() time.Time
	// ResolveTimeout bounds startup reconciliation.
	ResolveTimeout time.Duration
}

type App struct {
	cache     storage.Cache
	remote    remote.Remote
	adviser   *advice.Adviser
	mirror    *reconcile.Mirror
	validator *validation.Validator
	now       func() time.Time
	timeout   time.Duration

	mu          sync.Mutex
	started     bool
	machine     *flow.Machine
	profile     models.Profile
	session     *remote.Session
	unsubscribe func()

	ended chan struct{}
}

func New(cfg Config) *App {
	a := &App{
		cache:     cfg.Cache,
		remote:    cfg.Remote,
		adviser:   cfg.Adviser,
		mirror:    cfg.Mirror,
		validator: cfg.Validator,
		now:       cfg.Now,
		timeout:   cfg.ResolveTimeout,
		machine:   flow.NewMachine(),
		ended:     make(chan struct{}, 1),
	}
	if a.remote == nil {
		a.remote = remote.Offline{}
	}
	if a.adviser == nil {
		a.adviser = advice.New(nil, 0)
	}
	if a.mirror == nil {
		a.mirror = reconcile.NewMirror(a.remote)
	}
	if a.validator == nil {
		a.validator = validation.New()
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.profile = models.NewProfile(a.now())
	return a
}

// Start resolves the first screen. It runs once per process.
func (a *App) Start(ctx context.Context) (reconcile.Resolution, error) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return reconcile.Resolution{}, ErrAlreadyStarted
	}
	a.started = true
	a.mu.Unlock()

	resolver := &reconcile.Resolver{
		Cache:   a.cache,
		Remote:  a.remote,
		Now:     a.now,
		Timeout: a.timeout,
	}
	res := resolver.Resolve(ctx)
	logger.Info("startup resolved", "screen", res.Screen, "source", res.Source, "reason", res.Reason)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.machine.Resolve(res.Screen); err != nil {
		return res, err
	}
	a.profile = res.Profile
	a.session = res.Session
	if res.Source != reconcile.SourceDefault || res.Session != nil {
		if err := a.cache.Write(a.profile); err != nil {
			logger.Warn("failed to cache resolved profile", "error", err)
		}
	}
	if res.Writeback != nil && res.Session != nil {
		a.mirror.Update(res.Session.UserID, *res.Writeback)
	}
	a.unsubscribe = a.remote.OnSessionChange(a.onSessionChange)
	return res, nil
}

// onSessionChange runs on the notifier's goroutine, possibly while an App
// method holds the lock, so it only signals.
func (a *App) onSessionChange(s *remote.Session) {
	if s != nil {
		return
	}
	select {
	case a.ended <- struct{}{}:
	default:
	}
}

// SessionEnded fires when the remote reports the session is gone. The
// receiver should call EndSession.
func (a *App) SessionEnded() <-chan struct{} {
	return a.ended
}

// EndSession drops the session and returns to Landing. The cached record
// is kept. It does nothing when no session was held.
func (a *App) EndSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session = nil
	a.profile.Authenticated = false
	if err := a.cache.Write(a.profile); err != nil {
		logger.Warn("failed to cache profile after session end", "error", err)
	}
	if err := a.machine.Fire(flow.SessionEnded); err != nil {
		logger.Debug("session end ignored", "screen", a.machine.Current(), "error", err)
	}
}

func (a *App) Screen() flow.Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.machine.Current()
}

// Profile returns a copy of the current record.
func (a *App) Profile() models.Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile.Clone()
}

func (a *App) Session() (remote.Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return remote.Session{}, false
	}
	return *a.session, true
}

// Gate reports the completion gate as of now.
func (a *App) Gate() gate.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return gate.Check(a.profile.LastCompletionTime, a.now())
}

// JournalOpen reports whether today's reflection can be written.
func (a *App) JournalOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return progression.JournalOpen(a.profile, a.now())
}

// Content is the daily quote, verse and practice for the current day.
func (a *App) Content() models.DailyContent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.ContentFor(a.profile.CurrentDay)
}

func (a *App) AdviceConfigured() bool {
	return a.adviser.Configured()
}

func (a *App) Begin() error {
	return a.fire(flow.Start)
}

func (a *App) Commit() error {
	return a.fire(flow.Confirm)
}

// ShowPayment skips to payment when a session already exists.
func (a *App) ShowPayment() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return remote.ErrNoSession
	}
	return a.machine.Fire(flow.ShowPayment)
}

func (a *App) BackToAuth() error {
	return a.fire(flow.BackToAuth)
}

func (a *App) fire(e flow.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.machine.Fire(e)
}

func (a *App) requireScreen(s flow.Screen) error {
	if !a.started {
		return ErrNotStarted
	}
	if cur := a.machine.Current(); cur != s {
		return fmt.Errorf("%w: %s requires %s", flow.ErrInvalidTransition, cur, s)
	}
	return nil
}

// commit makes next the current record after caching it. The cache write
// is the commit point: on failure nothing changes.
func (a *App) commit(next models.Profile) error {
	if err := a.cache.Write(next); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	a.profile = next
	return nil
}

// mirrorChange queues the difference between two records for the signed-in
// user. Without a session there is nobody to mirror to.
func (a *App) mirrorChange(before, after models.Profile) {
	if a.session == nil {
		return
	}
	id := a.session.UserID
	a.mirror.Update(id, remote.Diff(remote.RowFromProfile(id, before), remote.RowFromProfile(id, after)))
}

// CompleteOnboarding stores the intake answers and moves to Commitment.
func (a *App) CompleteOnboarding(age int, reason string) error {
	if err := a.validator.Onboarding(validation.Onboarding{Age: age, Reason: reason}).Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireScreen(flow.Onboarding); err != nil {
		return err
	}
	next := progression.Onboard(a.profile, age, strings.TrimSpace(reason), a.now())
	if err := a.commit(next); err != nil {
		return err
	}
	if a.session != nil {
		a.mirror.Upsert(a.row(next))
	}
	return a.machine.Fire(flow.OnboardingComplete)
}

func (a *App) row(p models.Profile) remote.Row {
	row := remote.RowFromProfile(a.session.UserID, p)
	if row.Reason == "" {
		row.Reason = unspecifiedReason
	}
	return row
}

// forAccount returns the local record re-keyed to email. A record that
// belongs to someone else keeps only the intake answers.
func (a *App) forAccount(name, email string) models.Profile {
	next := a.profile.Clone()
	if !reconcile.SameIdentity(next, models.Profile{Identity: models.Identity{Email: email}}) {
		fresh := models.NewProfile(a.now())
		fresh.Onboarded = next.Onboarded
		fresh.Age = next.Age
		fresh.Reason = next.Reason
		if !next.StartDate.IsZero() {
			fresh.StartDate = next.StartDate
		}
		next = fresh
	}
	next.Email = email
	if name = strings.TrimSpace(name); name != "" {
		next.Name = name
	} else if next.Name == "" {
		next.Name = models.Profile{Identity: models.Identity{Email: email}}.DisplayName()
	}
	next.Authenticated = true
	return next
}

// SignUp creates the account and its remote profile, then moves to
// Payment. When the account still needs confirmation it returns
// remote.ErrEmailNotConfirmed and the record is untouched.
func (a *App) SignUp(ctx context.Context, name, email, password string) error {
	email = strings.TrimSpace(email)
	creds := validation.Credentials{Name: name, Email: email, Password: password}
	if err := a.validator.Credentials(creds).Err(); err != nil {
		return err
	}
	if err := a.checkScreen(flow.Auth); err != nil {
		return err
	}

	res, err := a.remote.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if res.Session == nil {
		return remote.ErrEmailNotConfirmed
	}

	a.mu.Lock()
	next := a.forAccount(name, email)
	if err := a.commit(next); err != nil {
		a.mu.Unlock()
		return err
	}
	a.session = res.Session
	row := a.row(next)
	a.mu.Unlock()

	if err := a.remote.Upsert(ctx, row); err != nil {
		logger.Warn("failed to create remote profile, retrying in background", "user", row.ID, "error", err)
		a.mirror.Upsert(row)
	}
	return a.fire(flow.SignedUp)
}

// SignIn authenticates and reconciles with the remote profile. A missing
// profile is created from the local record.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := a.validator.Credentials(validation.Credentials{Email: email, Password: password}).Err(); err != nil {
		return err
	}
	if err := a.checkScreen(flow.Auth); err != nil {
		return err
	}

	session, err := a.remote.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	existing, getErr := a.remote.Get(ctx, session.UserID)
	if getErr != nil && !errors.Is(getErr, remote.ErrProfileNotFound) {
		logger.Warn("failed to fetch remote profile, using local record", "user", session.UserID, "error", getErr)
	}

	a.mu.Lock()
	local := a.forAccount("", session.Email)
	if getErr != nil {
		if err := a.commit(local); err != nil {
			a.mu.Unlock()
			return err
		}
		a.session = &session
		row := a.row(local)
		a.mu.Unlock()

		if errors.Is(getErr, remote.ErrProfileNotFound) {
			if err := a.remote.Upsert(ctx, row); err != nil {
				logger.Warn("failed to create remote profile, retrying in background", "user", row.ID, "error", err)
				a.mirror.Upsert(row)
			}
		}
		return a.fire(flow.SignedInNoProfile)
	}
	defer a.mu.Unlock()

	fetched, unknown := existing.Profile()
	if len(unknown) > 0 {
		logger.Warn("ignoring unknown remote badge ids", "ids", unknown)
	}
	merged := reconcile.Merge(local, fetched)
	merged.Authenticated = true
	merged.Email = session.Email
	if err := a.commit(merged); err != nil {
		return err
	}
	a.session = &session
	a.mirror.Update(session.UserID, remote.Diff(existing, remote.RowFromProfile(session.UserID, merged)))

	if merged.Paid {
		return a.machine.Fire(flow.SignedInPaid)
	}
	return a.machine.Fire(flow.SignedInUnpaid)
}

func (a *App) checkScreen(s flow.Screen) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requireScreen(s)
}

// ConfirmPayment marks the record paid and opens the dashboard.
func (a *App) ConfirmPayment() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireScreen(flow.Payment); err != nil {
		return err
	}
	before := a.profile
	next := progression.MarkPaid(before)
	if err := a.commit(next); err != nil {
		return err
	}
	a.mirrorChange(before, next)
	return a.machine.Fire(flow.PaymentConfirmed)
}

// CompleteDay records today's action. proofPath must name the recorded
// video; it is checked for existence only.
func (a *App) CompleteDay(proofPath string) (models.Profile, error) {
	if err := a.validator.Proof(proofPath).Err(); err != nil {
		return models.Profile{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireScreen(flow.Dashboard); err != nil {
		return a.profile.Clone(), err
	}
	before := a.profile
	next, err := progression.ApplyCompletion(before, a.now())
	if err != nil {
		return before.Clone(), err
	}
	if err := a.commit(next); err != nil {
		return before.Clone(), err
	}
	a.mirrorChange(before, next)
	logger.Info("day completed", "day", next.CurrentDay, "badges", len(next.UnlockedBadges))
	return next.Clone(), nil
}

// SubmitJournal stores today's reflection, replacing an earlier one.
func (a *App) SubmitJournal(answer, temptations string) (models.JournalEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireScreen(flow.Dashboard); err != nil {
		return models.JournalEntry{}, err
	}
	now := a.now()
	before := a.profile
	entry := progression.NewEntry(before, answer, temptations, now)
	next, err := progression.RecordJournal(before, entry, now)
	if err != nil {
		return models.JournalEntry{}, err
	}
	if err := a.commit(next); err != nil {
		return models.JournalEntry{}, err
	}
	a.mirrorChange(before, next)
	return entry, nil
}

// Guidance asks the adviser about topic in the context of the user's day.
func (a *App) Guidance(ctx context.Context, topic string) string {
	a.mu.Lock()
	p := a.profile
	a.mu.Unlock()
	userContext := fmt.Sprintf("Day %d of %d. Intention: %s", p.CurrentDay, constants.ProgramDays, p.Reason)
	return a.adviser.GetGuidance(ctx, topic, userContext)
}

// Reflect asks the adviser to respond to a journal text.
func (a *App) Reflect(ctx context.Context, text string) string {
	return a.adviser.AnalyzeEntry(ctx, text)
}

// Logout signs out remotely, clears the cache and starts over on Landing.
// Remote errors are logged; queued mirror writes are left alone.
func (a *App) Logout(ctx context.Context) error {
	if err := a.remote.SignOut(ctx); err != nil && !errors.Is(err, remote.ErrOffline) {
		logger.Warn("remote sign out failed", "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear local profile: %w", err)
	}
	a.session = nil
	a.profile = models.NewProfile(a.now())
	if err := a.machine.Fire(flow.Logout); err != nil {
		a.machine.Reset()
	}
	return nil
}

// Close stops listening for session changes and drains the mirror.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.mu.Unlock()
	return a.mirror.Close(ctx)
}
