package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/brahmapath/internal/advice"
	"github.com/julianstephens/brahmapath/internal/backup"
	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/keyring"
	"github.com/julianstephens/brahmapath/internal/models"
	"github.com/julianstephens/brahmapath/internal/progression"
	"github.com/julianstephens/brahmapath/internal/remote"
	"github.com/julianstephens/brahmapath/internal/storage"
)

type testEnv struct {
	dir  string
	data string
	out  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir:  dir,
		data: filepath.Join(dir, "brahma_user.json"),
		out:  &bytes.Buffer{},
	}
}

// context returns a fresh offline Context; commands close theirs on exit.
func (e *testEnv) context() *Context {
	e.out.Reset()
	return &Context{
		DataPath:  e.data,
		ConfigDir: e.dir,
		Remote:    remote.Offline{},
		Out:       e.out,
	}
}

// seed caches a paid, signed-in profile on the given day.
func (e *testEnv) seed(t *testing.T, day int) models.Profile {
	t.Helper()
	p := models.NewProfile(time.Now().Add(-time.Duration(day) * 24 * time.Hour))
	p.Onboarded = true
	p.Authenticated = true
	p.Paid = true
	p.Name = "Arjuna"
	p.Email = "arjuna@example.com"
	p.Age = 24
	p.Reason = "I want more energy, focus, and clarity"
	p.CurrentDay = day
	p.UnlockedBadges = badges.For(day)

	cache := storage.NewJSONStore(e.data)
	if err := cache.Init(); err != nil {
		t.Fatal(err)
	}
	if err := cache.Write(p); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return p
}

func (e *testEnv) read(t *testing.T) models.Profile {
	t.Helper()
	p, err := storage.NewJSONStore(e.data).Read()
	if err != nil {
		t.Fatalf("failed to read cached profile: %v", err)
	}
	return p
}

func proofFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sadhana.mp4")
	if err := os.WriteFile(path, []byte("video"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStatusBeforeOnboarding(t *testing.T) {
	env := newTestEnv(t)
	if err := (&StatusCmd{}).Run(env.context()); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "landing") || !strings.Contains(out, "begin your journey") {
		t.Errorf("unexpected status output:\n%s", out)
	}
}

func TestStatusOnPath(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 5)
	if err := (&StatusCmd{}).Run(env.context()); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	out := env.out.String()
	for _, want := range []string{"Day:      5 of 108", "awaiting your sadhana", "Discipline Warrior in 2 days"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestCompleteRequiresDashboard(t *testing.T) {
	env := newTestEnv(t)
	err := (&CompleteCmd{Proof: proofFile(t)}).Run(env.context())
	if !errors.Is(err, errNotOnPath) {
		t.Fatalf("expected errNotOnPath, got %v", err)
	}
}

func TestCompleteAndJournal(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 6)

	// Journal is closed until the day's action is recorded
	err := (&JournalAddCmd{Answer: "steady"}).Run(env.context())
	if !errors.Is(err, progression.ErrJournalClosed) {
		t.Fatalf("expected ErrJournalClosed, got %v", err)
	}

	if err := (&CompleteCmd{Proof: proofFile(t)}).Run(env.context()); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "Day 7 of 108") || !strings.Contains(out, "Badge unlocked: Warrior") {
		t.Errorf("unexpected complete output:\n%s", out)
	}
	p := env.read(t)
	if p.CurrentDay != 7 || p.LastCompletionTime == nil {
		t.Errorf("cached profile not advanced: day %d", p.CurrentDay)
	}

	err = (&CompleteCmd{Proof: proofFile(t)}).Run(env.context())
	if !errors.Is(err, progression.ErrGateLocked) {
		t.Fatalf("expected ErrGateLocked on second completion, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unlocks in") {
		t.Errorf("locked error should name the countdown: %v", err)
	}

	if err := (&JournalAddCmd{Answer: "  A calm day.  ", Temptations: "phone"}).Run(env.context()); err != nil {
		t.Fatalf("journal add failed: %v", err)
	}
	if got := env.read(t).JournalEntries[7]; got.DailyAnswer != "A calm day." || got.Temptations != "phone" {
		t.Errorf("journal entry = %+v", got)
	}

	if err := (&JournalListCmd{}).Run(env.context()); err != nil {
		t.Fatalf("journal list failed: %v", err)
	}
	if out := env.out.String(); !strings.Contains(out, "Day 7") || !strings.Contains(out, "Temptations: phone") {
		t.Errorf("unexpected journal list:\n%s", out)
	}
}

func TestCompleteMissingProof(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 3)
	err := (&CompleteCmd{Proof: filepath.Join(env.dir, "missing.mp4")}).Run(env.context())
	if err == nil {
		t.Fatal("expected an error for a missing proof file")
	}
	if p := env.read(t); p.CurrentDay != 3 {
		t.Errorf("day advanced without proof: %d", p.CurrentDay)
	}
}

func TestBadgesAndMilestones(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 40)

	if err := (&BadgesCmd{}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	out := env.out.String()
	if !strings.Contains(out, "✓ 🛡 Warrior") || !strings.Contains(out, "✓ 👑 Elite") {
		t.Errorf("earned badges not marked:\n%s", out)
	}
	if !strings.Contains(out, "(51%, day 79)") {
		t.Errorf("locked badge progress missing:\n%s", out)
	}

	if err := (&MilestonesCmd{}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	if out := env.out.String(); !strings.Contains(out, "39 days until Transformation Guardian") {
		t.Errorf("next milestone missing:\n%s", out)
	}
}

func TestAskWithoutBackend(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 2)
	if err := (&AskCmd{Topic: []string{"anger"}}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(env.out.String()); got != advice.GuidanceNoBackend {
		t.Errorf("ask output = %q", got)
	}

	if err := (&AskCmd{Topic: []string{" "}}).Run(env.context()); err == nil {
		t.Error("expected an error for an empty topic")
	}
}

func TestLogoutKeepsBackup(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 12)

	if err := (&LogoutCmd{}).Run(env.context()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := storage.NewJSONStore(env.data).Read(); !errors.Is(err, storage.ErrNoProfile) {
		t.Errorf("cache not cleared: %v", err)
	}

	backups, err := backup.NewManager(env.data).ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if err := backup.VerifyBackup(backups[0].Path); err != nil {
		t.Errorf("backup unreadable: %v", err)
	}
}

func TestBackupCommands(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 9)

	if err := (&BackupCreateCmd{}).Run(env.context()); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(env.context()); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(env.out.String(), "1 total") {
		t.Errorf("unexpected list output:\n%s", env.out.String())
	}

	backups, err := backup.NewManager(env.data).ListBackups()
	if err != nil || len(backups) != 1 {
		t.Fatalf("ListBackups = %d, %v", len(backups), err)
	}
	env.seed(t, 50)

	ctx := env.context()
	ctx.In = strings.NewReader("n\n")
	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(backups[0].Path)}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if env.read(t).CurrentDay != 50 {
		t.Error("declined restore changed the profile")
	}

	if err := (&BackupRestoreCmd{BackupFile: backups[0].Path, Yes: true}).Run(env.context()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := env.read(t).CurrentDay; got != 9 {
		t.Errorf("restored day = %d, want 9", got)
	}

	err = (&BackupRestoreCmd{BackupFile: "nope.json", Yes: true}).Run(env.context())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestKeyringCommands(t *testing.T) {
	gokeyring.MockInit()
	env := newTestEnv(t)

	if err := (&KeyringSetCmd{Entry: "advice-key", Value: "AIzaSyExampleKey1234"}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	if err := (&KeyringGetCmd{Entry: "advice-key"}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(env.out.String()); got != "AIza****1234" {
		t.Errorf("masked key = %q", got)
	}

	if err := (&KeyringSetCmd{Entry: "remote", Value: "not a dsn ::"}).Run(env.context()); err == nil {
		t.Error("expected invalid connection string to be rejected")
	}
	if err := (&KeyringSetCmd{Entry: "remote", Value: "postgres://brahma:secret@db:5432/brahmapath"}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.out.String(), "embedded credentials") {
		t.Error("expected a warning about embedded credentials")
	}

	if err := (&KeyringStatusCmd{}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	if out := env.out.String(); !strings.Contains(out, "advice-api-key is stored") || !strings.Contains(out, "remote-connection is stored") {
		t.Errorf("unexpected status output:\n%s", out)
	}

	if err := (&KeyringDeleteCmd{Entry: "advice-key"}).Run(env.context()); err != nil {
		t.Fatal(err)
	}
	if _, err := keyring.Get(keyring.AdviceKey); !errors.Is(err, keyring.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := (&KeyringDeleteCmd{Entry: "advice-key"}).Run(env.context()); err == nil {
		t.Error("second delete should fail")
	}
	if err := (&KeyringGetCmd{Entry: "bogus"}).Run(env.context()); err == nil {
		t.Error("unknown entry should fail")
	}
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://brahma:secret@db:5432/app", "postgres://brahma:xxxxx@db:5432/app"},
		{"postgres://brahma@db:5432/app", "postgres://brahma@db:5432/app"},
		{"host=db user=brahma password=secret dbname=app", "host=db user=brahma password=**** dbname=app"},
		{"host=db password='s p' dbname=app", "host=db password=**** dbname=app"},
	}
	for _, tt := range tests {
		if got := maskPassword(tt.in); got != tt.want {
			t.Errorf("maskPassword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckProfileIntegrity(t *testing.T) {
	good := models.NewProfile(time.Now())
	good.Onboarded = true
	good.CurrentDay = 8
	good.UnlockedBadges = []models.BadgeKind{models.BadgeWarrior}

	tests := []struct {
		name    string
		mutate  func(p *models.Profile)
		wantErr bool
	}{
		{"valid", func(p *models.Profile) {}, false},
		{"day out of range", func(p *models.Profile) { p.CurrentDay = 109 }, true},
		{"missing earned badge", func(p *models.Profile) { p.UnlockedBadges = nil }, true},
		{"journal ahead of day", func(p *models.Profile) {
			p.JournalEntries = map[int]models.JournalEntry{9: {DailyAnswer: "x"}}
		}, true},
		{"paid without onboarding", func(p *models.Profile) { p.Paid = true; p.Onboarded = false }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := good.Clone()
			tt.mutate(&p)
			err := checkProfileIntegrity(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkProfileIntegrity() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoctorOffline(t *testing.T) {
	gokeyring.MockInit()
	env := newTestEnv(t)
	env.seed(t, 4)

	if err := (&DoctorCmd{}).Run(env.context()); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, env.out.String())
	}
	out := env.out.String()
	for _, want := range []string{"✓ Local profile: OK", "✓ Profile integrity: OK", "⚠ Backups present", "⊘ Remote schema: SKIPPED"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestMigrateWithoutRemote(t *testing.T) {
	env := newTestEnv(t)
	if err := (&MigrateCmd{}).Run(env.context()); !errors.Is(err, errNoRemote) {
		t.Errorf("expected errNoRemote, got %v", err)
	}
}

func TestPluralDays(t *testing.T) {
	for n, want := range map[int]string{1: "1 day", 2: "2 days", 0: "0 days"} {
		if got := pluralDays(n); got != want {
			t.Errorf("pluralDays(%d) = %q, want %q", n, got, want)
		}
	}
}
