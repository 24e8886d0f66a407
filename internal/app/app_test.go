package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dori/ticklist/internal/db"
	"github.com/dori/ticklist/internal/logging"
	"github.com/dori/ticklist/internal/taskfile"
	"github.com/dori/ticklist/internal/wm"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		DataDir:  dir,
		DBPath:   filepath.Join(dir, "test.db"),
		LockPath: filepath.Join(dir, "test.lock"),
	}
}

func newTestApp(t *testing.T, cfg *Config) *App {
	t.Helper()
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.Pinner.SetRunner(func(string, ...string) error { return nil })
	return a
}

func writeTasks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write tasks: %v", err)
	}
	return path
}

func TestSingleInstanceLock(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	if _, err := New(cfg); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second New error = %v, want ErrAlreadyRunning", err)
	}

	// CLI commands skip the lock
	skip := *cfg
	skip.SkipLock = true
	b, err := New(&skip)
	if err != nil {
		t.Fatalf("New with SkipLock failed: %v", err)
	}
	b.Close()

	a.Close()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New after Close failed: %v", err)
	}
	c.Close()
}

func TestOpenFileRemembersLastFile(t *testing.T) {
	cfg := testConfig(t)
	path := writeTasks(t, "- [ ] one\n- [x] two\n")

	a := newTestApp(t, cfg)
	if err := a.OpenFile(path); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if a.Store.Len() != 2 {
		t.Errorf("got %d tasks, want 2", a.Store.Len())
	}
	a.Close()

	b := newTestApp(t, cfg)
	defer b.Close()
	if got := b.Preferences().LastFile; got != path {
		t.Errorf("LastFile = %q, want %q", got, path)
	}
	if got := b.InitialFile(""); got != path {
		t.Errorf("InitialFile = %q, want %q", got, path)
	}
	if got := b.InitialFile("explicit.md"); got != "explicit.md" {
		t.Errorf("InitialFile(explicit) = %q", got)
	}
}

func TestOpenFileFailureKeepsDocument(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	defer a.Close()

	path := writeTasks(t, "- [ ] keep me\n")
	if err := a.OpenFile(path); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	err := a.OpenFile(filepath.Join(t.TempDir(), "missing.md"))
	if !errors.Is(err, taskfile.ErrNotFound) {
		t.Fatalf("OpenFile(missing) error = %v, want ErrNotFound", err)
	}
	if a.Store.Path() != path || a.Preferences().LastFile != path {
		t.Errorf("failed open replaced state: store %q, last file %q", a.Store.Path(), a.Preferences().LastFile)
	}
}

func TestInitialFileFallbacks(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	defer a.Close()

	dir := t.TempDir()
	chdir(t, dir)

	if got := a.InitialFile(""); got != "" {
		t.Errorf("InitialFile with nothing available = %q, want empty", got)
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("- [ ] x\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if got := a.InitialFile(""); got != DefaultFileName {
		t.Errorf("InitialFile = %q, want %q", got, DefaultFileName)
	}

	// A remembered file that no longer exists is skipped
	a.prefs.LastFile = filepath.Join(dir, "gone.md")
	if got := a.InitialFile(""); got != DefaultFileName {
		t.Errorf("InitialFile with stale last file = %q, want %q", got, DefaultFileName)
	}
}

func TestSetStatusRecordsHistory(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	defer a.Close()

	path := writeTasks(t, "# list\n- [ ] one\n- [ ] two\n")
	if err := a.OpenFile(path); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	if err := a.SetStatus(1, true); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := a.ToggleStatus(1); err != nil {
		t.Fatalf("ToggleStatus failed: %v", err)
	}
	if err := a.ToggleStatus(5); !errors.Is(err, taskfile.ErrIndexOutOfRange) {
		t.Errorf("ToggleStatus(5) error = %v, want ErrIndexOutOfRange", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "# list\n- [ ] one\n- [ ] two\n" {
		t.Errorf("file = %q", data)
	}

	changes, err := a.RecentChanges(10)
	if err != nil {
		t.Fatalf("RecentChanges failed: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].Completed || !changes[1].Completed || changes[0].Text != "two" || changes[0].LineNumber != 2 {
		t.Errorf("unexpected history: %+v", changes)
	}
}

func TestFailedStatusUpdateIsNotRecorded(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	defer a.Close()

	path := writeTasks(t, "- [ ] one\n")
	if err := a.OpenFile(path); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if err := a.SetStatus(0, true); !errors.Is(err, taskfile.ErrWrite) {
		t.Fatalf("SetStatus error = %v, want ErrWrite", err)
	}
	changes, err := a.RecentChanges(10)
	if err != nil {
		t.Fatalf("RecentChanges failed: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("failed update recorded: %+v", changes)
	}
}

func TestPreferencesPersist(t *testing.T) {
	cfg := testConfig(t)

	a := newTestApp(t, cfg)
	var ran []string
	a.Pinner.SetRunner(func(name string, args ...string) error {
		ran = append(ran, name)
		return nil
	})
	if err := a.SetAlwaysOnTop(true); err != nil {
		t.Fatalf("SetAlwaysOnTop failed: %v", err)
	}
	a.SetWindowSize(132, 43)
	a.SetTheme("gruvbox")
	a.Close()

	if len(ran) != 1 || ran[0] != "wmctrl" {
		t.Errorf("pinner ran %v, want [wmctrl]", ran)
	}

	b := newTestApp(t, cfg)
	defer b.Close()
	prefs := b.Preferences()
	if !prefs.AlwaysOnTop || prefs.WindowWidth != 132 || prefs.WindowHeight != 43 || prefs.Theme != "gruvbox" {
		t.Errorf("preferences not persisted: %+v", prefs)
	}
}

func TestSetAlwaysOnTopKeepsPreferenceOnFailure(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	defer a.Close()

	a.Pinner.SetRunner(func(string, ...string) error { return errors.New("no window manager") })
	if err := a.SetAlwaysOnTop(true); err == nil {
		t.Error("expected pinner error")
	}
	if !a.Preferences().AlwaysOnTop {
		t.Error("preference not stored after pinner failure")
	}
}

func TestDefaultConfigUsesDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(db.DataDirEnv, dir)

	cfg := DefaultConfig()
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.DBPath != db.DefaultDBPath() {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, db.DefaultDBPath())
	}
	if cfg.LockPath != filepath.Join(dir, "ticklist.lock") {
		t.Errorf("LockPath = %q", cfg.LockPath)
	}
}

func TestBrokenDebugLogDoesNotBlockStartup(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv(logging.DebugEnv, "1")
	// A directory where the log file should be makes opening it fail
	if err := os.Mkdir(filepath.Join(cfg.DataDir, logging.FileName), 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Log == nil {
		t.Fatal("no logger")
	}
	a.Log.Error("goes nowhere")
}

func TestUnavailableWindowManagerDisablesPinner(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	defer a.Close()

	calls := 0
	a.Pinner.SetRunner(func(string, ...string) error {
		calls++
		return wm.ErrUnavailable
	})

	if err := a.SetAlwaysOnTop(true); !errors.Is(err, wm.ErrUnavailable) {
		t.Fatalf("SetAlwaysOnTop error = %v, want ErrUnavailable", err)
	}
	if a.Pinner.IsEnabled() {
		t.Error("pinner still enabled after ErrUnavailable")
	}

	if err := a.SetAlwaysOnTop(false); err != nil {
		t.Errorf("disabled pinner returned %v", err)
	}
	if calls != 1 {
		t.Errorf("wmctrl ran %d times, want 1", calls)
	}
	if a.Preferences().AlwaysOnTop {
		t.Error("preference not updated while pinner disabled")
	}
}

func TestOtherPinnerErrorsKeepPinnerEnabled(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	defer a.Close()

	a.Pinner.SetRunner(func(string, ...string) error { return errors.New("exit status 1") })
	if err := a.SetAlwaysOnTop(true); err == nil {
		t.Fatal("expected error")
	}
	if !a.Pinner.IsEnabled() {
		t.Error("pinner disabled by a transient failure")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restoring working directory failed: %v", err)
		}
	})
}
