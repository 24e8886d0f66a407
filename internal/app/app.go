package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dori/ticklist/internal/db"
	"github.com/dori/ticklist/internal/logging"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/taskfile"
	"github.com/dori/ticklist/internal/wm"
	"github.com/gofrs/flock"
)

// DefaultFileName is opened from the working directory when no file is given
// and no previous file is remembered
const DefaultFileName = "tasks.md"

// ErrAlreadyRunning is returned by New when another instance holds the lock
var ErrAlreadyRunning = errors.New("another instance of ticklist is already running")

// App holds the application state and dependencies
type App struct {
	Store   *taskfile.Store
	DB      *db.DB
	Pinner  *wm.Pinner
	Log     *log.Logger
	DataDir string

	prefs     model.Preferences
	lockFile  *flock.Flock
	logCloser io.Closer
}

// Config holds application configuration
type Config struct {
	DataDir  string
	DBPath   string
	LockPath string

	// SkipLock lets one-shot CLI commands run next to an open TUI
	SkipLock bool
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	dataDir := db.DefaultDataDir()
	return &Config{
		DataDir:  dataDir,
		DBPath:   db.DefaultDBPath(),
		LockPath: filepath.Join(dataDir, "ticklist.lock"),
	}
}

// New creates a new application instance
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// A broken debug log must not keep the program from starting
	logger, logCloser, err := logging.New(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logger, logCloser = logging.Discard()
	}

	app := &App{
		Store:     taskfile.New(),
		Pinner:    wm.NewPinner(),
		Log:       logger,
		DataDir:   cfg.DataDir,
		logCloser: logCloser,
	}

	if !cfg.SkipLock {
		if err := app.acquireLock(cfg.LockPath); err != nil {
			logCloser.Close()
			return nil, err
		}
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		app.releaseLock()
		logCloser.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database
	if v, err := database.SchemaVersion(context.Background()); err == nil {
		app.Log.Debug("database ready", "path", cfg.DBPath, "schema", v)
	}

	prefs, err := database.GetPreferences()
	if err != nil {
		app.Log.Warn("could not load preferences, using defaults", "err", err)
		prefs = model.DefaultPreferences()
	}
	app.prefs = prefs

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock(path string) error {
	a.lockFile = flock.New(path)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Preferences returns a copy of the current preferences
func (a *App) Preferences() model.Preferences {
	return a.prefs
}

// InitialFile picks the file to open at startup: the explicit argument, the
// last opened file if it still exists, or tasks.md in the working directory.
// It returns "" when none applies.
func (a *App) InitialFile(arg string) string {
	if arg != "" {
		return arg
	}
	if a.prefs.LastFile != "" && fileExists(a.prefs.LastFile) {
		return a.prefs.LastFile
	}
	if fileExists(DefaultFileName) {
		return DefaultFileName
	}
	return ""
}

// OpenFile loads path into the store and remembers it as the last file.
// A failed load keeps the previously loaded document.
func (a *App) OpenFile(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if err := a.Store.Load(path); err != nil {
		a.Log.Error("load failed", "path", path, "err", err)
		return err
	}
	a.Log.Debug("loaded file", "path", path, "tasks", a.Store.Len())

	a.prefs.LastFile = path
	a.savePreferences()
	return nil
}

// Reload re-reads the current file from disk
func (a *App) Reload() error {
	if err := a.Store.Reload(); err != nil {
		a.Log.Error("reload failed", "path", a.Store.Path(), "err", err)
		return err
	}
	a.Log.Debug("reloaded file", "path", a.Store.Path(), "tasks", a.Store.Len())
	return nil
}

// SetStatus updates the task at index and records the change in the history
func (a *App) SetStatus(index int, completed bool) error {
	if err := a.Store.SetStatus(index, completed); err != nil {
		a.Log.Error("status update failed", "index", index, "completed", completed, "err", err)
		return err
	}

	task := a.Store.Tasks()[index]
	if _, err := a.DB.RecordStatusChange(a.Store.Path(), task); err != nil {
		a.Log.Warn("could not record status change", "err", err)
	}
	return nil
}

// ToggleStatus flips the completed flag of the task at index
func (a *App) ToggleStatus(index int) error {
	tasks := a.Store.Tasks()
	if index < 0 || index >= len(tasks) {
		return fmt.Errorf("task %d of %d: %w", index, len(tasks), taskfile.ErrIndexOutOfRange)
	}
	return a.SetStatus(index, !tasks[index].Completed)
}

// SetAlwaysOnTop stores the preference and applies it through the window
// manager. The preference is kept even when the window manager call fails.
func (a *App) SetAlwaysOnTop(above bool) error {
	a.prefs.AlwaysOnTop = above
	a.savePreferences()

	if err := a.Pinner.SetAlwaysOnTop(above); err != nil {
		a.Log.Warn("could not change always-on-top", "err", err)
		// Stop shelling out once wmctrl is known to be missing
		if errors.Is(err, wm.ErrUnavailable) {
			a.Pinner.SetEnabled(false)
		}
		return err
	}
	return nil
}

// SetWindowSize stores the window size when it changed
func (a *App) SetWindowSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if a.prefs.WindowWidth == width && a.prefs.WindowHeight == height {
		return
	}
	a.prefs.WindowWidth = width
	a.prefs.WindowHeight = height
	a.savePreferences()
}

// SetTheme stores the theme name
func (a *App) SetTheme(name string) {
	if a.prefs.Theme == name {
		return
	}
	a.prefs.Theme = name
	a.savePreferences()
}

// RecentChanges returns the latest status changes, newest first
func (a *App) RecentChanges(limit int) ([]model.StatusChange, error) {
	return a.DB.RecentStatusChanges(limit)
}

// savePreferences persists preferences; failures are logged, not returned
func (a *App) savePreferences() {
	if a.DB == nil {
		return
	}
	if err := a.DB.SavePreferences(a.prefs); err != nil {
		a.Log.Warn("could not save preferences", "err", err)
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.logCloser != nil {
		a.logCloser.Close()
	}

	return errors.Join(errs...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
