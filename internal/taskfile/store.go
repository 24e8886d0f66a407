// Package taskfile maps a markdown checklist file to task records and writes
// status changes back, leaving every other byte of the file untouched.
package taskfile

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dori/ticklist/internal/model"
	"github.com/natefinch/atomic"
)

// Store owns the lines of one loaded file and the tasks parsed from them
type Store struct {
	path  string
	lines []string
	tasks []model.Task
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// Load parses the file at path, replacing any previously loaded document.
// On error the previous document is kept.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return readError(path, err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("failed to decode %s: %w", path, ErrEncoding)
	}

	lines := splitLines(string(data))
	s.path = path
	s.lines = lines
	s.tasks = parseTasks(lines)
	return nil
}

// Reload parses the previously loaded file again
func (s *Store) Reload() error {
	if s.path == "" {
		return ErrNotLoaded
	}
	return s.Load(s.path)
}

// Path returns the loaded file path, or "" when nothing is loaded
func (s *Store) Path() string {
	return s.path
}

// Loaded reports whether a file has been loaded
func (s *Store) Loaded() bool {
	return s.path != ""
}

// Tasks returns a copy of the tasks in line order
func (s *Store) Tasks() []model.Task {
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks
func (s *Store) Len() int {
	return len(s.tasks)
}

// SetStatus sets the completed flag of the task at index (a position in
// Tasks, not a line number) and writes the file. If the write fails the
// in-memory change is rolled back.
func (s *Store) SetStatus(index int, completed bool) error {
	if index < 0 || index >= len(s.tasks) {
		return fmt.Errorf("task %d of %d: %w", index, len(s.tasks), ErrIndexOutOfRange)
	}

	task := &s.tasks[index]
	if task.LineNumber < 0 || task.LineNumber >= len(s.lines) {
		return fmt.Errorf("task %d points at line %d of %d: %w",
			index, task.LineNumber, len(s.lines), ErrIndexOutOfRange)
	}

	prevTask := *task
	prevLine := s.lines[task.LineNumber]

	// An unchanged status keeps the original line so an "X" marker survives
	if task.Completed != completed {
		task.Completed = completed
		_, terminator := splitTerminator(prevLine)
		s.lines[task.LineNumber] = task.Line() + terminator
	}

	if err := s.Save(); err != nil {
		*task = prevTask
		s.lines[task.LineNumber] = prevLine
		return err
	}
	return nil
}

// Save writes the current lines back to the loaded path. A symlinked path
// is written through to its target.
func (s *Store) Save() error {
	if s.path == "" {
		return ErrNotLoaded
	}

	// The rename below would replace the link itself
	target, err := filepath.EvalSymlinks(s.path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w: %w", s.path, ErrWrite, err)
	}

	// It would also replace a read-only file, so probe first
	f, err := os.OpenFile(target, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w: %w", s.path, ErrWrite, err)
	}
	f.Close()

	content := strings.Join(s.lines, "")
	if err := atomic.WriteFile(target, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w: %w", s.path, ErrWrite, err)
	}
	return nil
}
