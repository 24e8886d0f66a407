package wm

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrUnavailable is returned when wmctrl is not installed
var ErrUnavailable = errors.New("wmctrl not found (install it with your package manager)")

// Runner executes an external command
type Runner func(name string, args ...string) error

// Pinner sets the window manager's "always on top" hint on the terminal
// window the program runs in
type Pinner struct {
	enabled  bool
	windowID string
	lookPath func(string) (string, error)
	run      Runner
}

// NewPinner creates a pinner for the window named by $WINDOWID, or the
// active window when that is unset
func NewPinner() *Pinner {
	return &Pinner{
		enabled:  true,
		windowID: os.Getenv("WINDOWID"),
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

// SetEnabled enables or disables the pinner. A disabled pinner does nothing.
func (p *Pinner) SetEnabled(enabled bool) {
	p.enabled = enabled
}

// IsEnabled returns whether the pinner is enabled
func (p *Pinner) IsEnabled() bool {
	return p.enabled
}

// SetRunner replaces the command runner
func (p *Pinner) SetRunner(run Runner) {
	p.run = run
	p.lookPath = func(name string) (string, error) { return name, nil }
}

// Args returns the wmctrl arguments that add or remove the "above" state
func (p *Pinner) Args(above bool) []string {
	action := "remove,above"
	if above {
		action = "add,above"
	}

	if p.windowID != "" {
		return []string{"-i", "-r", p.windowID, "-b", action}
	}
	return []string{"-r", ":ACTIVE:", "-b", action}
}

// SetAlwaysOnTop asks the window manager to keep the window above others
func (p *Pinner) SetAlwaysOnTop(above bool) error {
	if !p.enabled {
		return nil
	}

	if _, err := p.lookPath("wmctrl"); err != nil {
		return ErrUnavailable
	}

	if err := p.run("wmctrl", p.Args(above)...); err != nil {
		return fmt.Errorf("wmctrl %s failed: %w", strings.Join(p.Args(above), " "), err)
	}
	return nil
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}
