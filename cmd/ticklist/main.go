package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/ticklist/internal/app"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/ui"
	"github.com/dori/ticklist/internal/ui/theme"
)

var (
	version = "0.1.0"
)

const defaultHistoryLimit = 20

func main() {
	// Subcommand handling
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "list", "check", "uncheck", "history":
			if err := runCommand(os.Args[1], os.Args[2:], os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Printf("ticklist v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	// Parse flags for TUI mode
	themeFlag := flag.String("theme", "", "Theme name (nord, dracula, gruvbox, catppuccin)")
	pinFlag := flag.Bool("pin", false, "Keep the window above others (needs wmctrl)")
	noWMFlag := flag.Bool("no-wm", false, "Never call wmctrl; only remember the always-on-top setting")
	flag.Parse()

	if err := runTUI(flag.Arg(0), *themeFlag, *pinFlag, *noWMFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `ticklist - check off markdown task lists

Usage:
  ticklist [file]                 Start the TUI
  ticklist list <file>            Print tasks with their indices
  ticklist check <file> <n>       Mark task n done
  ticklist uncheck <file> <n>     Mark task n not done
  ticklist history [limit]        Show recent status changes
  ticklist version                Show version
  ticklist help                   Show this help

Task lines look like:
  - [ ] open task
  - [x] finished task

Everything else in the file is left exactly as it is.

TUI Options:
  --theme <name>    Theme (nord, dracula, gruvbox, catppuccin)
  --pin             Keep the terminal window on top
  --no-wm           Do not call wmctrl (the pin setting is still saved)

Without a file argument the last opened file is used, then ./tasks.md.

Environment:
  TICKLIST_DATA_DIR   Where preferences and history are kept
  TICKLIST_DEBUG=1    Write a debug log to the data directory`

	fmt.Println(help)
}

// runCommand runs a one-shot subcommand. It skips the single-instance lock
// so it works while the TUI is open.
func runCommand(name string, args []string, out io.Writer) error {
	cfg := app.DefaultConfig()
	cfg.SkipLock = true

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	switch name {
	case "list":
		return handleList(application, args, out)
	case "check":
		return handleSetStatus(application, args, true, out)
	case "uncheck":
		return handleSetStatus(application, args, false, out)
	case "history":
		return handleHistory(application, args, out)
	}
	return fmt.Errorf("unknown command %q", name)
}

func handleList(a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: ticklist list <file>")
	}
	if err := loadFile(a, args[0]); err != nil {
		return err
	}

	tasks := a.Store.Tasks()
	for i, task := range tasks {
		fmt.Fprintf(out, "%3d  [%c] %s%s\n", i, task.Marker(), task.Indent, task.Text)
	}
	done, total := model.Progress(tasks)
	fmt.Fprintf(out, "%d/%d done\n", done, total)
	return nil
}

func handleSetStatus(a *app.App, args []string, completed bool, out io.Writer) error {
	verb := "check"
	if !completed {
		verb = "uncheck"
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: ticklist %s <file> <n>", verb)
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid task index %q", args[1])
	}

	if err := loadFile(a, args[0]); err != nil {
		return err
	}
	if err := a.SetStatus(index, completed); err != nil {
		return err
	}

	task := a.Store.Tasks()[index]
	fmt.Fprintf(out, "[%c] %s\n", task.Marker(), task.Text)
	return nil
}

// loadFile loads arg by absolute path so history rows match the TUI's
func loadFile(a *app.App, arg string) error {
	path, err := filepath.Abs(arg)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", arg, err)
	}
	return a.Store.Load(path)
}

func handleHistory(a *app.App, args []string, out io.Writer) error {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	changes, err := a.RecentChanges(limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(changes) == 0 {
		fmt.Fprintln(out, "No status changes recorded")
		return nil
	}

	for _, c := range changes {
		fmt.Fprintf(out, "%s  %-9s %s (%s:%d)\n",
			c.ChangedAt.Format("2006-01-02 15:04"), c.Verb(), c.Text, c.FilePath, c.LineNumber+1)
	}
	return nil
}

func runTUI(fileArg, themeName string, pin, noWM bool) error {
	application, err := app.New(nil)
	if err != nil {
		return err
	}
	defer application.Close()

	if noWM {
		application.Pinner.SetEnabled(false)
	}

	if themeName != "" {
		if _, ok := theme.ByName(themeName); !ok {
			return fmt.Errorf("unknown theme %q", themeName)
		}
		application.SetTheme(themeName)
	}

	// A failed load is shown inside the UI rather than aborting
	var startupErr error
	if path := application.InitialFile(fileArg); path != "" {
		startupErr = application.OpenFile(path)
	}

	if pin || application.Preferences().AlwaysOnTop {
		if err := application.SetAlwaysOnTop(true); err != nil && startupErr == nil {
			startupErr = fmt.Errorf("always on top: %w", err)
		}
	}

	p := tea.NewProgram(
		ui.NewRootModel(application, startupErr),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
