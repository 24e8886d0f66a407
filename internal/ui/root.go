package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/ticklist/internal/app"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/ui/theme"
	"github.com/dori/ticklist/internal/ui/views"
)

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView View
	checklist   views.ChecklistView
	picker      views.PickerView
	helpVisible bool

	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model. startupErr, if set, is shown in the
// status line (typically a failed initial load).
func NewRootModel(application *app.App, startupErr error) RootModel {
	if t, ok := theme.ByName(application.Preferences().Theme); ok {
		theme.SetTheme(t)
	}

	m := RootModel{
		app:         application,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: ViewChecklist,
		checklist:   views.NewChecklistView(application),
	}
	if startupErr != nil {
		m.errorMsg = startupErr.Error()
	}
	return m
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return tea.SetWindowTitle(m.windowTitle())
}

// windowTitle names the open file for the terminal title bar
func (m RootModel) windowTitle() string {
	if !m.app.Store.Loaded() {
		return "ticklist"
	}
	return "ticklist - " + filepath.Base(m.app.Store.Path())
}

// contentHeight is the space left between header and footer
func (m RootModel) contentHeight() int {
	// header (1) + footer (status + hints)
	return max(m.height-3, 1)
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.app.SetWindowSize(msg.Width, msg.Height)

		m.checklist = m.checklist.SetSize(m.width, m.contentHeight())
		if m.currentView == ViewPicker {
			m.picker = m.picker.SetSize(m.width, m.contentHeight())
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// The picker owns the keyboard while open
		if m.currentView == ViewPicker {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			return m, nil

		case key.Matches(msg, m.keys.ThemeCycle):
			next := theme.Next()
			theme.SetTheme(next)
			m.app.SetTheme(next.Name)
			m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
			return m, nil

		case key.Matches(msg, m.keys.Open):
			m.helpVisible = false
			m.picker = views.NewPickerView(m.pickerDir(), m.width, m.contentHeight())
			m.currentView = ViewPicker
			return m, m.picker.Init()

		case key.Matches(msg, m.keys.Reload):
			if err := m.app.Reload(); err != nil {
				m.errorMsg = fmt.Sprintf("Reload failed: %v", err)
			} else {
				m.statusMsg = fmt.Sprintf("Reloaded %d tasks", m.app.Store.Len())
			}
			m.checklist = m.checklist.Refresh()
			return m, nil

		case key.Matches(msg, m.keys.Pin):
			above := !m.app.Preferences().AlwaysOnTop
			if err := m.app.SetAlwaysOnTop(above); err != nil {
				m.errorMsg = fmt.Sprintf("Always on top: %v", err)
				return m, nil
			}
			if above {
				m.statusMsg = "Pinned on top"
			} else {
				m.statusMsg = "Unpinned"
			}
			if !m.app.Pinner.IsEnabled() {
				m.statusMsg += " (saved, window manager hints off)"
			}
			return m, nil
		}

		if m.helpVisible {
			if msg.String() == "esc" {
				m.helpVisible = false
			}
			return m, nil
		}

	case views.FileSelectedMsg:
		m.currentView = ViewChecklist
		if err := m.app.OpenFile(msg.Path); err != nil {
			m.errorMsg = fmt.Sprintf("Could not open %s: %v", filepath.Base(msg.Path), err)
			return m, nil
		}
		m.checklist = m.checklist.Reset()
		m.statusMsg = fmt.Sprintf("Opened %s", filepath.Base(msg.Path))
		return m, tea.SetWindowTitle(m.windowTitle())

	case views.PickerClosedMsg:
		m.currentView = ViewChecklist
		return m, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch m.currentView {
	case ViewChecklist:
		var newView tea.Model
		newView, cmd = m.checklist.Update(msg)
		m.checklist = newView.(views.ChecklistView)
	case ViewPicker:
		var newView tea.Model
		newView, cmd = m.picker.Update(msg)
		m.picker = newView.(views.PickerView)
	}

	return m, cmd
}

// pickerDir starts the picker next to the open file, or in the working directory
func (m RootModel) pickerDir() string {
	if m.app.Store.Loaded() {
		return filepath.Dir(m.app.Store.Path())
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string
	switch {
	case m.helpVisible:
		content = m.renderHelp()
	case m.currentView == ViewPicker:
		content = m.picker.View()
	default:
		content = m.checklist.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < m.contentHeight() {
		content += strings.Repeat("\n", m.contentHeight()-contentLines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader renders the title, file name, progress and indicators
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("ticklist")

	subtle := lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1)
	var left []string
	left = append(left, title)
	if m.app.Store.Loaded() {
		left = append(left, subtle.Render(filepath.Base(m.app.Store.Path())))
		done, total := model.Progress(m.app.Store.Tasks())
		left = append(left, styles.Progress.Render(fmt.Sprintf("%d/%d", done, total)))
	}
	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, left...)

	right := fmt.Sprintf("theme: %s", t.Name)
	if m.app.Preferences().AlwaysOnTop {
		right = "pinned · " + right
	}
	rightSide := subtle.Render(right)

	gap := max(m.width-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 0)
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var hints string
	if m.currentView == ViewPicker {
		hint := func(k, desc string) string {
			return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
		}
		sep := styles.HelpSeparator.Render(" │ ")
		hints = hint("enter", "open") + sep + hint("h/l", "up/into dir") + sep + hint("q", "cancel")
	} else {
		hints = m.help.View(m.keys)
	}

	return statusLine + "\n" + hints
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).MarginTop(1)
	keyStyle := lipgloss.NewStyle().Foreground(t.Foreground).Bold(true).Width(14)
	descStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"Tasks", [][2]string{
			{"↑/k ↓/j", "Move up/down"},
			{"g / G", "Top/bottom"},
			{"space/tab/x", "Toggle done (saves the file)"},
		}},
		{"File", [][2]string{
			{"o", "Open a markdown file"},
			{"r", "Reload from disk"},
		}},
		{"Window", [][2]string{
			{"p", "Toggle always on top (wmctrl)"},
			{"ctrl+t", "Cycle theme"},
			{"? / esc", "Close this help"},
			{"q / ctrl+c", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(styles.Header.Render("Help"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.name))
		b.WriteString("\n")
		for _, kv := range s.keys {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}
	return styles.Panel.Render(b.String())
}
