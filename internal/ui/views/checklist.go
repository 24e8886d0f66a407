package views

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/ticklist/internal/app"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/ui/theme"
)

// ChecklistView shows the tasks of the loaded file as checkboxes
type ChecklistView struct {
	app   *app.App
	tasks []model.Task

	cursor       int
	scrollOffset int
	width        int
	height       int

	statusMsg string
	errorMsg  string
}

// NewChecklistView creates a checklist view over the app's store
func NewChecklistView(application *app.App) ChecklistView {
	v := ChecklistView{app: application}
	return v.Refresh()
}

// Init initializes the checklist view
func (v ChecklistView) Init() tea.Cmd {
	return nil
}

// Refresh re-reads the tasks from the store, keeping the cursor in range
func (v ChecklistView) Refresh() ChecklistView {
	v.tasks = v.app.Store.Tasks()
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureCursorVisible()
	return v
}

// Reset moves the cursor to the top, for a newly opened file
func (v ChecklistView) Reset() ChecklistView {
	v.cursor = 0
	v.scrollOffset = 0
	v.statusMsg = ""
	v.errorMsg = ""
	return v.Refresh()
}

// SetSize updates the view dimensions
func (v ChecklistView) SetSize(width, height int) ChecklistView {
	v.width = width
	v.height = height
	v.ensureCursorVisible()
	return v
}

// Cursor returns the index of the task under the cursor
func (v ChecklistView) Cursor() int {
	return v.cursor
}

// visibleTaskCount returns how many tasks fit, leaving a line for status
func (v ChecklistView) visibleTaskCount() int {
	available := v.height - 2
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ChecklistView) ensureCursorVisible() {
	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := max(0, len(v.tasks)-visible)
	v.scrollOffset = min(max(v.scrollOffset, 0), maxOffset)
}

// Update handles messages for the checklist view
func (v ChecklistView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	v.statusMsg = ""
	v.errorMsg = ""

	switch keyMsg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
	case "g", "home":
		v.cursor = 0
	case "G", "end":
		v.cursor = max(0, len(v.tasks)-1)
	case "pgup", "ctrl+u":
		v.cursor = max(0, v.cursor-v.visibleTaskCount()/2)
	case "pgdown", "ctrl+d":
		v.cursor = min(max(0, len(v.tasks)-1), v.cursor+v.visibleTaskCount()/2)
	case " ", "tab", "enter", "x":
		v = v.toggle()
	}

	v.ensureCursorVisible()
	return v, nil
}

// toggle flips the task under the cursor and writes the file
func (v ChecklistView) toggle() ChecklistView {
	if len(v.tasks) == 0 {
		return v
	}

	if err := v.app.ToggleStatus(v.cursor); err != nil {
		v.errorMsg = fmt.Sprintf("Could not save: %v", err)
		return v.Refresh()
	}

	v = v.Refresh()
	task := v.tasks[v.cursor]
	if task.Completed {
		v.statusMsg = fmt.Sprintf("Checked: %s", task.Text)
	} else {
		v.statusMsg = fmt.Sprintf("Unchecked: %s", task.Text)
	}
	return v
}

// View renders the checklist
func (v ChecklistView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	switch {
	case !v.app.Store.Loaded():
		b.WriteString(styles.Label.Render("No file loaded. Press o to open a markdown file."))
		b.WriteString("\n")
	case len(v.tasks) == 0:
		name := filepath.Base(v.app.Store.Path())
		b.WriteString(styles.Label.Render(fmt.Sprintf("No task lines in %s.", name)))
		b.WriteString("\n")
	default:
		end := min(len(v.tasks), v.scrollOffset+v.visibleTaskCount())
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderTask(v.tasks[i], i == v.cursor))
			b.WriteString("\n")
		}
	}

	if v.errorMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render(v.errorMsg))
	} else if v.statusMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Info).Render(v.statusMsg))
	}

	return b.String()
}

// renderTask renders one checkbox row
func (v ChecklistView) renderTask(task model.Task, isCursor bool) string {
	styles := theme.Current.Styles

	pointer := "  "
	if isCursor {
		pointer = styles.HelpKey.Render("> ")
	}

	indent := strings.ReplaceAll(task.Indent, "\t", "    ")

	checkbox := styles.Checkbox.Render("[ ]")
	textStyle := styles.TaskNormal
	if task.Completed {
		checkbox = styles.CheckboxDone.Render("[x]")
		textStyle = styles.TaskDone
	}
	if isCursor {
		textStyle = textStyle.Inherit(styles.TaskCursor)
	}

	return pointer + indent + checkbox + " " + textStyle.Render(task.Text)
}
