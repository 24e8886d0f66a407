package views

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/ticklist/internal/ui/theme"
)

// MarkdownExtensions are the file types offered by the picker
var MarkdownExtensions = []string{".md", ".markdown"}

// FileSelectedMsg is sent when a file was chosen in the picker
type FileSelectedMsg struct {
	Path string
}

// PickerClosedMsg is sent when the picker was dismissed without a choice
type PickerClosedMsg struct{}

// PickerView lets the user browse for a markdown file
type PickerView struct {
	picker   filepicker.Model
	width    int
	height   int
	errorMsg string
}

// NewPickerView creates a picker rooted at dir sized to the content area
func NewPickerView(dir string, width, height int) PickerView {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = MarkdownExtensions
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowHidden = false
	fp.AutoHeight = true

	v := PickerView{picker: fp}
	return v.SetSize(width, height)
}

// Init reads the starting directory
func (v PickerView) Init() tea.Cmd {
	return v.picker.Init()
}

// SetSize updates the view dimensions
func (v PickerView) SetSize(width, height int) PickerView {
	v.width = width
	v.height = height
	// Title and error lines sit above the list
	v.picker, _ = v.picker.Update(tea.WindowSizeMsg{Width: width, Height: max(height-3, 3)})
	return v
}

// Update handles messages for the picker
func (v PickerView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		v.errorMsg = ""
		if keyMsg.String() == "q" {
			return v, func() tea.Msg { return PickerClosedMsg{} }
		}
	}

	var cmd tea.Cmd
	v.picker, cmd = v.picker.Update(msg)

	if ok, path := v.picker.DidSelectFile(msg); ok {
		return v, func() tea.Msg { return FileSelectedMsg{Path: path} }
	}
	if ok, path := v.picker.DidSelectDisabledFile(msg); ok {
		v.errorMsg = fmt.Sprintf("%s is not a markdown file", filepath.Base(path))
	}

	return v, cmd
}

// View renders the picker
func (v PickerView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("Open markdown file") +
		styles.Label.Render(v.picker.CurrentDirectory)

	errLine := ""
	if v.errorMsg != "" {
		errLine = lipgloss.NewStyle().Foreground(t.Error).Render(v.errorMsg)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, errLine, v.picker.View())
}
