package model

// Task markers as they appear between the brackets of a task line
const (
	MarkerOpen = ' '
	MarkerDone = 'x'
)

// Task represents one checklist item parsed from a markdown file
type Task struct {
	Text       string `json:"text"`
	Completed  bool   `json:"completed"`
	LineNumber int    `json:"line_number"` // 0-based index into the file's lines
	Indent     string `json:"indent,omitempty"`
}

// Marker returns the checkbox character for the task's current status
func (t *Task) Marker() byte {
	if t.Completed {
		return MarkerDone
	}
	return MarkerOpen
}

// Line rebuilds the task's source line without a line terminator
func (t *Task) Line() string {
	return t.Indent + "- [" + string(t.Marker()) + "] " + t.Text
}

// Progress returns the number of completed tasks and the total
func Progress(tasks []Task) (done, total int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return done, len(tasks)
}
