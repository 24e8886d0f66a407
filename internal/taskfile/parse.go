package taskfile

import (
	"regexp"
	"strings"

	"github.com/dori/ticklist/internal/model"
)

// taskPattern matches a task line with its terminator already removed. The
// indent accepts any Unicode whitespace, not only RE2's ASCII \s.
var taskPattern = regexp.MustCompile(`^([\s\v\x{1c}-\x{1f}\x{85}\p{Z}]*)- \[([ xX])\] (.+)$`)

// splitLines cuts content after every "\n", keeping each terminator with its
// line. Joining the result gives back content unchanged.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := make([]string, 0, strings.Count(content, "\n")+1)
	for content != "" {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, content)
			break
		}
		lines = append(lines, content[:i+1])
		content = content[i+1:]
	}
	return lines
}

// splitTerminator separates a line's body from its "\n" or "\r\n" ending
func splitTerminator(line string) (body, terminator string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// parseLine returns the task encoded on a line, if any
func parseLine(line string, lineNumber int) (model.Task, bool) {
	body, _ := splitTerminator(line)
	m := taskPattern.FindStringSubmatch(body)
	if m == nil {
		return model.Task{}, false
	}
	return model.Task{
		Text:       m[3],
		Completed:  m[2] == "x" || m[2] == "X",
		LineNumber: lineNumber,
		Indent:     m[1],
	}, true
}

// parseTasks extracts tasks from lines in line order
func parseTasks(lines []string) []model.Task {
	var tasks []model.Task
	for i, line := range lines {
		if t, ok := parseLine(line, i); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}
