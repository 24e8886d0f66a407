package model

import (
	"time"
)

// StatusChange records one accepted status update of a task
type StatusChange struct {
	ID         string    `json:"id"`
	FilePath   string    `json:"file_path"`
	LineNumber int       `json:"line_number"`
	Text       string    `json:"text"`
	Completed  bool      `json:"completed"`
	ChangedAt  time.Time `json:"changed_at"`
}

// Verb returns a short description of the change
func (c *StatusChange) Verb() string {
	if c.Completed {
		return "checked"
	}
	return "unchecked"
}
