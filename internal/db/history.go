package db

import (
	"time"

	"github.com/dori/ticklist/internal/model"
	"github.com/google/uuid"
)

// RecordStatusChange stores an accepted status update for path
func (db *DB) RecordStatusChange(path string, task model.Task) (*model.StatusChange, error) {
	change := &model.StatusChange{
		ID:         uuid.New().String(),
		FilePath:   path,
		LineNumber: task.LineNumber,
		Text:       task.Text,
		Completed:  task.Completed,
		ChangedAt:  time.Now(),
	}

	completed := 0
	if task.Completed {
		completed = 1
	}

	_, err := db.Exec(`
		INSERT INTO status_changes (id, file_path, line_number, text, completed, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, change.ID, change.FilePath, change.LineNumber, change.Text, completed, change.ChangedAt)
	if err != nil {
		return nil, err
	}

	return change, nil
}

// RecentStatusChanges returns up to limit changes, newest first
func (db *DB) RecentStatusChanges(limit int) ([]model.StatusChange, error) {
	rows, err := db.Query(`
		SELECT id, file_path, line_number, text, completed, changed_at
		FROM status_changes
		ORDER BY changed_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		var completed int
		if err := rows.Scan(&c.ID, &c.FilePath, &c.LineNumber, &c.Text, &completed, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.Completed = completed == 1
		changes = append(changes, c)
	}

	return changes, rows.Err()
}
