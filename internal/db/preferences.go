package db

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/dori/ticklist/internal/model"
)

// Preference keys as stored in the preferences table
const (
	keyLastFile     = "last_file"
	keyWindowWidth  = "window_width"
	keyWindowHeight = "window_height"
	keyWindowX      = "window_x"
	keyWindowY      = "window_y"
	keyAlwaysOnTop  = "always_on_top"
	keyTheme        = "theme"
)

// GetPreferences returns stored preferences laid over the defaults.
// Values that fail to parse keep their default.
func (db *DB) GetPreferences() (model.Preferences, error) {
	prefs := model.DefaultPreferences()

	rows, err := db.Query(`SELECT key, value FROM preferences`)
	if err != nil {
		return prefs, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return prefs, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return prefs, err
	}

	if v, ok := values[keyLastFile]; ok {
		prefs.LastFile = v
	}
	if n, ok := intValue(values, keyWindowWidth); ok && n > 0 {
		prefs.WindowWidth = n
	}
	if n, ok := intValue(values, keyWindowHeight); ok && n > 0 {
		prefs.WindowHeight = n
	}
	if n, ok := intValue(values, keyWindowX); ok {
		prefs.WindowX = &n
	}
	if n, ok := intValue(values, keyWindowY); ok {
		prefs.WindowY = &n
	}
	if v, ok := values[keyAlwaysOnTop]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			prefs.AlwaysOnTop = b
		}
	}
	if v, ok := values[keyTheme]; ok && v != "" {
		prefs.Theme = v
	}

	return prefs, nil
}

// SavePreferences stores every preference in a single transaction.
// Unset optional values are removed.
func (db *DB) SavePreferences(prefs model.Preferences) error {
	now := time.Now()

	values := map[string]*string{
		keyLastFile:     strPtr(prefs.LastFile),
		keyWindowWidth:  strPtr(strconv.Itoa(prefs.WindowWidth)),
		keyWindowHeight: strPtr(strconv.Itoa(prefs.WindowHeight)),
		keyWindowX:      intPtrString(prefs.WindowX),
		keyWindowY:      intPtrString(prefs.WindowY),
		keyAlwaysOnTop:  strPtr(strconv.FormatBool(prefs.AlwaysOnTop)),
		keyTheme:        strPtr(prefs.Theme),
	}
	if prefs.LastFile == "" {
		values[keyLastFile] = nil
	}

	return db.Transaction(func(tx *sql.Tx) error {
		for k, v := range values {
			if v == nil {
				if _, err := tx.Exec(`DELETE FROM preferences WHERE key = ?`, k); err != nil {
					return err
				}
				continue
			}
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
			`, k, *v, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func intValue(values map[string]string, key string) (int, bool) {
	v, ok := values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func strPtr(s string) *string {
	return &s
}

func intPtrString(n *int) *string {
	if n == nil {
		return nil
	}
	return strPtr(strconv.Itoa(*n))
}
