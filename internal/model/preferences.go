package model

// Default preference values. Window sizes are in terminal cells.
const (
	DefaultWindowWidth  = 80
	DefaultWindowHeight = 24
	DefaultTheme        = "nord"
)

// Preferences holds persisted user settings
type Preferences struct {
	LastFile     string `json:"last_file,omitempty"`
	WindowWidth  int    `json:"window_width"`  // columns
	WindowHeight int    `json:"window_height"` // rows
	WindowX      *int   `json:"window_x,omitempty"`
	WindowY      *int   `json:"window_y,omitempty"`
	AlwaysOnTop  bool   `json:"always_on_top"`
	Theme        string `json:"theme"`
}

// DefaultPreferences returns preferences for a fresh install
func DefaultPreferences() Preferences {
	return Preferences{
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
		Theme:        DefaultTheme,
	}
}
