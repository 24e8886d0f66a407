package ui

// View represents the current active view
type View int

const (
	ViewChecklist View = iota
	ViewPicker
)
