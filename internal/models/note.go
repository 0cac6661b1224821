// Package models defines the domain types for Stickies.
package models

import "time"

// Note is a Markdown file in the notes directory. Path is the canonical
// absolute path and doubles as the note's identity.
type Note struct {
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteSummary is one row of the list view.
type NoteSummary struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadedNote is what a note window receives after the content pipeline ran.
type LoadedNote struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	HTML     string `json:"html"`
	Checksum string `json:"checksum"`
}

// Bounds is a window rectangle. It is also the persisted geometry record.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HasSize reports whether both dimensions are positive.
func (b Bounds) HasSize() bool {
	return b.Width > 0 && b.Height > 0
}

// Position is an explicit top-left placement request.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offset returns the position shifted by d on both axes.
func (p Position) Offset(d int) Position {
	return Position{X: p.X + d, Y: p.Y + d}
}
