package models

// Theme is the UI colour scheme.
type Theme string

// Supported themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme. Unknown values toggle to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Modifier names accepted in a shortcut.
const (
	ModCtrl  = "ctrl"
	ModShift = "shift"
	ModAlt   = "alt"
)

// Shortcut is a key binding for one editor action.
type Shortcut struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
}

// ShortcutMap maps action names to bindings.
type ShortcutMap map[string]Shortcut

// Preferences is the full user preference document.
type Preferences struct {
	FontSize  int         `json:"fontSize"`
	Theme     Theme       `json:"theme"`
	Shortcuts ShortcutMap `json:"shortcuts"`
}
