package api

import (
	"net/http"

	"github.com/starford/stickies/internal/models"
)

// Paths handles GET /api/paths.
func (h *Handler) Paths(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"userData": h.userDataDir,
		"notes":    h.notes.Dir(),
		"install":  h.notes.InstallRoot(),
	})
}

// GetTheme handles GET /api/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	theme, err := h.prefs.Theme()
	if err != nil {
		writeError(w, "get theme", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.Theme{"theme": theme})
}

// ToggleTheme handles POST /api/theme/toggle. Every window receives
// theme-changed.
func (h *Handler) ToggleTheme(w http.ResponseWriter, _ *http.Request) {
	theme, err := h.prefs.ToggleTheme()
	if err != nil {
		writeError(w, "toggle theme", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.Theme{"theme": theme})
}

func (h *Handler) GetShortcuts(w http.ResponseWriter, _ *http.Request) {
	m, err := h.prefs.Shortcuts()
	if err != nil {
		writeError(w, "get shortcuts", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// SaveShortcuts handles PUT /api/shortcuts. The body may hold any subset
// of actions; the merged map is returned and broadcast.
func (h *Handler) SaveShortcuts(w http.ResponseWriter, r *http.Request) {
	var m models.ShortcutMap
	if err := decodeJSON(w, r, &m); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	merged, err := h.prefs.SaveShortcuts(m)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

func (h *Handler) GetPreferences(w http.ResponseWriter, _ *http.Request) {
	p, err := h.prefs.Preferences()
	if err != nil {
		writeError(w, "get preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SetFontSize handles PUT /api/font-size with either an absolute size or a
// delta. The stored value is clamped and returned.
func (h *Handler) SetFontSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size  *int `json:"size"`
		Delta *int `json:"delta"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var (
		n   int
		err error
	)
	switch {
	case req.Size != nil:
		n, err = h.prefs.SetFontSize(*req.Size)
	case req.Delta != nil:
		n, err = h.prefs.AdjustFontSize(*req.Delta)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("size or delta is required"))
		return
	}
	if err != nil {
		writeError(w, "set font size", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"fontSize": n})
}
