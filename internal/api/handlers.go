package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler holds API route handlers.
type Handler struct {
	windows     Windows
	notes       Notes
	list        Lister
	prefs       Preferences
	shell       Observer
	userDataDir string
	logger      *slog.Logger
}

// noteName extracts the note file name from the URL.
func noteName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListNotes handles GET /api/notes.
//
//	@Summary	List notes for the list view, newest first
//	@Tags		notes
//	@Produce	json
//	@Param		q	query		string	false	"Case-insensitive filter on title and content"
//	@Success	200	{object}	map[string]any
//	@Router		/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	h.list.SetFilter(q)
	items, err := h.list.List(q)
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": items,
		"total": len(items),
	})
}

// GetNote handles GET /api/notes/{name}.
//
//	@Summary	Load a note: legacy asset links converted, Markdown rendered
//	@Tags		notes
//	@Produce	json
//	@Param		name	path		string	true	"Note file name"
//	@Success	200		{object}	models.LoadedNote
//	@Failure	404		{object}	errResponse
//	@Router		/notes/{name} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Load(noteName(r))
	if err != nil {
		writeError(w, "load note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /api/notes/{name}.
//
//	@Summary	Save note content with optional optimistic concurrency
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		name		path		string	true	"Note file name"
//	@Param		If-Match	header		string	false	"SHA-256 checksum of the content being replaced"
//	@Success	200			{object}	models.LoadedNote
//	@Failure	404			{object}	errResponse
//	@Failure	409			{object}	errResponse
//	@Router		/notes/{name} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.notes.Save(noteName(r), req.Content, ifMatch)
	if err != nil {
		writeError(w, "save note", err)
		return
	}
	h.list.Refresh()
	writeJSON(w, http.StatusOK, note)
}

// ToggleCheckbox handles POST /api/notes/{name}/checkbox.
func (h *Handler) ToggleCheckbox(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index   *int `json:"index"`
		Checked bool `json:"checked"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Index == nil || *req.Index < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("index is required"))
		return
	}
	note, err := h.notes.ToggleCheckbox(noteName(r), *req.Index, req.Checked)
	if err != nil {
		writeError(w, "toggle checkbox", err)
		return
	}
	h.list.Refresh()
	writeJSON(w, http.StatusOK, note)
}
