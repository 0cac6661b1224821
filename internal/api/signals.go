package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/window"
)

// Signals a window can send to the core.
const (
	SignalOpenNote     = "open-note"
	SignalCreateNote   = "create-new-note"
	SignalCreateNearby = "create-new-note-nearby"
	SignalDeleteNote   = "delete-note"
	SignalOpenMain     = "open-main-window"
	SignalNoteReady    = "note-ready"
)

// SignalRequest is the body of POST /api/signals/{signal}. Window is the
// sender's id; Note is the note the signal refers to, when any.
type SignalRequest struct {
	Window string `json:"window"`
	Note   string `json:"note"`
}

// Signal handles POST /api/signals/{signal}.
//
// A note that cannot be opened is logged and dropped: the caller only sees
// that no window appeared.
func (h *Handler) Signal(w http.ResponseWriter, r *http.Request) {
	var req SignalRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	ctx := r.Context()
	signal := chi.URLParam(r, "signal")

	switch signal {
	case SignalOpenNote:
		if req.Note == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("note is required"))
			return
		}
		if err := h.windows.OpenNote(ctx, req.Note, nil, false); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			writeError(w, "open note", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case SignalCreateNote, SignalCreateNearby:
		var (
			path string
			err  error
		)
		if signal == SignalCreateNearby && req.Window != "" {
			path, err = h.windows.CreateNoteNearby(ctx, req.Window)
			if errors.Is(err, apperr.ErrNotFound) {
				h.logger.Debug("api: sender window gone, creating at default position",
					slog.String("window", req.Window))
				path, err = h.windows.CreateNewNote(ctx, nil)
			}
		} else {
			path, err = h.windows.CreateNewNote(ctx, nil)
		}
		if err != nil {
			writeError(w, "create note", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"path": path})

	case SignalDeleteNote:
		note := req.Note
		if note == "" && req.Window != "" {
			p, err := h.windows.NoteOf(ctx, req.Window)
			if err != nil {
				writeError(w, "delete note", err)
				return
			}
			note = p
		}
		if note == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("note or window is required"))
			return
		}
		if err := h.windows.DeleteNote(ctx, note); err != nil {
			writeError(w, "delete note", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case SignalOpenMain:
		if err := h.windows.ShowList(ctx); err != nil {
			writeError(w, "show list", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case SignalNoteReady:
		if req.Window == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("window is required"))
			return
		}
		h.notify(window.Event{WindowID: req.Window, Kind: window.EventReady})
		w.WriteHeader(http.StatusAccepted)

	default:
		writeJSON(w, http.StatusNotFound, errorBody("unknown signal"))
	}
}

// WindowEvent handles POST /api/windows/{id}/events: a geometry, focus or
// close notification reported by the shell.
func (h *Handler) WindowEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   window.Kind   `json:"type"`
		Bounds models.Bounds `json:"bounds"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if !req.Type.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown event type"))
		return
	}
	h.notify(window.Event{
		WindowID: chi.URLParam(r, "id"),
		Kind:     req.Type,
		Bounds:   req.Bounds,
	})
	w.WriteHeader(http.StatusAccepted)
}

// ListWindows handles GET /api/windows: the notes that have a live window,
// in the order they were opened.
func (h *Handler) ListWindows(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"open": h.windows.OpenPaths()})
}

// GetWindow handles GET /api/windows/{id}. A shell that reconnects uses it
// to learn which note a window shows and where it is in its lifecycle.
func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.windows.NoteOf(r.Context(), id)
	if err != nil {
		writeError(w, "get window", err)
		return
	}
	state, err := h.windows.StateOf(r.Context(), id)
	if err != nil {
		writeError(w, "get window", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"window": id,
		"note":   note,
		"state":  state.String(),
	})
}

func (h *Handler) notify(ev window.Event) {
	if h.shell != nil {
		h.shell.Observe(ev)
	}
	h.windows.Notify(ev)
}
