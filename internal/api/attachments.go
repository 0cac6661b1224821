package api

import (
	"io"
	"net/http"

	"github.com/starford/stickies/internal/notes"
)

// UploadImage handles POST /api/attachments (multipart/form-data, field
// "file"). The response carries the Markdown snippet to insert.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, notes.MaxImageSize+1<<20)

	if err := r.ParseMultipartForm(notes.MaxImageSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	ext, ok := notes.ImageExt(header.Header.Get("Content-Type"))
	if !ok {
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody("unsupported image type"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, notes.MaxImageSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if len(data) > notes.MaxImageSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("image too large"))
		return
	}

	att, err := h.notes.SaveImage(data, ext)
	if err != nil {
		writeError(w, "save image", err)
		return
	}
	writeJSON(w, http.StatusCreated, att)
}
