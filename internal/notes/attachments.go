package notes

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/stickies/internal/markdown"
)

// ImagesDir is the attachment directory inside the notes directory.
const ImagesDir = "images"

// MaxImageSize is the largest accepted attachment (10 MB).
const MaxImageSize = 10 << 20

var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
}

// Attachment describes a stored image.
type Attachment struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Markdown string `json:"markdown"`
}

// ImageExt maps an image MIME type such as "image/png" to a file extension.
func ImageExt(contentType string) (string, bool) {
	mediaType, _, _ := strings.Cut(contentType, ";")
	kind, sub, ok := strings.Cut(strings.TrimSpace(strings.ToLower(mediaType)), "/")
	if !ok || kind != "image" || !imageExts[sub] {
		return "", false
	}
	return sub, true
}

// SaveImage stores data as images/<unixmillis>-<rand>.<ext> and returns
// the Markdown snippet that embeds it.
func (r *Repository) SaveImage(data []byte, ext string) (Attachment, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if !imageExts[ext] {
		return Attachment{}, fmt.Errorf("notes: unsupported image type %q", ext)
	}
	if len(data) > MaxImageSize {
		return Attachment{}, fmt.Errorf("notes: image exceeds %d bytes", MaxImageSize)
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	name := strconv.FormatInt(r.now().UnixMilli(), 10) + "-" + random + "." + ext
	rel := filepath.Join(ImagesDir, name)
	if err := r.store.Write(rel, data); err != nil {
		return Attachment{}, fmt.Errorf("notes: save image: %w", err)
	}
	abs := filepath.Join(r.store.Root(), rel)
	return Attachment{
		Name:     name,
		Path:     abs,
		Markdown: markdown.ImageMarkdown(name, abs),
	}, nil
}
