// Package listing keeps the list view in step with the notes directory.
package listing

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/notes"
	"github.com/starford/stickies/internal/sse"
)

// Source lists notes.
type Source interface {
	List() ([]models.Note, error)
}

// Publisher delivers a signal to a UI target.
type Publisher interface {
	Send(target, typ string, data any)
}

// RefreshPayload is the data of a refresh-list signal.
type RefreshPayload struct {
	Filter string               `json:"filter"`
	Items  []models.NoteSummary `json:"items"`
}

// Bridge recomputes the list on every refresh. It holds only the user's
// current filter text; everything else is derived from the notes directory.
type Bridge struct {
	src    Source
	pub    Publisher
	logger *slog.Logger

	mu     sync.Mutex
	filter string
}

// NewBridge returns a bridge reading from src and publishing to pub.
func NewBridge(src Source, pub Publisher, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{src: src, pub: pub, logger: logger}
}

// SetFilter stores the query applied by Refresh.
func (b *Bridge) SetFilter(q string) {
	b.mu.Lock()
	b.filter = q
	b.mu.Unlock()
}

// Filter returns the stored query.
func (b *Bridge) Filter() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// List returns the notes matching query (case-insensitive, against title
// or full content), newest first.
func (b *Bridge) List(query string) ([]models.NoteSummary, error) {
	all, err := b.src.List()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.NoteSummary, 0, len(all))
	for _, n := range all {
		title := notes.TitleOf(n.Content)
		if q != "" &&
			!strings.Contains(strings.ToLower(title), q) &&
			!strings.Contains(strings.ToLower(n.Content), q) {
			continue
		}
		out = append(out, models.NoteSummary{
			Path:      n.Path,
			Name:      filepath.Base(n.Path),
			Title:     title,
			UpdatedAt: n.UpdatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Path < out[j].Path
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Refresh re-lists, filters and sorts, then pushes the result to the list
// view.
func (b *Bridge) Refresh() {
	filter := b.Filter()
	items, err := b.List(filter)
	if err != nil {
		b.logger.Warn("listing: refresh failed", slog.String("error", err.Error()))
		return
	}
	b.pub.Send(sse.TargetList, sse.TypeRefreshList, RefreshPayload{Filter: filter, Items: items})
}
