// Package notes treats the notes directory as the set of notes.
package notes

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/checksum"
	"github.com/starford/stickies/internal/markdown"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/storage"
)

// UntitledPlaceholder is the title of a note whose first line is blank.
const UntitledPlaceholder = "(No title)"

const (
	titleMaxRunes   = 30
	maxNameAttempts = 1000
	filenameLayout  = "2006-01-02T15:04:05.000Z"
)

// OwnWriteWindow is how long file events on a note are attributed to the
// repository after it wrote or removed that note.
const OwnWriteWindow = 2 * time.Second

// Repository creates, lists, loads, saves and deletes note files. Paths
// accepted and returned are canonical absolute paths.
type Repository struct {
	store       storage.Provider
	installRoot string
	now         func() time.Time
	logger      *slog.Logger

	mu      sync.Mutex
	touched map[string]time.Time // file name -> last own write
}

// Option configures a Repository.
type Option func(*Repository)

// WithInstallRoot sets the directory legacy app-asset links resolve against.
func WithInstallRoot(dir string) Option {
	return func(r *Repository) { r.installRoot = dir }
}

// WithClock overrides the time source used for new file names.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// NewRepository returns a repository over store.
func NewRepository(store storage.Provider, opts ...Option) *Repository {
	r := &Repository{
		store:   store,
		now:     time.Now,
		logger:  slog.Default(),
		touched: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the notes directory.
func (r *Repository) Dir() string { return r.store.Root() }

// InstallRoot returns the directory app-asset links resolve against.
func (r *Repository) InstallRoot() string { return r.installRoot }

// Canonicalize returns the absolute, cleaned form of p. Relative paths are
// taken relative to the notes directory.
func (r *Repository) Canonicalize(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("notes: empty path: %w", apperr.ErrNotFound)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.store.Root(), p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("notes: canonicalize %s: %w", p, err)
	}
	return abs, nil
}

// name maps a canonical path to a file name directly inside the notes
// directory. Anything else is reported as not found.
func (r *Repository) name(canonical string) (string, error) {
	rel, err := filepath.Rel(r.store.Root(), canonical)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("notes: %s is outside the notes directory: %w", canonical, apperr.ErrNotFound)
	}
	return rel, nil
}

func (r *Repository) resolve(p string) (canonical, name string, err error) {
	canonical, err = r.Canonicalize(p)
	if err != nil {
		return "", "", err
	}
	name, err = r.name(canonical)
	if err != nil {
		return "", "", err
	}
	return canonical, name, nil
}

// touch records that the repository is about to change the named file.
func (r *Repository) touch(name string) {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for n, at := range r.touched {
		if now.Sub(at) > OwnWriteWindow {
			delete(r.touched, n)
		}
	}
	r.touched[name] = now
}

// WroteRecently reports whether the file at path is a note the repository
// itself created, wrote or removed within OwnWriteWindow. The watcher uses
// it to tell in-app changes from external edits.
func (r *Repository) WroteRecently(path string) bool {
	if filepath.Dir(path) != r.store.Root() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.touched[filepath.Base(path)]
	return ok && time.Since(at) <= OwnWriteWindow
}

// Exists reports whether p names an existing note file.
func (r *Repository) Exists(p string) bool {
	_, name, err := r.resolve(p)
	if err != nil {
		return false
	}
	_, err = r.store.Stat(name)
	return err == nil
}

// List returns every note directly in the notes directory.
func (r *Repository) List() ([]models.Note, error) {
	entries, err := r.store.List()
	if err != nil {
		return nil, fmt.Errorf("notes: list: %w", err)
	}
	out := make([]models.Note, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.Note{
			Path:      e.Path,
			Content:   string(e.Content),
			UpdatedAt: e.ModTime,
		})
	}
	return out, nil
}

// Filename derives a note file name from t with ':' and '.' replaced.
func Filename(t time.Time) string {
	stamp := t.UTC().Format(filenameLayout)
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "note-" + stamp + storage.NoteExt
}

// Create writes a new empty note named after the current instant and
// returns its canonical path. A name already taken gets a -N suffix.
func (r *Repository) Create() (string, error) {
	base := strings.TrimSuffix(Filename(r.now()), storage.NoteExt)
	for i := 0; i < maxNameAttempts; i++ {
		name := base + storage.NoteExt
		if i > 0 {
			name = base + "-" + strconv.Itoa(i) + storage.NoteExt
		}
		r.touch(name)
		err := r.store.Create(name, nil)
		if err == nil {
			return filepath.Join(r.store.Root(), name), nil
		}
		if !errors.Is(err, apperr.ErrAlreadyExists) {
			return "", fmt.Errorf("notes: create: %w", err)
		}
	}
	return "", fmt.Errorf("notes: create %s: %w", base, apperr.ErrAlreadyExists)
}

// Delete removes the note file. A missing file is not an error.
func (r *Repository) Delete(p string) error {
	_, name, err := r.resolve(p)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	r.touch(name)
	if err := r.store.Delete(name); err != nil {
		return fmt.Errorf("notes: delete: %w", err)
	}
	return nil
}

func (r *Repository) read(p string) (canonical, name string, data []byte, err error) {
	canonical, name, err = r.resolve(p)
	if err != nil {
		return "", "", nil, err
	}
	data, err = r.store.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", nil, fmt.Errorf("notes: %s: %w", canonical, apperr.ErrNotFound)
		}
		return "", "", nil, fmt.Errorf("notes: read: %w", err)
	}
	return canonical, name, data, nil
}

// Load reads a note, converts legacy asset links (rewriting the file when
// they changed) and renders it.
func (r *Repository) Load(p string) (models.LoadedNote, error) {
	canonical, name, data, err := r.read(p)
	if err != nil {
		return models.LoadedNote{}, err
	}
	content := string(data)
	if converted, changed := markdown.ConvertAssetLinks(content, r.installRoot); changed {
		r.touch(name)
		if err := r.store.Write(name, []byte(converted)); err != nil {
			r.logger.Warn("notes: rewrite asset links failed",
				slog.String("path", canonical),
				slog.String("error", err.Error()))
		}
		content = converted
	}
	return r.loaded(canonical, content)
}

func (r *Repository) loaded(canonical, content string) (models.LoadedNote, error) {
	html, err := markdown.Render(content)
	if err != nil {
		return models.LoadedNote{}, err
	}
	return models.LoadedNote{
		Path:     canonical,
		Content:  content,
		HTML:     html,
		Checksum: checksum.Sum([]byte(content)),
	}, nil
}

// Save replaces the note content. When ifMatch is non-empty it must equal
// the checksum of the current content, otherwise apperr.ErrConflict.
func (r *Repository) Save(p, content, ifMatch string) (models.LoadedNote, error) {
	canonical, name, current, err := r.read(p)
	if err != nil {
		return models.LoadedNote{}, err
	}
	if !checksum.Matches(current, ifMatch) {
		return models.LoadedNote{}, fmt.Errorf("notes: save %s: %w", canonical, apperr.ErrConflict)
	}
	r.touch(name)
	if err := r.store.Write(name, []byte(content)); err != nil {
		return models.LoadedNote{}, fmt.Errorf("notes: save: %w", err)
	}
	return r.loaded(canonical, content)
}

// ToggleCheckbox sets the index-th task item of a note and saves it.
func (r *Repository) ToggleCheckbox(p string, index int, checked bool) (models.LoadedNote, error) {
	canonical, name, current, err := r.read(p)
	if err != nil {
		return models.LoadedNote{}, err
	}
	updated, err := markdown.ToggleCheckbox(string(current), index, checked)
	if err != nil {
		return models.LoadedNote{}, err
	}
	r.touch(name)
	if err := r.store.Write(name, []byte(updated)); err != nil {
		return models.LoadedNote{}, fmt.Errorf("notes: save: %w", err)
	}
	return r.loaded(canonical, updated)
}

// TitleOf derives the display title: the first line, trimmed, cut to 30
// characters, or UntitledPlaceholder when that is empty.
func TitleOf(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	first = strings.TrimSpace(first)
	if utf8.RuneCountInString(first) > titleMaxRunes {
		first = string([]rune(first)[:titleMaxRunes])
	}
	if first == "" {
		return UntitledPlaceholder
	}
	return first
}
