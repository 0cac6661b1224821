package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/notes"
	"github.com/starford/stickies/internal/window"
)

// Windows is the window controller surface driven by signals.
type Windows interface {
	OpenNote(ctx context.Context, path string, pos *models.Position, isNew bool) error
	CreateNewNote(ctx context.Context, pos *models.Position) (string, error)
	CreateNoteNearby(ctx context.Context, windowID string) (string, error)
	DeleteNote(ctx context.Context, path string) error
	ShowList(ctx context.Context) error
	NoteOf(ctx context.Context, windowID string) (string, error)
	StateOf(ctx context.Context, windowID string) (window.State, error)
	OpenPaths() []string
	Notify(ev window.Event)
}

// Notes is the note content pipeline.
type Notes interface {
	Dir() string
	InstallRoot() string
	Load(p string) (models.LoadedNote, error)
	Save(p, content, ifMatch string) (models.LoadedNote, error)
	ToggleCheckbox(p string, index int, checked bool) (models.LoadedNote, error)
	SaveImage(data []byte, ext string) (notes.Attachment, error)
}

// Lister feeds the list view.
type Lister interface {
	List(query string) ([]models.NoteSummary, error)
	SetFilter(q string)
	Refresh()
}

// Preferences is the settings service.
type Preferences interface {
	Theme() (models.Theme, error)
	ToggleTheme() (models.Theme, error)
	Shortcuts() (models.ShortcutMap, error)
	SaveShortcuts(m models.ShortcutMap) (models.ShortcutMap, error)
	Preferences() (models.Preferences, error)
	SetFontSize(n int) (int, error)
	AdjustFontSize(delta int) (int, error)
}

// Observer sees window notifications before the controller does.
type Observer interface {
	Observe(ev window.Event)
}

// Deps wires the router.
type Deps struct {
	Windows     Windows
	Notes       Notes
	List        Lister
	Prefs       Preferences
	Shell       Observer     // optional
	Events      http.Handler // optional, mounted at GET /events
	UserDataDir string
	Logger      *slog.Logger

	AuthEnabled bool
	Token       string
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := &Handler{
		windows:     d.Windows,
		notes:       d.Notes,
		list:        d.List,
		prefs:       d.Prefs,
		shell:       d.Shell,
		userDataDir: d.UserDataDir,
		logger:      d.Logger,
	}

	r := chi.NewRouter()
	r.Use(AuthMiddleware(d.AuthEnabled, d.Token))

	// Queries.
	r.Get("/paths", h.Paths)
	r.Get("/theme", h.GetTheme)
	r.Post("/theme/toggle", h.ToggleTheme)
	r.Get("/shortcuts", h.GetShortcuts)
	r.Put("/shortcuts", h.SaveShortcuts)
	r.Get("/preferences", h.GetPreferences)
	r.Put("/font-size", h.SetFontSize)

	// Window -> core signals and window notifications.
	r.Post("/signals/{signal}", h.Signal)
	r.Get("/windows", h.ListWindows)
	r.Get("/windows/{id}", h.GetWindow)
	r.Post("/windows/{id}/events", h.WindowEvent)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{name}", h.GetNote)
	r.Put("/notes/{name}", h.UpdateNote)
	r.Post("/notes/{name}/checkbox", h.ToggleCheckbox)
	r.Post("/attachments", h.UploadImage)

	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}

	return r
}
