package window

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/persist"
	"github.com/starford/stickies/internal/registry"
	"github.com/starford/stickies/internal/sse"
)

// Defaults for window placement.
const (
	DefaultWidth         = 400
	DefaultHeight        = 400
	DefaultCascadeOffset = 40
)

// Notes is the part of the note repository the controller uses.
type Notes interface {
	Canonicalize(p string) (string, error)
	Exists(p string) bool
	Create() (string, error)
	Delete(p string) error
}

// GeometryStore persists window bounds per note.
type GeometryStore interface {
	Lookup(notePath string) (models.Bounds, bool, error)
	Save(notePath string, b models.Bounds) error
	Delete(notePath string) error
}

// Refresher redraws the list view.
type Refresher interface {
	Refresh()
}

// Params wires a Controller.
type Params struct {
	Toolkit  Toolkit
	Registry *registry.Registry[Handle]
	Notes    Notes
	Geometry GeometryStore
	Queue    *persist.Queue
	List     Refresher
	Logger   *slog.Logger

	DefaultWidth  int
	DefaultHeight int
	CascadeOffset int
}

// LoadNotePayload is the data of a load-note signal.
type LoadNotePayload struct {
	Path  string `json:"path"`
	IsNew bool   `json:"isNew"`
}

type record struct {
	path   string
	handle Handle
	state  State
	isNew  bool
	loaded bool // load-note already sent once
	// deleted marks a window closing because its note was deleted; its
	// geometry is not saved again and the list is not refreshed twice.
	deleted bool
}

// Controller owns the note windows.
//
// Concurrency model: a single loop goroutine runs every operation and every
// toolkit notification in arrival order, so registry checks and close
// handling never interleave. Public methods submit work to the loop and
// wait for it; Notify only enqueues.
type Controller struct {
	toolkit  Toolkit
	reg      *registry.Registry[Handle]
	notes    Notes
	geometry GeometryStore
	queue    *persist.Queue
	list     Refresher
	logger   *slog.Logger

	width, height, cascade int

	records map[string]*record // by window id, loop-owned

	mu     sync.Mutex
	inbox  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

// New starts a controller.
func New(p Params) *Controller {
	c := &Controller{
		toolkit:  p.Toolkit,
		reg:      p.Registry,
		notes:    p.Notes,
		geometry: p.Geometry,
		queue:    p.Queue,
		list:     p.List,
		logger:   p.Logger,
		width:    p.DefaultWidth,
		height:   p.DefaultHeight,
		cascade:  p.CascadeOffset,
		records:  make(map[string]*record),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.reg == nil {
		c.reg = registry.New[Handle](nil)
	}
	if c.width <= 0 {
		c.width = DefaultWidth
	}
	if c.height <= 0 {
		c.height = DefaultHeight
	}
	if c.cascade == 0 {
		c.cascade = DefaultCascadeOffset
	}
	go c.run()
	return c
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		c.mu.Lock()
		batch := c.inbox
		c.inbox = nil
		closed := c.closed
		c.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-c.wake
	}
}

func (c *Controller) post(fn func()) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.inbox = append(c.inbox, fn)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// call runs fn on the loop and waits for its result.
func (c *Controller) call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !c.post(func() { result <- fn() }) {
		return fmt.Errorf("window: %w", apperr.ErrClosed)
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop after the work already queued has run.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
	<-c.done
}

// Sync waits until everything submitted before it has been handled.
func (c *Controller) Sync(ctx context.Context) error {
	return c.call(ctx, func() error { return nil })
}

// Notify enqueues a toolkit notification. It never blocks.
func (c *Controller) Notify(ev Event) {
	if !c.post(func() { c.handle(ev) }) {
		c.logger.Debug("window: event after close dropped",
			slog.String("window", ev.WindowID),
			slog.String("event", string(ev.Kind)))
	}
}

// OpenNote shows the window for path, creating it if needed. pos, when
// set, overrides the saved position. isNew is passed to the window with
// its first load-note signal. A missing note yields apperr.ErrNotFound
// and opens nothing.
func (c *Controller) OpenNote(ctx context.Context, path string, pos *models.Position, isNew bool) error {
	return c.call(ctx, func() error { return c.openNote(path, pos, isNew) })
}

// CreateNewNote creates an empty note, opens it and refreshes the list.
func (c *Controller) CreateNewNote(ctx context.Context, pos *models.Position) (string, error) {
	var created string
	err := c.call(ctx, func() error {
		p, err := c.createNewNote(pos)
		created = p
		return err
	})
	return created, err
}

// CreateNoteNearby creates a note whose window cascades from the window
// with the given id.
func (c *Controller) CreateNoteNearby(ctx context.Context, windowID string) (string, error) {
	var created string
	err := c.call(ctx, func() error {
		rec, ok := c.records[windowID]
		if !ok || rec.handle.IsDestroyed() {
			return fmt.Errorf("window: %s: %w", windowID, apperr.ErrNotFound)
		}
		b := rec.handle.Bounds()
		pos := models.Position{X: b.X, Y: b.Y}.Offset(c.cascade)
		p, err := c.createNewNote(&pos)
		created = p
		return err
	})
	return created, err
}

// DeleteNote removes a note with its geometry, closes its window and
// refreshes the list.
func (c *Controller) DeleteNote(ctx context.Context, path string) error {
	return c.call(ctx, func() error { return c.deleteNote(path) })
}

// ShowList opens or focuses the list view.
func (c *Controller) ShowList(ctx context.Context) error {
	return c.call(ctx, func() error { return c.toolkit.ShowList() })
}

// NoteOf returns the note shown by the window with the given id.
func (c *Controller) NoteOf(ctx context.Context, windowID string) (string, error) {
	var path string
	err := c.call(ctx, func() error {
		rec, ok := c.records[windowID]
		if !ok {
			return fmt.Errorf("window: %s: %w", windowID, apperr.ErrNotFound)
		}
		path = rec.path
		return nil
	})
	return path, err
}

// StateOf returns the lifecycle stage of the window with the given id.
func (c *Controller) StateOf(ctx context.Context, windowID string) (State, error) {
	var st State
	err := c.call(ctx, func() error {
		rec, ok := c.records[windowID]
		if !ok {
			return fmt.Errorf("window: %s: %w", windowID, apperr.ErrNotFound)
		}
		st = rec.state
		return nil
	})
	return st, err
}

// IsOpen reports whether a live window shows path.
func (c *Controller) IsOpen(path string) bool {
	canonical, err := c.notes.Canonicalize(path)
	if err != nil {
		return false
	}
	h, ok := c.reg.Lookup(canonical)
	return ok && !h.IsDestroyed()
}

// OpenPaths returns the notes with live windows.
func (c *Controller) OpenPaths() []string {
	return c.reg.LivePaths()
}

func (c *Controller) openNote(path string, pos *models.Position, isNew bool) error {
	canonical, err := c.notes.Canonicalize(path)
	if err != nil {
		c.logger.Warn("window: open skipped", slog.String("path", path), slog.String("error", err.Error()))
		return err
	}
	if !c.notes.Exists(canonical) {
		c.logger.Warn("window: open skipped: note not found", slog.String("path", canonical))
		return fmt.Errorf("window: open %s: %w", canonical, apperr.ErrNotFound)
	}

	if h, ok := c.reg.Lookup(canonical); ok {
		if !h.IsDestroyed() {
			if err := h.Focus(); err != nil {
				c.logger.Warn("window: focus failed", slog.String("path", canonical), slog.String("error", err.Error()))
			}
			return nil
		}
		c.logger.Debug("window: dropping stale entry", slog.String("path", canonical), slog.String("window", h.ID()))
		delete(c.records, h.ID())
		c.reg.Release(canonical, h.ID())
	}

	opts := c.initialBounds(canonical, pos)
	h, err := c.toolkit.CreateWindow(opts)
	if err != nil {
		return fmt.Errorf("window: create %s: %w", canonical, err)
	}

	c.records[h.ID()] = &record{
		path:   canonical,
		handle: h,
		state:  StateCreated,
		isNew:  isNew,
	}
	if err := c.reg.Register(canonical, h); err != nil {
		delete(c.records, h.ID())
		_ = h.Close()
		return err
	}

	c.logger.Info("window: opened",
		slog.String("path", canonical),
		slog.String("window", h.ID()),
		slog.Bool("new", isNew))
	return nil
}

// initialBounds combines the default size, saved geometry and an explicit
// position. The lookup goes through the queue so it sees pending saves.
func (c *Controller) initialBounds(canonical string, pos *models.Position) CreateOptions {
	opts := CreateOptions{Bounds: models.Bounds{Width: c.width, Height: c.height}}

	var saved models.Bounds
	var found bool
	err := c.queue.Do("geometry.lookup", func() error {
		var err error
		saved, found, err = c.geometry.Lookup(canonical)
		return err
	})
	if err != nil {
		c.logger.Warn("window: geometry lookup failed", slog.String("path", canonical), slog.String("error", err.Error()))
		found = false
	}
	if found {
		if saved.HasSize() {
			opts.Bounds.Width = saved.Width
			opts.Bounds.Height = saved.Height
		}
		opts.Bounds.X, opts.Bounds.Y = saved.X, saved.Y
		opts.HasPosition = true
	}
	if pos != nil {
		opts.Bounds.X, opts.Bounds.Y = pos.X, pos.Y
		opts.HasPosition = true
	}
	return opts
}

func (c *Controller) createNewNote(pos *models.Position) (string, error) {
	p, err := c.notes.Create()
	if err != nil {
		return "", fmt.Errorf("window: create note: %w", err)
	}
	if err := c.openNote(p, pos, true); err != nil {
		c.logger.Warn("window: new note not opened", slog.String("path", p), slog.String("error", err.Error()))
	}
	c.list.Refresh()
	return p, nil
}

func (c *Controller) deleteNote(path string) error {
	canonical, err := c.notes.Canonicalize(path)
	if err != nil {
		return err
	}

	c.queue.Go("geometry.delete", func() error { return c.geometry.Delete(canonical) })

	if err := c.notes.Delete(canonical); err != nil {
		c.logger.Warn("window: delete note file failed", slog.String("path", canonical), slog.String("error", err.Error()))
	}

	if h, ok := c.reg.Lookup(canonical); ok && !h.IsDestroyed() {
		if rec, ok := c.records[h.ID()]; ok {
			rec.deleted = true
		}
		if err := h.Close(); err != nil {
			c.logger.Warn("window: close failed", slog.String("path", canonical), slog.String("error", err.Error()))
		}
	}
	// The note leaves the session now, not when the window reports closed.
	c.reg.Unregister(canonical)

	c.list.Refresh()
	c.logger.Info("window: note deleted", slog.String("path", canonical))
	return nil
}

func (c *Controller) saveGeometry(rec *record, b models.Bounds) {
	if !b.HasSize() {
		b = rec.handle.Bounds()
	}
	if !b.HasSize() {
		return
	}
	path := rec.path
	c.queue.Go("geometry.save", func() error { return c.geometry.Save(path, b) })
}

func (c *Controller) handle(ev Event) {
	rec, ok := c.records[ev.WindowID]
	if !ok {
		c.logger.Debug("window: event for unknown window",
			slog.String("window", ev.WindowID),
			slog.String("event", string(ev.Kind)))
		return
	}

	switch ev.Kind {
	case EventReady:
		isNew := rec.isNew && !rec.loaded
		rec.loaded = true
		rec.handle.Send(sse.TypeLoadNote, LoadNotePayload{Path: rec.path, IsNew: isNew})

	case EventLoaded:
		if rec.state != StateCreated {
			return
		}
		if err := rec.handle.Show(); err != nil {
			c.logger.Warn("window: show failed", slog.String("path", rec.path), slog.String("error", err.Error()))
		}
		if err := rec.handle.Focus(); err != nil {
			c.logger.Warn("window: focus failed", slog.String("path", rec.path), slog.String("error", err.Error()))
		}
		rec.state = StateShown

	case EventFocus:
		if rec.state >= StateClosing {
			return
		}
		rec.state = StateFocused
		rec.handle.Send(sse.TypeWindowFocused, nil)

	case EventBlur:
		if rec.state >= StateClosing {
			return
		}
		rec.state = StateBlurred
		rec.handle.Send(sse.TypeWindowBlurred, nil)
		rec.handle.StopFlashing()

	case EventMove, EventResize:
		if rec.deleted || rec.state >= StateClosing {
			return
		}
		c.saveGeometry(rec, ev.Bounds)

	case EventClose:
		if rec.state >= StateClosing {
			return
		}
		rec.state = StateClosing
		if !rec.deleted {
			c.saveGeometry(rec, ev.Bounds)
		}

	case EventClosed:
		c.teardown(rec)
	}
}

// teardown runs once a window is gone: unregister (which resnapshots the
// session through the registry hook), then refresh the list.
func (c *Controller) teardown(rec *record) {
	rec.state = StateClosed
	id := rec.handle.ID()
	delete(c.records, id)
	c.reg.Release(rec.path, id)
	c.logger.Info("window: closed", slog.String("path", rec.path), slog.String("window", id))
	if !rec.deleted {
		c.list.Refresh()
	}
}
