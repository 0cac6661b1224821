// Package windowtest provides a scriptable in-memory windowing toolkit.
package windowtest

import (
	"errors"
	"strconv"
	"sync"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/window"
)

// Signal is one message sent to a fake window's content.
type Signal struct {
	Type string
	Data any
}

// Toolkit records every window it creates. Close on a fake window reports
// close and closed back through the attached notify function.
type Toolkit struct {
	// FailCreate, when set, is returned by CreateWindow.
	FailCreate error

	mu        sync.Mutex
	next      int
	windows   []*Window
	listShown int
	notify    func(window.Event)
}

// New returns an empty toolkit.
func New() *Toolkit { return &Toolkit{} }

// Attach sets where window notifications go, normally Controller.Notify.
func (t *Toolkit) Attach(fn func(window.Event)) {
	t.mu.Lock()
	t.notify = fn
	t.mu.Unlock()
}

func (t *Toolkit) emit(ev window.Event) {
	t.mu.Lock()
	fn := t.notify
	t.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// CreateWindow implements window.Toolkit.
func (t *Toolkit) CreateWindow(opts window.CreateOptions) (window.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailCreate != nil {
		return nil, t.FailCreate
	}
	t.next++
	w := &Window{
		tk:     t,
		id:     "w" + strconv.Itoa(t.next),
		Opts:   opts,
		bounds: opts.Bounds,
	}
	t.windows = append(t.windows, w)
	return w, nil
}

// ShowList implements window.Toolkit.
func (t *Toolkit) ShowList() error {
	t.mu.Lock()
	t.listShown++
	t.mu.Unlock()
	return nil
}

// ListShown returns how many times the list view was requested.
func (t *Toolkit) ListShown() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listShown
}

// Created returns every window created so far, oldest first.
func (t *Toolkit) Created() []*Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Window(nil), t.windows...)
}

// Last returns the most recently created window, or nil.
func (t *Toolkit) Last() *Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.windows) == 0 {
		return nil
	}
	return t.windows[len(t.windows)-1]
}

// Window is a fake window handle.
type Window struct {
	tk   *Toolkit
	id   string
	Opts window.CreateOptions

	mu         sync.Mutex
	bounds     models.Bounds
	shown      bool
	focusCount int
	closeCount int
	unflashed  int
	destroyed  bool
	sent       []Signal
}

var errDestroyed = errors.New("window destroyed")

func (w *Window) ID() string { return w.id }

func (w *Window) Bounds() models.Bounds {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

func (w *Window) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return errDestroyed
	}
	w.shown = true
	return nil
}

func (w *Window) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return errDestroyed
	}
	w.focusCount++
	return nil
}

// Close reports close with the current bounds, marks the window destroyed
// and reports closed.
func (w *Window) Close() error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return errDestroyed
	}
	w.closeCount++
	b := w.bounds
	w.mu.Unlock()

	w.tk.emit(window.Event{WindowID: w.id, Kind: window.EventClose, Bounds: b})

	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()

	w.tk.emit(window.Event{WindowID: w.id, Kind: window.EventClosed})
	return nil
}

func (w *Window) IsDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

func (w *Window) StopFlashing() {
	w.mu.Lock()
	w.unflashed++
	w.mu.Unlock()
}

func (w *Window) Send(typ string, data any) {
	w.mu.Lock()
	w.sent = append(w.sent, Signal{Type: typ, Data: data})
	w.mu.Unlock()
}

// Move sets the bounds and reports a move.
func (w *Window) Move(b models.Bounds) {
	w.mu.Lock()
	w.bounds = b
	w.mu.Unlock()
	w.tk.emit(window.Event{WindowID: w.id, Kind: window.EventMove, Bounds: b})
}

// Emit reports a notification without changing the window.
func (w *Window) Emit(kind window.Kind) {
	w.tk.emit(window.Event{WindowID: w.id, Kind: kind, Bounds: w.Bounds()})
}

// Destroy marks the window destroyed without reporting anything, leaving
// a stale registry entry behind.
func (w *Window) Destroy() {
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()
}

// Shown reports whether Show was called.
func (w *Window) Shown() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shown
}

// FocusCount returns how many times Focus was called.
func (w *Window) FocusCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focusCount
}

// CloseCount returns how many times Close succeeded.
func (w *Window) CloseCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeCount
}

// StopFlashingCount returns how many times StopFlashing was called.
func (w *Window) StopFlashingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.unflashed
}

// Sent returns the signals of the given type, or all when typ is empty.
func (w *Window) Sent(typ string) []Signal {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Signal
	for _, s := range w.sent {
		if typ == "" || s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}
