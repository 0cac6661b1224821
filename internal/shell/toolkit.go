// Package shell implements the windowing toolkit for a UI shell process
// that listens on the SSE "shell" target and reports back over HTTP.
package shell

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/sse"
	"github.com/starford/stickies/internal/window"
)

// Commands published to the shell.
const (
	CmdCreateWindow = "create-window"
	CmdShowWindow   = "show-window"
	CmdFocusWindow  = "focus-window"
	CmdCloseWindow  = "close-window"
	CmdFlashFrame   = "flash-frame"
	CmdShowList     = "show-list"
)

// ErrDestroyed is returned by commands on a destroyed window.
var ErrDestroyed = errors.New("shell: window destroyed")

// Publisher delivers a signal to a target.
type Publisher interface {
	Send(target, typ string, data any)
}

// WindowCommand is the payload of every window command.
type WindowCommand struct {
	Window      string         `json:"window"`
	Bounds      *models.Bounds `json:"bounds,omitempty"`
	HasPosition bool           `json:"hasPosition,omitempty"`
	Flash       *bool          `json:"flash,omitempty"`
}

// Toolkit tracks the windows it asked the shell to create.
type Toolkit struct {
	pub Publisher

	mu      sync.Mutex
	windows map[string]*Window
}

// New returns a toolkit publishing through pub.
func New(pub Publisher) *Toolkit {
	return &Toolkit{pub: pub, windows: make(map[string]*Window)}
}

// CreateWindow asks the shell for a hidden window.
func (t *Toolkit) CreateWindow(opts window.CreateOptions) (window.Handle, error) {
	w := &Window{
		tk:     t,
		id:     uuid.NewString(),
		bounds: opts.Bounds,
	}
	t.mu.Lock()
	t.windows[w.id] = w
	t.mu.Unlock()

	b := opts.Bounds
	t.pub.Send(sse.TargetShell, CmdCreateWindow, WindowCommand{
		Window:      w.id,
		Bounds:      &b,
		HasPosition: opts.HasPosition,
	})
	return w, nil
}

// ShowList asks the shell to open or focus the list view.
func (t *Toolkit) ShowList() error {
	t.pub.Send(sse.TargetShell, CmdShowList, nil)
	return nil
}

// Lookup returns a tracked window.
func (t *Toolkit) Lookup(id string) (*Window, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.windows[id]
	return w, ok
}

// Observe updates cached window state from a shell report. It must run
// before the event is handed to the controller so handles reflect it.
func (t *Toolkit) Observe(ev window.Event) {
	t.mu.Lock()
	w, ok := t.windows[ev.WindowID]
	if ok && ev.Kind == window.EventClosed {
		delete(t.windows, ev.WindowID)
	}
	t.mu.Unlock()
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch ev.Kind {
	case window.EventMove, window.EventResize, window.EventClose:
		if ev.Bounds.HasSize() {
			w.bounds = ev.Bounds
		}
	case window.EventClosed:
		w.destroyed = true
	}
}

// Window is the core-side proxy of a shell window.
type Window struct {
	tk *Toolkit
	id string

	mu        sync.Mutex
	bounds    models.Bounds
	destroyed bool
}

func (w *Window) ID() string { return w.id }

func (w *Window) Bounds() models.Bounds {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

func (w *Window) IsDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

func (w *Window) command(cmd string, payload WindowCommand) error {
	if w.IsDestroyed() {
		return ErrDestroyed
	}
	payload.Window = w.id
	w.tk.pub.Send(sse.TargetShell, cmd, payload)
	return nil
}

func (w *Window) Show() error { return w.command(CmdShowWindow, WindowCommand{}) }
func (w *Window) Focus() error { return w.command(CmdFocusWindow, WindowCommand{}) }
func (w *Window) Close() error { return w.command(CmdCloseWindow, WindowCommand{}) }

func (w *Window) StopFlashing() {
	off := false
	_ = w.command(CmdFlashFrame, WindowCommand{Flash: &off})
}

// Send delivers a signal to the window's content, which listens on its own
// id as SSE target.
func (w *Window) Send(typ string, data any) {
	w.tk.pub.Send(w.id, typ, data)
}
