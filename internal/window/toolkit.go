// Package window opens, focuses and tears down note windows and keeps the
// registry, geometry store, session and list view in step with them.
package window

import "github.com/starford/stickies/internal/models"

// Handle is a live window created by a Toolkit.
type Handle interface {
	ID() string
	Bounds() models.Bounds
	Show() error
	Focus() error
	// Close requests the window to close. The toolkit reports the outcome
	// through EventClose and EventClosed.
	Close() error
	IsDestroyed() bool
	StopFlashing()
	// Send delivers a signal to the window's own content.
	Send(typ string, data any)
}

// CreateOptions are the initial window parameters. Width and Height are
// always set; X and Y only count when HasPosition is true.
type CreateOptions struct {
	Bounds      models.Bounds
	HasPosition bool
}

// Toolkit is the windowing capability the controller drives. Windows are
// created hidden. Implementations report window activity by calling
// Controller.Notify and must not call other controller methods from
// within a Toolkit or Handle method.
type Toolkit interface {
	CreateWindow(opts CreateOptions) (Handle, error)
	ShowList() error
}

// Kind is a window notification type.
type Kind string

// Notifications a toolkit reports.
const (
	EventReady  Kind = "ready"  // content initialized and asks for its note
	EventLoaded Kind = "loaded" // initial content load finished
	EventFocus  Kind = "focus"
	EventBlur   Kind = "blur"
	EventMove   Kind = "move"
	EventResize Kind = "resize"
	EventClose  Kind = "close"  // about to close
	EventClosed Kind = "closed" // destroyed
)

// Valid reports whether k is a known notification.
func (k Kind) Valid() bool {
	switch k {
	case EventReady, EventLoaded, EventFocus, EventBlur, EventMove, EventResize, EventClose, EventClosed:
		return true
	}
	return false
}

// Event is one notification about a window. Bounds is set for move,
// resize and close when the toolkit knows them.
type Event struct {
	WindowID string        `json:"window"`
	Kind     Kind          `json:"type"`
	Bounds   models.Bounds `json:"bounds"`
}

// State is the lifecycle stage of a note window.
type State int

// Lifecycle stages.
const (
	StateCreated State = iota
	StateShown
	StateFocused
	StateBlurred
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateShown:
		return "shown"
	case StateFocused:
		return "focused"
	case StateBlurred:
		return "blurred"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
