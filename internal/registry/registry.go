// Package registry maps canonical note paths to live window handles.
package registry

import (
	"fmt"
	"sync"

	"github.com/starford/stickies/internal/apperr"
)

// Handle is the part of a window the registry needs to know about.
type Handle interface {
	ID() string
	IsDestroyed() bool
}

// Registry enforces at most one live handle per note path. It is safe for
// concurrent use; the change hook runs after the lock is released, in the
// goroutine that performed the mutation.
type Registry[H Handle] struct {
	mu       sync.RWMutex
	entries  map[string]H
	order    []string // insertion order of keys in entries
	onChange func()
}

// New returns an empty registry. onChange, if set, runs after every
// successful register or unregister.
func New[H Handle](onChange func()) *Registry[H] {
	return &Registry[H]{
		entries:  make(map[string]H),
		onChange: onChange,
	}
}

// SetOnChange replaces the change hook.
func (r *Registry[H]) SetOnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func (r *Registry[H]) changed() {
	r.mu.RLock()
	fn := r.onChange
	r.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Register binds h to notePath. It fails with apperr.ErrAlreadyOpen when a
// live handle is already registered; a destroyed one is replaced.
func (r *Registry[H]) Register(notePath string, h H) error {
	r.mu.Lock()
	if cur, ok := r.entries[notePath]; ok {
		if !cur.IsDestroyed() {
			r.mu.Unlock()
			return fmt.Errorf("registry: %s: %w", notePath, apperr.ErrAlreadyOpen)
		}
		r.removeLocked(notePath)
	}
	r.entries[notePath] = h
	r.order = append(r.order, notePath)
	r.mu.Unlock()

	r.changed()
	return nil
}

// Lookup returns the handle registered for notePath, live or not.
func (r *Registry[H]) Lookup(notePath string) (H, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.entries[notePath]
	return h, ok
}

// Unregister removes notePath. Missing entries are ignored and do not
// trigger the change hook.
func (r *Registry[H]) Unregister(notePath string) {
	r.mu.Lock()
	_, ok := r.entries[notePath]
	if ok {
		r.removeLocked(notePath)
	}
	r.mu.Unlock()

	if ok {
		r.changed()
	}
}

// Release removes notePath only if it is still bound to the handle with
// the given id, so a late close of an old window cannot evict its successor.
func (r *Registry[H]) Release(notePath, id string) bool {
	r.mu.Lock()
	h, ok := r.entries[notePath]
	ok = ok && h.ID() == id
	if ok {
		r.removeLocked(notePath)
	}
	r.mu.Unlock()

	if ok {
		r.changed()
	}
	return ok
}

func (r *Registry[H]) removeLocked(notePath string) {
	delete(r.entries, notePath)
	for i, p := range r.order {
		if p == notePath {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// LivePaths returns the paths of every non-destroyed handle in the order
// they were registered.
func (r *Registry[H]) LivePaths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, p := range r.order {
		if !r.entries[p].IsDestroyed() {
			out = append(out, p)
		}
	}
	return out
}
