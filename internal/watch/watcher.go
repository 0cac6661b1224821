// Package watch reports edits made to the notes directory from outside the
// application.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/stickies/internal/storage"
)

// DefaultDebounce groups bursts of file events into one callback.
const DefaultDebounce = 200 * time.Millisecond

// Option configures Watch.
type Option func(*options)

type options struct {
	ignore func(path string) bool
}

// IgnoreIf drops events whose path fn accepts, such as files the
// application has just written itself.
func IgnoreIf(fn func(path string) bool) Option {
	return func(o *options) { o.ignore = fn }
}

// Watch observes the notes directory (non-recursive) until ctx is
// cancelled and calls onChange once per burst of .md create, write,
// remove or rename events.
func Watch(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, onChange func(), opts ...Option) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			timer = nil
			fire = nil
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if o.ignore != nil && o.ignore(ev.Name) {
				logger.Debug("watcher: own change skipped", slog.String("path", ev.Name))
				continue
			}
			logger.Debug("watcher: change",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, storage.NoteExt) || storage.IsTemp(name) {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
