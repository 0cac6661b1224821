// Package session saves the set of open notes and reopens it at startup.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/persist"
)

// LiveSet reports the notes that currently have a live window.
type LiveSet interface {
	LivePaths() []string
}

// Store loads and saves the session document.
type Store interface {
	Load() ([]string, error)
	Save(paths []string) error
}

// Opener opens a note window.
type Opener interface {
	OpenNote(ctx context.Context, path string, pos *models.Position, isNew bool) error
}

// Manager snapshots the live set after every registry change.
type Manager struct {
	live   LiveSet
	store  Store
	queue  *persist.Queue
	logger *slog.Logger

	frozen atomic.Bool
}

// NewManager returns a manager. Wire SnapshotNow as the registry's change
// hook.
func NewManager(live LiveSet, store Store, queue *persist.Queue, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{live: live, store: store, queue: queue, logger: logger}
}

// SnapshotNow captures the live set immediately and queues the write.
func (m *Manager) SnapshotNow() {
	if m.frozen.Load() {
		return
	}
	paths := m.live.LivePaths()
	m.queue.Go("session.save", func() error { return m.store.Save(paths) })
}

// Finalize takes the exit snapshot and ignores later changes, so windows
// torn down during shutdown stay in the saved session.
func (m *Manager) Finalize() {
	m.SnapshotNow()
	m.frozen.Store(true)
	m.queue.Flush()
}

// Restore reopens every saved note that still exists and returns how many
// opened. A missing or malformed document restores nothing.
func (m *Manager) Restore(ctx context.Context, opener Opener) (int, error) {
	var paths []string
	err := m.queue.Do("session.load", func() error {
		var err error
		paths, err = m.store.Load()
		return err
	})
	if err != nil {
		m.logger.Warn("session: restore failed", slog.String("error", err.Error()))
		return 0, err
	}

	seen := make(map[string]struct{}, len(paths))
	restored := 0
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		if err := opener.OpenNote(ctx, p, nil, false); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				m.logger.Debug("session: skipping missing note", slog.String("path", p))
				continue
			}
			if ctx.Err() != nil {
				return restored, ctx.Err()
			}
			m.logger.Warn("session: reopen failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		restored++
	}
	m.logger.Info("session: restored", slog.Int("saved", len(paths)), slog.Int("opened", restored))
	return restored, nil
}
