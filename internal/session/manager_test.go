package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/persist"
)

type liveSet struct {
	mu    sync.Mutex
	paths []string
}

func (l *liveSet) LivePaths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.paths...)
}

func (l *liveSet) set(p ...string) {
	l.mu.Lock()
	l.paths = p
	l.mu.Unlock()
}

type memStore struct {
	mu      sync.Mutex
	paths   []string
	loadErr error
	saves   int
}

func (s *memStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...), s.loadErr
}

func (s *memStore) Save(p []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append([]string(nil), p...)
	s.saves++
	return nil
}

type fakeOpener struct {
	existing map[string]bool
	opened   []string
	failWith error
}

func (o *fakeOpener) OpenNote(_ context.Context, p string, pos *models.Position, isNew bool) error {
	if pos != nil || isNew {
		return fmt.Errorf("unexpected args for %s", p)
	}
	if !o.existing[p] {
		return fmt.Errorf("open %s: %w", p, apperr.ErrNotFound)
	}
	if o.failWith != nil {
		return o.failWith
	}
	o.opened = append(o.opened, p)
	return nil
}

func newManager(t *testing.T) (*Manager, *liveSet, *memStore, *persist.Queue) {
	t.Helper()
	q := persist.NewQueue(nil)
	t.Cleanup(q.Close)
	live := &liveSet{}
	store := &memStore{}
	return NewManager(live, store, q, nil), live, store, q
}

func TestSnapshotNow_CapturesCurrentLiveSet(t *testing.T) {
	m, live, store, q := newManager(t)

	live.set("/n/a.md", "/n/b.md")
	m.SnapshotNow()
	live.set("/n/b.md")
	q.Flush()

	got, _ := store.Load()
	assert.Equal(t, []string{"/n/a.md", "/n/b.md"}, got, "snapshot reflects state at call time")

	m.SnapshotNow()
	q.Flush()
	got, _ = store.Load()
	assert.Equal(t, []string{"/n/b.md"}, got)
}

func TestFinalize_IgnoresLaterChanges(t *testing.T) {
	m, live, store, _ := newManager(t)
	live.set("/n/a.md")
	m.Finalize()

	live.set()
	m.SnapshotNow()

	got, _ := store.Load()
	assert.Equal(t, []string{"/n/a.md"}, got)
	assert.Equal(t, 1, store.saves)
}

func TestRestore_OpensExistingOnly(t *testing.T) {
	m, _, store, _ := newManager(t)
	store.paths = []string{"/n/a.md", "/n/gone.md", "/n/b.md", "/n/a.md"}
	opener := &fakeOpener{existing: map[string]bool{"/n/a.md": true, "/n/b.md": true}}

	n, err := m.Restore(context.Background(), opener)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"/n/a.md", "/n/b.md"}, opener.opened)
}

func TestRestore_EmptyDocument(t *testing.T) {
	m, _, _, _ := newManager(t)
	n, err := m.Restore(context.Background(), &fakeOpener{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRestore_LoadErrorRestoresNothing(t *testing.T) {
	m, _, store, _ := newManager(t)
	store.loadErr = errors.New("permission denied")

	n, err := m.Restore(context.Background(), &fakeOpener{})
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestRestore_OpenFailuresAreNotCounted(t *testing.T) {
	m, _, store, _ := newManager(t)
	store.paths = []string{"/n/a.md"}
	opener := &fakeOpener{existing: map[string]bool{"/n/a.md": true}, failWith: errors.New("toolkit down")}

	n, err := m.Restore(context.Background(), opener)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
