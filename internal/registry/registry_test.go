package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/stickies/internal/apperr"
)

type fakeHandle struct {
	id        string
	destroyed bool
}

func (h *fakeHandle) ID() string { return h.id }
func (h *fakeHandle) IsDestroyed() bool { return h.destroyed }

func TestRegister_RejectsLiveDuplicate(t *testing.T) {
	changes := 0
	r := New[*fakeHandle](func() { changes++ })

	require.NoError(t, r.Register("/n/a.md", &fakeHandle{id: "1"}))
	err := r.Register("/n/a.md", &fakeHandle{id: "2"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyOpen)
	assert.Equal(t, 1, changes)

	h, ok := r.Lookup("/n/a.md")
	require.True(t, ok)
	assert.Equal(t, "1", h.ID())
}

func TestRegister_ReplacesDestroyed(t *testing.T) {
	r := New[*fakeHandle](nil)
	old := &fakeHandle{id: "1"}
	require.NoError(t, r.Register("/n/a.md", old))
	old.destroyed = true

	require.NoError(t, r.Register("/n/a.md", &fakeHandle{id: "2"}))
	h, _ := r.Lookup("/n/a.md")
	assert.Equal(t, "2", h.ID())
	assert.Equal(t, []string{"/n/a.md"}, r.LivePaths())
}

func TestUnregister_Idempotent(t *testing.T) {
	changes := 0
	r := New[*fakeHandle](func() { changes++ })
	require.NoError(t, r.Register("/n/a.md", &fakeHandle{id: "1"}))

	r.Unregister("/n/a.md")
	r.Unregister("/n/a.md")
	r.Unregister("/n/never.md")

	assert.Equal(t, 2, changes, "one register plus one effective unregister")
	_, ok := r.Lookup("/n/a.md")
	assert.False(t, ok)
}

func TestRelease_OnlyMatchingHandle(t *testing.T) {
	r := New[*fakeHandle](nil)
	require.NoError(t, r.Register("/n/a.md", &fakeHandle{id: "new"}))

	assert.False(t, r.Release("/n/a.md", "old"))
	_, ok := r.Lookup("/n/a.md")
	assert.True(t, ok)

	assert.True(t, r.Release("/n/a.md", "new"))
	_, ok = r.Lookup("/n/a.md")
	assert.False(t, ok)
}

func TestLivePaths_SkipsDestroyedAndKeepsOrder(t *testing.T) {
	r := New[*fakeHandle](nil)
	dead := &fakeHandle{id: "2"}
	require.NoError(t, r.Register("/n/c.md", &fakeHandle{id: "1"}))
	require.NoError(t, r.Register("/n/a.md", dead))
	require.NoError(t, r.Register("/n/b.md", &fakeHandle{id: "3"}))
	dead.destroyed = true

	assert.Equal(t, []string{"/n/c.md", "/n/b.md"}, r.LivePaths())
	_, ok := r.Lookup("/n/a.md")
	assert.True(t, ok, "destroyed entries stay until replaced or released")
}

func TestOnChangeSeesPostMutationState(t *testing.T) {
	var snapshots [][]string
	var r *Registry[*fakeHandle]
	r = New[*fakeHandle](func() { snapshots = append(snapshots, r.LivePaths()) })

	require.NoError(t, r.Register("/n/a.md", &fakeHandle{id: "1"}))
	require.NoError(t, r.Register("/n/b.md", &fakeHandle{id: "2"}))
	r.Unregister("/n/a.md")

	require.Len(t, snapshots, 3)
	assert.Equal(t, []string{"/n/a.md"}, snapshots[0])
	assert.Equal(t, []string{"/n/a.md", "/n/b.md"}, snapshots[1])
	assert.Equal(t, []string{"/n/b.md"}, snapshots[2])
}
