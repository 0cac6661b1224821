package statestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/stickies/internal/models"
)

func TestGeometry_SaveLookupDelete(t *testing.T) {
	s := NewGeometryStore(filepath.Join(t.TempDir(), GeometryFile), nil)

	_, ok, err := s.Lookup("/notes/a.md")
	require.NoError(t, err)
	assert.False(t, ok)

	want := models.Bounds{X: 10, Y: 20, Width: 300, Height: 500}
	require.NoError(t, s.Save("/notes/a.md", want))
	require.NoError(t, s.Save("/notes/b.md", models.Bounds{Width: 1, Height: 1}))

	got, ok, err := s.Lookup("/notes/a.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.Delete("/notes/a.md"))
	_, ok, _ = s.Lookup("/notes/a.md")
	assert.False(t, ok)
	_, ok, _ = s.Lookup("/notes/b.md")
	assert.True(t, ok, "other records must survive delete")

	require.NoError(t, s.Delete("/notes/missing.md"))
}

func TestGeometry_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), GeometryFile)
	s := NewGeometryStore(path, nil)
	require.NoError(t, s.Save("/n/a.md", models.Bounds{X: 1, Y: 2, Width: 3, Height: 4}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"/n/a.md":{"x":1,"y":2,"width":3,"height":4}}`, string(data))
	assert.Contains(t, string(data), "\n  ", "document should be indented")
}

func TestGeometry_MalformedTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), GeometryFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := NewGeometryStore(path, nil)

	_, ok, err := s.Lookup("/n/a.md")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save("/n/a.md", models.Bounds{Width: 5, Height: 6}))
	got, ok, err := s.Lookup("/n/a.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, got.Width)
}

func TestSession_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", SessionFile)
	s := NewSessionStore(path, nil)

	paths, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, paths)

	require.NoError(t, s.Save([]string{"/n/a.md", "/n/b.md"}))
	paths, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"/n/a.md", "/n/b.md"}, paths)

	require.NoError(t, s.Save(nil))
	data, _ := os.ReadFile(path)
	assert.JSONEq(t, `[]`, string(data))
}

func TestSession_MalformedTreatedAsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"garbage":    "not json at all",
		"empty":      "",
		"wrong type": `{"a":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), SessionFile)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			paths, err := NewSessionStore(path, nil).Load()
			require.NoError(t, err)
			assert.Empty(t, paths)
		})
	}
}

func TestWriteJSON_OnlyTheDocumentRemains(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s := NewSessionStore(filepath.Join(dir, SessionFile), nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save([]string{"x"}))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "missing state directory is created")
	require.Len(t, entries, 1)
	assert.Equal(t, SessionFile, entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, SessionFile))
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"x\"\n]\n", string(data))
}
