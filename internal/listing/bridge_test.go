package listing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/notes"
	"github.com/starford/stickies/internal/sse"
)

type staticSource struct {
	notes []models.Note
	err   error
}

func (s staticSource) List() ([]models.Note, error) { return s.notes, s.err }

type sent struct {
	target, typ string
	data        any
}

type capturePub struct {
	mu   sync.Mutex
	msgs []sent
}

func (p *capturePub) Send(target, typ string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, sent{target, typ, data})
}

func sample() staticSource {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return staticSource{notes: []models.Note{
		{Path: "/n/old.md", Content: "Groceries\nmilk, eggs", UpdatedAt: base},
		{Path: "/n/new.md", Content: "Meeting notes\nagenda", UpdatedAt: base.Add(2 * time.Hour)},
		{Path: "/n/mid.md", Content: "", UpdatedAt: base.Add(time.Hour)},
	}}
}

func TestList_SortedNewestFirst(t *testing.T) {
	b := NewBridge(sample(), &capturePub{}, nil)
	got, err := b.List("")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "/n/new.md", got[0].Path)
	assert.Equal(t, "/n/mid.md", got[1].Path)
	assert.Equal(t, "/n/old.md", got[2].Path)
	assert.Equal(t, notes.UntitledPlaceholder, got[1].Title)
	assert.Equal(t, "new.md", got[0].Name)
}

func TestList_FilterMatchesTitleOrContent(t *testing.T) {
	b := NewBridge(sample(), &capturePub{}, nil)

	got, err := b.List("MEETING")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Meeting notes", got[0].Title)

	got, err = b.List("eggs")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/n/old.md", got[0].Path)

	got, err = b.List("nothing matches")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRefresh_PublishesToList(t *testing.T) {
	pub := &capturePub{}
	b := NewBridge(sample(), pub, nil)
	b.SetFilter("groceries")
	b.Refresh()

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, sse.TargetList, msg.target)
	assert.Equal(t, sse.TypeRefreshList, msg.typ)
	payload, ok := msg.data.(RefreshPayload)
	require.True(t, ok)
	assert.Equal(t, "groceries", payload.Filter)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "Groceries", payload.Items[0].Title)
}

func TestRefresh_ListErrorPublishesNothing(t *testing.T) {
	pub := &capturePub{}
	b := NewBridge(staticSource{err: errors.New("io")}, pub, nil)
	b.Refresh()
	assert.Empty(t, pub.msgs)
}
