package shell

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/sse"
	"github.com/starford/stickies/internal/window"
)

type msg struct {
	target, typ string
	data        any
}

type capturePub struct {
	mu   sync.Mutex
	msgs []msg
}

func (p *capturePub) Send(target, typ string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg{target, typ, data})
}

func (p *capturePub) last() msg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgs[len(p.msgs)-1]
}

func TestCreateWindow_PublishesCommand(t *testing.T) {
	pub := &capturePub{}
	tk := New(pub)

	b := models.Bounds{X: 1, Y: 2, Width: 300, Height: 400}
	h, err := tk.CreateWindow(window.CreateOptions{Bounds: b, HasPosition: true})
	require.NoError(t, err)
	require.NotEmpty(t, h.ID())
	assert.Equal(t, b, h.Bounds())

	m := pub.last()
	assert.Equal(t, sse.TargetShell, m.target)
	assert.Equal(t, CmdCreateWindow, m.typ)
	cmd := m.data.(WindowCommand)
	assert.Equal(t, h.ID(), cmd.Window)
	assert.Equal(t, &b, cmd.Bounds)
	assert.True(t, cmd.HasPosition)

	other, _ := tk.CreateWindow(window.CreateOptions{Bounds: b})
	assert.NotEqual(t, h.ID(), other.ID())
}

func TestWindowCommandsAndSignals(t *testing.T) {
	pub := &capturePub{}
	tk := New(pub)
	h, _ := tk.CreateWindow(window.CreateOptions{Bounds: models.Bounds{Width: 1, Height: 1}})

	require.NoError(t, h.Show())
	assert.Equal(t, CmdShowWindow, pub.last().typ)
	require.NoError(t, h.Focus())
	assert.Equal(t, CmdFocusWindow, pub.last().typ)
	h.StopFlashing()
	flash := pub.last().data.(WindowCommand).Flash
	require.NotNil(t, flash)
	assert.False(t, *flash)

	h.Send(sse.TypeWindowFocused, nil)
	m := pub.last()
	assert.Equal(t, h.ID(), m.target, "content signals go to the window's own target")
	assert.Equal(t, sse.TypeWindowFocused, m.typ)

	require.NoError(t, tk.ShowList())
	assert.Equal(t, CmdShowList, pub.last().typ)
}

func TestObserve_TracksBoundsAndDestruction(t *testing.T) {
	tk := New(&capturePub{})
	h, _ := tk.CreateWindow(window.CreateOptions{Bounds: models.Bounds{Width: 400, Height: 400}})

	moved := models.Bounds{X: 50, Y: 60, Width: 320, Height: 240}
	tk.Observe(window.Event{WindowID: h.ID(), Kind: window.EventMove, Bounds: moved})
	assert.Equal(t, moved, h.Bounds())

	tk.Observe(window.Event{WindowID: h.ID(), Kind: window.EventFocus})
	assert.Equal(t, moved, h.Bounds())

	require.NoError(t, h.Close())
	assert.False(t, h.IsDestroyed(), "destroyed only once the shell reports closed")

	tk.Observe(window.Event{WindowID: h.ID(), Kind: window.EventClosed})
	assert.True(t, h.IsDestroyed())
	_, ok := tk.Lookup(h.ID())
	assert.False(t, ok)
	assert.ErrorIs(t, h.Focus(), ErrDestroyed)

	tk.Observe(window.Event{WindowID: "unknown", Kind: window.EventClosed})
}
