// Package sse implements a Server-Sent Events broker that delivers signals
// to note windows, the list view and the UI shell.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
)

// Well-known targets. Note windows subscribe with their window id.
const (
	TargetAll   = ""
	TargetList  = "list"
	TargetShell = "shell"
)

// Signal names sent by the core.
const (
	TypeLoadNote         = "load-note"
	TypeWindowFocused    = "window-focused"
	TypeWindowBlurred    = "window-blurred"
	TypeThemeChanged     = "theme-changed"
	TypeShortcutsUpdated = "shortcuts-updated"
	TypeRefreshList      = "refresh-list"
)

// Event is one signal. An empty Target reaches every client.
type Event struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Data   any    `json:"data"`
}

type subscription struct {
	ch     chan []byte
	target string
}

// Broker manages SSE client connections and routes events by target.
//
// Concurrency model: a single internal event loop (goroutine) owns the client
// set. Public methods communicate with this loop through channels, so no
// mutexes are required.
type Broker struct {
	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan countReq

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type countReq struct {
	target string
	resp   chan int
}

// NewBroker creates and starts a broker.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan countReq),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// Encode renders an event in text/event-stream framing.
func Encode(event Event) ([]byte, error) {
	data := event.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]string)

	deliver := func(event Event) {
		raw, err := Encode(event)
		if err != nil {
			return
		}
		for ch, target := range clients {
			if event.Target != TargetAll && target != event.Target {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.target

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			deliver(event)

		case req := <-b.countReqCh:
			n := 0
			for _, target := range clients {
				if req.target == TargetAll || target == req.target {
					n++
				}
			}
			req.resp <- n
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client listening on target and returns its channel.
func (b *Broker) Subscribe(target string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, target: target}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of clients listening on target, or all
// clients when target is empty.
func (b *Broker) ClientCount(target string) int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- countReq{target: target, resp: resp}:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues an event for delivery.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// Send publishes a typed signal to one target.
func (b *Broker) Send(target, typ string, data any) {
	b.Publish(Event{Type: typ, Target: target, Data: data})
}

// Broadcast publishes a typed signal to every client.
func (b *Broker) Broadcast(typ string, data any) {
	b.Publish(Event{Type: typ, Data: data})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events?target=...).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(r.URL.Query().Get("target"))
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
