package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func assertSilent(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Errorf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	if b.ClientCount(TargetAll) != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe(TargetList)
	if b.ClientCount(TargetAll) != 1 || b.ClientCount(TargetList) != 1 {
		t.Fatalf("expected 1 client")
	}
	if b.ClientCount(TargetShell) != 0 {
		t.Fatalf("expected 0 shell clients")
	}
	b.Unsubscribe(ch)
	if b.ClientCount(TargetAll) != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestTargetedDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	win := b.Subscribe("w1")
	other := b.Subscribe("w2")
	list := b.Subscribe(TargetList)
	defer b.Unsubscribe(win)
	defer b.Unsubscribe(other)
	defer b.Unsubscribe(list)

	b.Send("w1", TypeLoadNote, map[string]any{"path": "/n/a.md", "isNew": true})

	s := recv(t, win)
	if !strings.Contains(s, "event: load-note") {
		t.Errorf("missing event type in %q", s)
	}
	if !strings.Contains(s, `"path":"/n/a.md"`) || !strings.Contains(s, `"isNew":true`) {
		t.Errorf("missing data in %q", s)
	}
	assertSilent(t, other)
	assertSilent(t, list)
}

func TestBroadcastReachesEveryone(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	a := b.Subscribe("w1")
	l := b.Subscribe(TargetList)
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(l)

	b.Broadcast(TypeThemeChanged, map[string]string{"theme": "dark"})

	for _, ch := range []chan []byte{a, l} {
		if s := recv(t, ch); !strings.Contains(s, "event: theme-changed") {
			t.Errorf("unexpected message %q", s)
		}
	}
}

func TestEncode_NilDataIsEmptyObject(t *testing.T) {
	raw, err := Encode(Event{Type: TypeRefreshList})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "event: refresh-list\ndata: {}\n\n" {
		t.Errorf("got %q", raw)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events?target=list", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount(TargetList) != 1 {
		t.Fatalf("expected 1 list client from handler")
	}

	b.Send(TargetList, TypeRefreshList, nil)
	b.Send("w9", TypeWindowFocused, nil)
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: refresh-list") {
		t.Errorf("handler output missing event: %q", body)
	}
	if strings.Contains(body, "window-focused") {
		t.Errorf("handler received another target's event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount(TargetAll) != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe(TargetList)
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Send(TargetList, "test", map[string]int{"i": i})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("w1")

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount(TargetAll) != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Broadcast(TypeRefreshList, nil)
	late := b.Subscribe("w2")
	if _, ok := <-late; ok {
		t.Fatal("subscribe after close should return a closed channel")
	}
}
