package stream_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/bidngo-client/internal/backendtest"
	"github.com/example/bidngo-client/internal/models"
	"github.com/example/bidngo-client/internal/stream"
)

func startFeed(t *testing.T) (*backendtest.Server, string, func()) {
	t.Helper()
	backend := backendtest.NewServer()
	srv := httptest.NewServer(backend)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return backend, wsURL, srv.Close
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestTwoListenersEachReceiveEveryFrameOnce(t *testing.T) {
	backend, wsURL, stop := startFeed(t)
	defer stop()

	ch := stream.NewChannel(wsURL, nil)
	defer ch.Close()

	got1 := make(chan stream.Event, 4)
	got2 := make(chan stream.Event, 4)
	sub1 := ch.Subscribe(func(ev stream.Event) { got1 <- ev })
	defer sub1.Cancel()
	sub2 := ch.Subscribe(func(ev stream.Event) { got2 <- ev })
	defer sub2.Cancel()

	waitFor(t, "feed connection", func() bool { return backend.FeedClients() == 1 })

	bid := models.Bid{ID: 11, TripID: 3, Price: 20, Status: models.BidOpen}
	backend.Emit(stream.Event{Type: stream.EventBidPlaced, TripID: 3, BidID: 11, Bid: &bid})

	var ev1, ev2 stream.Event
	select {
	case ev1 = <-got1:
	case <-time.After(5 * time.Second):
		t.Fatal("listener 1 never received the event")
	}
	select {
	case ev2 = <-got2:
	case <-time.After(5 * time.Second):
		t.Fatal("listener 2 never received the event")
	}

	if ev1.Type != stream.EventBidPlaced || ev2.Type != stream.EventBidPlaced {
		t.Fatalf("wrong types: %q %q", ev1.Type, ev2.Type)
	}
	if ev1.BidID != ev2.BidID || ev1.TripID != ev2.TripID {
		t.Fatalf("listeners saw different events: %+v vs %+v", ev1, ev2)
	}
	if ev1.Bid == nil || ev2.Bid == nil || ev1.Bid.Price != ev2.Bid.Price {
		t.Fatalf("payload mismatch: %+v vs %+v", ev1.Bid, ev2.Bid)
	}

	// exactly once: nothing further queued
	select {
	case extra := <-got1:
		t.Fatalf("listener 1 received a duplicate: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRawFrameForwardedUnchanged(t *testing.T) {
	backend, wsURL, stop := startFeed(t)
	defer stop()

	ch := stream.NewChannel(wsURL, nil)
	defer ch.Close()

	got := make(chan stream.Event, 1)
	sub := ch.Subscribe(func(ev stream.Event) { got <- ev })
	defer sub.Cancel()
	waitFor(t, "feed connection", func() bool { return backend.FeedClients() == 1 })

	backend.EmitRaw([]byte("garbled %% frame"))

	select {
	case ev := <-got:
		if ev.Type != "" || string(ev.Raw) != "garbled %% frame" {
			t.Fatalf("raw frame mangled: %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("raw frame never delivered")
	}
}

func TestLastCancelClosesConnection(t *testing.T) {
	backend, wsURL, stop := startFeed(t)
	defer stop()

	ch := stream.NewChannel(wsURL, nil)
	defer ch.Close()

	sub1 := ch.Subscribe(func(stream.Event) {})
	sub2 := ch.Subscribe(func(stream.Event) {})
	waitFor(t, "feed connection", func() bool { return backend.FeedClients() == 1 })

	// one subscriber leaving must not cut the feed for the other
	sub1.Cancel()
	time.Sleep(100 * time.Millisecond)
	if backend.FeedClients() != 1 {
		t.Fatal("connection dropped while a subscriber remained")
	}
	if ch.State() != stream.StateConnected {
		t.Fatalf("state = %s, want connected", ch.State())
	}

	sub2.Cancel()
	waitFor(t, "connection teardown", func() bool { return backend.FeedClients() == 0 })
	if ch.State() != stream.StateDisconnected {
		t.Fatalf("state = %s, want disconnected", ch.State())
	}
}
