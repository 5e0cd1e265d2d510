package relay

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/example/bidngo-client/internal/models"
	"github.com/example/bidngo-client/internal/stream"
)

type fakePublisher struct {
	events []stream.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, ev stream.Event) error {
	f.events = append(f.events, ev)
	return f.err
}

// fakeMirror fails a configured number of times before succeeding.
type fakeMirror struct {
	failBid  int
	failDrop int
	bidCalls int
	dropped  []int64
}

func (f *fakeMirror) MirrorBid(ctx context.Context, b models.Bid) error {
	f.bidCalls++
	if f.bidCalls <= f.failBid {
		return errors.New("mirror fail")
	}
	return nil
}

func (f *fakeMirror) DropBid(ctx context.Context, id int64) error {
	if f.failDrop > 0 {
		f.failDrop--
		return errors.New("drop fail")
	}
	f.dropped = append(f.dropped, id)
	return nil
}

func bidEvent(typ string, id int64) stream.Event {
	b := models.Bid{ID: id, TripID: 1, Price: 42, Status: models.BidOpen, UpdatedAt: time.Now()}
	return stream.Event{Type: typ, TripID: 1, BidID: id, Bid: &b}
}

func TestHandleFansOutToAllSinks(t *testing.T) {
	pub := &fakePublisher{}
	mirror := &fakeMirror{}
	archive := NewMemoryArchive()
	r := &Relay{Logger: slog.Default(), Pub: pub, Mirror: mirror, Archive: archive, MirrorAttempts: 3, MirrorDelay: time.Millisecond}

	ev := bidEvent(stream.EventBidPlaced, 9)
	r.handle(context.Background(), ev)

	if len(pub.events) != 1 || pub.events[0].BidID != 9 {
		t.Fatalf("publisher missed the event: %+v", pub.events)
	}
	if mirror.bidCalls != 1 {
		t.Fatalf("mirror calls = %d", mirror.bidCalls)
	}
	if got := archive.Events(); len(got) != 1 || got[0].Type != stream.EventBidPlaced {
		t.Fatalf("archive missed the event: %+v", got)
	}
}

func TestHandleDeleteDropsMirrorEntry(t *testing.T) {
	mirror := &fakeMirror{}
	r := &Relay{Logger: slog.Default(), Mirror: mirror, MirrorAttempts: 3, MirrorDelay: time.Millisecond}

	r.handle(context.Background(), bidEvent(stream.EventBidDeleted, 4))
	if len(mirror.dropped) != 1 || mirror.dropped[0] != 4 {
		t.Fatalf("drop not mirrored: %+v", mirror.dropped)
	}
}

func TestMirrorRetrySucceedsAfterFailures(t *testing.T) {
	mirror := &fakeMirror{failBid: 2}
	r := &Relay{Logger: slog.Default(), Mirror: mirror, MirrorAttempts: 3, MirrorDelay: time.Millisecond}

	if err := r.mirrorWithRetry(context.Background(), bidEvent(stream.EventBidUpdated, 2)); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if mirror.bidCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", mirror.bidCalls)
	}
}

func TestMirrorRetryFailsWhenExhausted(t *testing.T) {
	mirror := &fakeMirror{failBid: 5}
	r := &Relay{Logger: slog.Default(), Mirror: mirror, MirrorAttempts: 3, MirrorDelay: time.Millisecond}

	if err := r.mirrorWithRetry(context.Background(), bidEvent(stream.EventBidUpdated, 2)); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if mirror.bidCalls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", mirror.bidCalls)
	}
}

func TestHandleSkipsRawAndConnectionStatus(t *testing.T) {
	pub := &fakePublisher{}
	archive := NewMemoryArchive()
	r := &Relay{Logger: slog.Default(), Pub: pub, Archive: archive, MirrorAttempts: 1, MirrorDelay: time.Millisecond}

	r.handle(context.Background(), stream.Event{Raw: []byte("junk")})
	r.handle(context.Background(), stream.Event{Type: stream.EventConnectionStatus, Status: "connected"})

	if len(pub.events) != 0 || len(archive.Events()) != 0 {
		t.Fatalf("non-bid frames reached sinks: %+v %+v", pub.events, archive.Events())
	}
}

func TestMonitorFeedReportsTerminalDisconnect(t *testing.T) {
	states := []stream.State{stream.StateConnected, stream.StateReconnecting, stream.StateDisconnected}
	var i int
	state := func() stream.State {
		s := states[i]
		if i < len(states)-1 {
			i++
		}
		return s
	}
	err := MonitorFeed(context.Background(), state, time.Millisecond)
	if !errors.Is(err, ErrFeedDown) {
		t.Fatalf("want ErrFeedDown, got %v", err)
	}
}

func TestMonitorFeedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- MonitorFeed(ctx, func() stream.State { return stream.StateConnected }, time.Millisecond)
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
}

func TestEncodeEventKeyedByTrip(t *testing.T) {
	key, value, err := EncodeEvent(bidEvent(stream.EventBidPlaced, 3))
	if err != nil {
		t.Fatal(err)
	}
	if string(key) != "1" {
		t.Fatalf("key = %q, want trip id", key)
	}
	if len(value) == 0 {
		t.Fatal("empty value")
	}
}
