package watch

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/bidngo-client/internal/models"
	"github.com/example/bidngo-client/internal/stream"
)

type fakeSource struct {
	bids  []models.Bid
	err   error
	calls int
}

func (f *fakeSource) TripBids(ctx context.Context, tripID int64) ([]models.Bid, error) {
	f.calls++
	return f.bids, f.err
}

type fakeFeed struct {
	fn func(stream.Event)
}

func (f *fakeFeed) Subscribe(fn func(stream.Event)) *stream.Subscription {
	f.fn = fn
	return &stream.Subscription{}
}

func at(sec int) time.Time {
	return time.Date(2026, 9, 1, 12, 0, sec, 0, time.UTC)
}

func newTestWatcher(tripID int64, src BidSource) *Watcher {
	return New(tripID, src, &fakeFeed{}, Options{})
}

func TestReducerLastWriteWins(t *testing.T) {
	w := newTestWatcher(1, &fakeSource{})

	w.applyBid(models.Bid{ID: 1, TripID: 1, Price: 100, UpdatedAt: at(10)}, false)
	// stale duplicate from an out-of-order poll must be a no-op
	w.applyBid(models.Bid{ID: 1, TripID: 1, Price: 90, UpdatedAt: at(5)}, false)

	snap := w.Snapshot()
	if len(snap) != 1 || snap[0].Price != 100 {
		t.Fatalf("stale update applied: %+v", snap)
	}

	// newer update replaces
	w.applyBid(models.Bid{ID: 1, TripID: 1, Price: 120, UpdatedAt: at(20)}, true)
	if snap := w.Snapshot(); snap[0].Price != 120 {
		t.Fatalf("newer update dropped: %+v", snap)
	}
}

func TestReducerTieGoesToPush(t *testing.T) {
	w := newTestWatcher(1, &fakeSource{})

	w.applyBid(models.Bid{ID: 1, TripID: 1, Price: 100, Status: models.BidOpen, UpdatedAt: at(10)}, false)
	// same timestamp, different status: push wins the tie
	w.applyBid(models.Bid{ID: 1, TripID: 1, Price: 100, Status: models.BidAccepted, UpdatedAt: at(10)}, true)
	if snap := w.Snapshot(); snap[0].Status != models.BidAccepted {
		t.Fatalf("push should win ties: %+v", snap)
	}
	// and a poll row with the same timestamp must not overwrite it back
	w.applyBid(models.Bid{ID: 1, TripID: 1, Price: 100, Status: models.BidOpen, UpdatedAt: at(10)}, false)
	if snap := w.Snapshot(); snap[0].Status != models.BidAccepted {
		t.Fatalf("equal-timestamp poll row overwrote push state: %+v", snap)
	}
}

func TestReducerIdempotent(t *testing.T) {
	w := newTestWatcher(1, &fakeSource{})
	b := models.Bid{ID: 2, TripID: 1, Price: 70, UpdatedAt: at(3)}
	w.applyBid(b, true)
	w.applyBid(b, true)
	w.applyBid(b, false)
	if snap := w.Snapshot(); len(snap) != 1 {
		t.Fatalf("duplicates created entries: %+v", snap)
	}
}

func TestTombstoneBlocksResurrection(t *testing.T) {
	w := newTestWatcher(1, &fakeSource{})
	w.applyBid(models.Bid{ID: 3, TripID: 1, Price: 50, UpdatedAt: at(10)}, true)
	w.applyDelete(3, at(20))

	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("delete not applied: %+v", snap)
	}

	// a poll response captured before the delete arrives late
	w.applyBid(models.Bid{ID: 3, TripID: 1, Price: 50, UpdatedAt: at(10)}, false)
	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("stale poll resurrected a deleted bid: %+v", snap)
	}

	// but a genuinely newer server state may reinstate it
	w.applyBid(models.Bid{ID: 3, TripID: 1, Price: 55, UpdatedAt: at(30)}, true)
	if snap := w.Snapshot(); len(snap) != 1 || snap[0].Price != 55 {
		t.Fatalf("newer state blocked: %+v", snap)
	}
}

func TestDeleteWithoutPayloadUsesLastServerStamp(t *testing.T) {
	w := newTestWatcher(1, &fakeSource{})
	w.applyBid(models.Bid{ID: 9, TripID: 1, Price: 40, UpdatedAt: at(10)}, true)

	// delete event with no bid payload: no server timestamp to anchor on
	w.onEvent(stream.Event{Type: stream.EventBidDeleted, TripID: 1, BidID: 9})
	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("delete not applied: %+v", snap)
	}

	// the tombstone must carry the bid's last server stamp, not the local
	// clock, so a genuinely newer server row still reinstates the bid
	w.applyBid(models.Bid{ID: 9, TripID: 1, Price: 45, UpdatedAt: at(20)}, true)
	if snap := w.Snapshot(); len(snap) != 1 || snap[0].Price != 45 {
		t.Fatalf("newer server state blocked by a skewed tombstone: %+v", snap)
	}

	// while the stale pre-delete row stays dead
	w.applyDelete(9, at(30))
	w.applyBid(models.Bid{ID: 9, TripID: 1, Price: 45, UpdatedAt: at(20)}, false)
	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("stale row resurrected a deleted bid: %+v", snap)
	}
}

func TestOnEventFiltersOtherTrips(t *testing.T) {
	w := newTestWatcher(1, &fakeSource{})
	other := models.Bid{ID: 4, TripID: 2, Price: 10, UpdatedAt: at(1)}
	w.onEvent(stream.Event{Type: stream.EventBidPlaced, TripID: 2, BidID: 4, Bid: &other})
	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("event for another trip merged: %+v", snap)
	}
}

func TestOnEventIgnoresRawFrames(t *testing.T) {
	w := newTestWatcher(1, &fakeSource{})
	w.onEvent(stream.Event{Raw: []byte("junk")})
	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("raw frame merged: %+v", snap)
	}
}

func TestPollMergesThroughSameReducer(t *testing.T) {
	src := &fakeSource{bids: []models.Bid{
		{ID: 5, TripID: 1, Price: 80, UpdatedAt: at(8)},
		{ID: 6, TripID: 1, Price: 95, UpdatedAt: at(9)},
	}}
	w := newTestWatcher(1, src)
	w.poll(context.Background())

	snap := w.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("poll rows lost: %+v", snap)
	}
	// display order: highest price first
	if snap[0].ID != 6 || snap[1].ID != 5 {
		t.Fatalf("snapshot not sorted by price desc: %+v", snap)
	}
	if src.calls != 1 {
		t.Fatalf("expected one source call, got %d", src.calls)
	}
}

func TestOptionsLimiterGatesThePoll(t *testing.T) {
	src := &fakeSource{bids: []models.Bid{{ID: 8, TripID: 1, Price: 10, UpdatedAt: at(1)}}}

	// a limiter with no capacity rejects the wait outright, so the poll must
	// never reach the source
	w := New(1, src, &fakeFeed{}, Options{Limiter: rate.NewLimiter(0, 0)})
	w.poll(context.Background())
	if src.calls != 0 {
		t.Fatalf("exhausted limiter must suppress the poll, got %d calls", src.calls)
	}

	w = New(1, src, &fakeFeed{}, Options{Limiter: rate.NewLimiter(rate.Inf, 1)})
	w.poll(context.Background())
	if src.calls != 1 {
		t.Fatalf("expected one poll through the permissive limiter, got %d", src.calls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	feed := &fakeFeed{}
	w := New(1, &fakeSource{}, feed, Options{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}

	// events after cancellation must not mutate state
	b := models.Bid{ID: 7, TripID: 1, Price: 60, UpdatedAt: at(40)}
	if feed.fn != nil {
		feed.fn(stream.Event{Type: stream.EventBidPlaced, TripID: 1, BidID: 7, Bid: &b})
	}
	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("state written after stop: %+v", snap)
	}
}
