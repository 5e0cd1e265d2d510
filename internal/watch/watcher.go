package watch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/bidngo-client/internal/models"
	"github.com/example/bidngo-client/internal/observability"
	"github.com/example/bidngo-client/internal/stream"
)

// BidSource is the REST side of the merge, satisfied by *client.Client.
type BidSource interface {
	TripBids(ctx context.Context, tripID int64) ([]models.Bid, error)
}

// Feed is the push side, satisfied by *stream.Channel.
type Feed interface {
	Subscribe(fn func(stream.Event)) *stream.Subscription
}

// Watcher merges the push feed with a periodic REST poll into one bid-state
// view for a single trip. The poll is a deliberate redundancy: the feed is
// best-effort and its connection state is not authoritative, so both sources
// run and converge through the same reducer.
//
// Conflict policy: highest updated_at wins. On equal timestamps a push event
// beats a poll row. Deletions leave a tombstone so a poll response captured
// before the delete cannot resurrect the bid.
type Watcher struct {
	tripID   int64
	source   BidSource
	feed     Feed
	interval time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger

	mu      sync.RWMutex
	bids    map[int64]models.Bid
	deleted map[int64]time.Time
}

// Options tune the poll backstop. The limiter is shared by callers that run
// several watchers over one client so they cannot stampede the backend.
type Options struct {
	Interval time.Duration
	Limiter  *rate.Limiter
	Logger   *slog.Logger
}

func New(tripID int64, source BidSource, feed Feed, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(1), 1)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		tripID:   tripID,
		source:   source,
		feed:     feed,
		interval: opts.Interval,
		limiter:  opts.Limiter,
		logger:   opts.Logger,
		bids:     make(map[int64]models.Bid),
		deleted:  make(map[int64]time.Time),
	}
}

// Run subscribes to the feed, polls on the configured cadence, and blocks
// until ctx is cancelled. No state is written after it returns.
func (w *Watcher) Run(ctx context.Context) error {
	sub := w.feed.Subscribe(func(ev stream.Event) {
		if ctx.Err() != nil {
			return
		}
		w.onEvent(ev)
	})
	defer sub.Cancel()

	// prime once so the first snapshot is not empty until the ticker fires
	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) onEvent(ev stream.Event) {
	if ev.Type == "" {
		// undecodable frame, forwarded raw by the channel; nothing to merge
		w.logger.Debug("ignoring raw frame", "bytes", len(ev.Raw))
		return
	}
	if ev.TripID != w.tripID && ev.Type != stream.EventConnectionStatus {
		return
	}
	switch ev.Type {
	case stream.EventBidPlaced, stream.EventBidUpdated:
		if ev.Bid != nil {
			w.applyBid(*ev.Bid, true)
		}
	case stream.EventBidDeleted:
		var ts time.Time
		if ev.Bid != nil && !ev.Bid.UpdatedAt.IsZero() {
			ts = ev.Bid.UpdatedAt
		}
		w.applyDelete(ev.BidID, ts)
	}
}

func (w *Watcher) poll(ctx context.Context) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}
	bids, err := w.source.TripBids(ctx, w.tripID)
	if err != nil {
		w.logger.Warn("bid poll failed", "trip_id", w.tripID, "error", err)
		return
	}
	for _, b := range bids {
		w.applyBid(b, false)
	}
	observability.PollCyclesTotal.Inc()
}

// applyBid is the reducer step: idempotent under duplicate and out-of-order
// delivery from either source.
func (w *Watcher) applyBid(b models.Bid, fromPush bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ts, ok := w.deleted[b.ID]; ok && !b.UpdatedAt.After(ts) {
		return
	}
	if cur, ok := w.bids[b.ID]; ok {
		if cur.UpdatedAt.After(b.UpdatedAt) {
			return
		}
		if cur.UpdatedAt.Equal(b.UpdatedAt) && !fromPush {
			return
		}
	}
	w.bids[b.ID] = b
}

// applyDelete tombstones the bid. A zero ts means the event carried no
// server timestamp; the last server stamp seen for the bid is used then, so
// the tombstone is never compared across the client/server clock boundary.
// Only a bid never seen at all falls back to the local clock, accepting the
// skew risk for lack of anything better.
func (w *Watcher) applyDelete(id int64, ts time.Time) {
	if id == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if ts.IsZero() {
		if cur, ok := w.bids[id]; ok {
			ts = cur.UpdatedAt
		} else {
			ts = time.Now()
		}
	}
	if prev, ok := w.deleted[id]; !ok || ts.After(prev) {
		w.deleted[id] = ts
	}
	if cur, ok := w.bids[id]; ok && !cur.UpdatedAt.After(ts) {
		delete(w.bids, id)
	}
}

// Snapshot returns the merged bid state sorted for display: highest price
// first, most recent update breaking ties.
func (w *Watcher) Snapshot() []models.Bid {
	w.mu.RLock()
	out := make([]models.Bid, 0, len(w.bids))
	for _, b := range w.bids {
		out = append(out, b)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price > out[j].Price
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
