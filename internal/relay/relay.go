package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/example/bidngo-client/internal/models"
	"github.com/example/bidngo-client/internal/stream"
)

var (
	eventsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bidngo_relay", Name: "events_consumed_total",
		Help: "Total bid events consumed from the feed",
	})
	eventsInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bidngo_relay", Name: "events_invalid_total",
		Help: "Total undecodable frames received",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bidngo_relay", Name: "publish_errors_total",
		Help: "Total Kafka publish failures",
	})
	mirrorUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bidngo_relay", Name: "mirror_updates_total",
		Help: "Total successful state mirror writes",
	})
	mirrorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bidngo_relay", Name: "mirror_errors_total",
		Help: "Total state mirror failures after retries",
	})
	archiveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bidngo_relay", Name: "archive_errors_total",
		Help: "Total event archive failures",
	})
)

// Feed is the subscription surface of stream.Channel.
type Feed interface {
	Subscribe(fn func(stream.Event)) *stream.Subscription
}

// Publisher hands events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev stream.Event) error
}

// StateMirror keeps the latest per-bid state in a fast store for dashboards.
type StateMirror interface {
	MirrorBid(ctx context.Context, b models.Bid) error
	DropBid(ctx context.Context, id int64) error
}

// EventArchive persists the raw event history.
type EventArchive interface {
	Archive(ctx context.Context, ev stream.Event) error
}

// Relay consumes the public bid feed and fans each event out to Kafka, the
// state mirror, and the archive. Every sink is optional; a nil sink is
// skipped. The relay holds no business logic of its own: it only moves
// server-reported state downstream.
type Relay struct {
	Feed    Feed
	Pub     Publisher
	Mirror  StateMirror
	Archive EventArchive
	Logger  *slog.Logger

	// mirror retry knobs
	MirrorAttempts int
	MirrorDelay    time.Duration
}

// Run subscribes and blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	if r.MirrorAttempts <= 0 {
		r.MirrorAttempts = 3
	}
	if r.MirrorDelay <= 0 {
		r.MirrorDelay = 200 * time.Millisecond
	}

	sub := r.Feed.Subscribe(func(ev stream.Event) {
		if ctx.Err() != nil {
			return
		}
		r.handle(ctx, ev)
	})
	defer sub.Cancel()

	<-ctx.Done()
	return ctx.Err()
}

func (r *Relay) handle(ctx context.Context, ev stream.Event) {
	if ev.Type == "" {
		eventsInvalid.Inc()
		r.Logger.Warn("undecodable frame", "bytes", len(ev.Raw))
		return
	}
	if ev.Type == stream.EventConnectionStatus {
		return
	}
	eventsConsumed.Inc()

	if r.Pub != nil {
		if err := r.Pub.Publish(ctx, ev); err != nil {
			publishErrors.Inc()
			r.Logger.Error("publish failed", "type", ev.Type, "trip_id", ev.TripID, "error", err)
		}
	}
	if r.Mirror != nil {
		if err := r.mirrorWithRetry(ctx, ev); err != nil {
			mirrorErrors.Inc()
			r.Logger.Error("mirror failed", "type", ev.Type, "bid_id", ev.BidID, "error", err)
		} else {
			mirrorUpdates.Inc()
		}
	}
	if r.Archive != nil {
		if err := r.Archive.Archive(ctx, ev); err != nil {
			archiveErrors.Inc()
			r.Logger.Error("archive failed", "type", ev.Type, "error", err)
		}
	}
}

// mirrorWithRetry writes the mirror with bounded retries and doubling delay.
func (r *Relay) mirrorWithRetry(ctx context.Context, ev stream.Event) error {
	delay := r.MirrorDelay
	var err error
	for i := 0; i < r.MirrorAttempts; i++ {
		err = r.mirrorOnce(ctx, ev)
		if err == nil {
			return nil
		}
		if i == r.MirrorAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

func (r *Relay) mirrorOnce(ctx context.Context, ev stream.Event) error {
	switch ev.Type {
	case stream.EventBidDeleted:
		return r.Mirror.DropBid(ctx, ev.BidID)
	default:
		if ev.Bid == nil {
			return nil
		}
		return r.Mirror.MirrorBid(ctx, *ev.Bid)
	}
}

// ErrFeedDown reports that the upstream event channel stopped reconnecting.
var ErrFeedDown = errors.New("event feed disconnected")

// MonitorFeed polls the channel state until it reports Disconnected, which
// the channel only does after exhausting its reconnect attempts or being
// closed. A headless consumer has no poll backstop, so a dead feed must
// surface instead of idling silently. Returns ctx.Err() on cancellation.
func MonitorFeed(ctx context.Context, state func() stream.State, every time.Duration) error {
	if every <= 0 {
		every = 5 * time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if state() == stream.StateDisconnected {
				return ErrFeedDown
			}
		}
	}
}

// EncodeEvent is the canonical downstream encoding: plain JSON keyed by trip.
func EncodeEvent(ev stream.Event) (key, value []byte, err error) {
	value, err = json.Marshal(ev)
	if err != nil {
		return nil, nil, err
	}
	return []byte(strconv.FormatInt(ev.TripID, 10)), value, nil
}
