package relay

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/bidngo-client/internal/models"
)

// RedisMirror keeps the latest state of every live bid in a hash per bid,
// so operational dashboards can read it without touching the backend API.
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(addr, password string) *RedisMirror {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisMirror{client: c}
}

func (r *RedisMirror) MirrorBid(ctx context.Context, b models.Bid) error {
	return r.client.HSet(ctx, bidKey(b.ID), map[string]interface{}{
		"trip_id":    strconv.FormatInt(b.TripID, 10),
		"user_id":    strconv.FormatInt(b.UserID, 10),
		"price":      strconv.FormatFloat(b.Price, 'f', -1, 64),
		"status":     string(b.Status),
		"updated_at": b.UpdatedAt.Format(time.RFC3339),
	}).Err()
}

func (r *RedisMirror) DropBid(ctx context.Context, id int64) error {
	return r.client.Del(ctx, bidKey(id)).Err()
}

func (r *RedisMirror) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisMirror) Close() error { return r.client.Close() }

func bidKey(id int64) string { return "bid:state:" + strconv.FormatInt(id, 10) }
