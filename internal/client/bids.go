package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/bidngo-client/internal/models"
)

func (c *Client) PlaceBid(ctx context.Context, req models.BidCreate) (models.Bid, error) {
	var b models.Bid
	err := c.do(ctx, "POST", "/api/bids/bids", req.Wire(), &b)
	return b, err
}

// UpdateBid issues the PUT immediately; two rapid updates for the same bid
// race at the server and whichever response arrives last wins locally. The
// client carries no sequencing token to disambiguate.
func (c *Client) UpdateBid(ctx context.Context, id int64, req models.BidUpdate) (models.Bid, error) {
	var b models.Bid
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/bids/bids/%d", id), req.Wire(), &b)
	return b, err
}

func (c *Client) WithdrawBid(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/bids/bids/%d", id), nil, nil)
}

// TripBids loads all bids on a trip. The bid listing endpoint sits behind a
// slow aggregation upstream and intermittently answers 504; retry twice
// before surfacing the error.
func (c *Client) TripBids(ctx context.Context, tripID int64) ([]models.Bid, error) {
	var bids []models.Bid
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		bids = nil
		err = c.do(ctx, "GET", fmt.Sprintf("/api/bids/bids/trip/%d", tripID), nil, &bids)
		if err == nil {
			return bids, nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != 504 {
			return nil, err
		}
	}
	return nil, err
}

func (c *Client) MyBids(ctx context.Context) ([]models.Bid, error) {
	var bids []models.Bid
	err := c.do(ctx, "GET", "/api/bids/bids/mine", nil, &bids)
	return bids, err
}

// ConfirmBid accepts the winning bid on a trip, which creates a booking
// server-side. Callers should re-read the booking afterwards; the response
// here is not guaranteed to be the full authoritative record.
func (c *Client) ConfirmBid(ctx context.Context, tripID, bidID int64) (models.Booking, error) {
	var bk models.Booking
	body := struct {
		BidID int64 `json:"bid_id"`
	}{BidID: bidID}
	err := c.do(ctx, "POST", fmt.Sprintf("/api/bids/bids/confirm/%d", tripID), body, &bk)
	return bk, err
}
