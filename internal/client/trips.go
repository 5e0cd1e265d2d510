package client

import (
	"context"
	"fmt"

	"github.com/example/bidngo-client/internal/models"
)

func (c *Client) Trips(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	err := c.do(ctx, "GET", "/api/trips/trips", nil, &trips)
	return trips, err
}

func (c *Client) Trip(ctx context.Context, id int64) (models.Trip, error) {
	var t models.Trip
	err := c.do(ctx, "GET", fmt.Sprintf("/api/trips/trips/%d", id), nil, &t)
	return t, err
}

func (c *Client) CreateTrip(ctx context.Context, req models.TripCreate) (models.Trip, error) {
	var t models.Trip
	err := c.do(ctx, "POST", "/api/trips/trips", req.Wire(), &t)
	return t, err
}

func (c *Client) UpdateTrip(ctx context.Context, id int64, req models.TripCreate) (models.Trip, error) {
	var t models.Trip
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/trips/trips/%d", id), req.Wire(), &t)
	return t, err
}

func (c *Client) SearchTrips(ctx context.Context, req models.TripSearch) ([]models.Trip, error) {
	var trips []models.Trip
	err := c.do(ctx, "POST", "/api/trips/trips/search", req.Wire(), &trips)
	return trips, err
}

// MyTrips stands in for a missing owner-scoped backend query: it fetches the
// global trip list and filters by the caller's unverified claim id. This is
// O(total trips) and should be replaced by a server-side query once the
// backend grows one.
func (c *Client) MyTrips(ctx context.Context) ([]models.Trip, error) {
	claims, err := c.Session()
	if err != nil {
		return nil, err
	}
	if claims == nil {
		return nil, ErrUnauthorized
	}
	all, err := c.Trips(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Trip, 0, len(all))
	for _, t := range all {
		if t.DriverUserID == claims.UserID {
			mine = append(mine, t)
		}
	}
	return mine, nil
}
