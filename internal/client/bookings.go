package client

import (
	"context"
	"fmt"

	"github.com/example/bidngo-client/internal/models"
)

type BookingCreate struct {
	TripID int64  `json:"trip_id"`
	BidID  *int64 `json:"bid_id,omitempty"`
}

func (c *Client) Bookings(ctx context.Context) ([]models.Booking, error) {
	var bks []models.Booking
	err := c.do(ctx, "GET", "/api/bookings/bookings", nil, &bks)
	return bks, err
}

func (c *Client) CreateBooking(ctx context.Context, req BookingCreate) (models.Booking, error) {
	var bk models.Booking
	err := c.do(ctx, "POST", "/api/bookings/bookings", req, &bk)
	return bk, err
}

func (c *Client) Booking(ctx context.Context, id int64) (models.Booking, error) {
	var bk models.Booking
	err := c.do(ctx, "GET", fmt.Sprintf("/api/bookings/bookings/%d", id), nil, &bk)
	return bk, err
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, req models.BookingUpdate) (models.Booking, error) {
	var bk models.Booking
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/bookings/bookings/%d", id), req, &bk)
	return bk, err
}

func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	var bks []models.Booking
	err := c.do(ctx, "GET", "/api/bookings/bookings/mine", nil, &bks)
	return bks, err
}

func (c *Client) TripBookings(ctx context.Context, tripID int64) ([]models.Booking, error) {
	var bks []models.Booking
	err := c.do(ctx, "GET", fmt.Sprintf("/api/bookings/bookings/trip/%d", tripID), nil, &bks)
	return bks, err
}
