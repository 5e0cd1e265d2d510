package client

import (
	"context"
	"fmt"

	"github.com/example/bidngo-client/internal/models"
)

func (c *Client) DriverProfile(ctx context.Context) (models.DriverProfile, error) {
	var p models.DriverProfile
	err := c.do(ctx, "GET", "/api/drivers/profile", nil, &p)
	return p, err
}

func (c *Client) CreateDriverProfile(ctx context.Context, p models.DriverProfile) (models.DriverProfile, error) {
	var out models.DriverProfile
	err := c.do(ctx, "POST", "/api/drivers/profile", p, &out)
	return out, err
}

func (c *Client) UpdateDriverProfile(ctx context.Context, p models.DriverProfile) (models.DriverProfile, error) {
	var out models.DriverProfile
	err := c.do(ctx, "PUT", "/api/drivers/profile", p, &out)
	return out, err
}

// DriverProfiles lists every profile; admin-only server-side.
func (c *Client) DriverProfiles(ctx context.Context) ([]models.DriverProfile, error) {
	var ps []models.DriverProfile
	err := c.do(ctx, "GET", "/api/drivers/profiles", nil, &ps)
	return ps, err
}

func (c *Client) VerifyDriverProfile(ctx context.Context, userID int64, status models.VerificationStatus) (models.DriverProfile, error) {
	var p models.DriverProfile
	body := struct {
		Status models.VerificationStatus `json:"status"`
	}{Status: status}
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/drivers/profile/%d/verify", userID), body, &p)
	return p, err
}

func (c *Client) DriverStats(ctx context.Context) (models.DriverStats, error) {
	var s models.DriverStats
	err := c.do(ctx, "GET", "/api/drivers/stats", nil, &s)
	return s, err
}
