package client

import (
	"context"
	"fmt"
	"time"

	"github.com/example/bidngo-client/internal/auth"
	"github.com/example/bidngo-client/internal/models"
)

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, "POST", "/api/auth/register", req, &u)
	return u, err
}

// DriverRegisterAsUser creates the account half of a driver registration;
// DriverCompleteRegister attaches the vehicle and license paperwork.
func (c *Client) DriverRegisterAsUser(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, "POST", "/api/auth/driver_register_as_user", req, &u)
	return u, err
}

func (c *Client) DriverCompleteRegister(ctx context.Context, req models.DriverRegisterRequest) (models.DriverProfile, error) {
	var p models.DriverProfile
	err := c.do(ctx, "POST", "/api/auth/driver_complete_register", req, &p)
	return p, err
}

// Login authenticates and persists the returned bearer token so subsequent
// calls carry it automatically.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, "POST", "/api/auth/login", req, &resp); err != nil {
		return resp, err
	}
	if resp.Token == "" {
		return resp, fmt.Errorf("login: no token in response")
	}
	if err := c.tokens.Save(resp.Token); err != nil {
		return resp, fmt.Errorf("persist token: %w", err)
	}
	return resp, nil
}

func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Session returns the locally decoded view of the stored token, or nil when
// no usable session exists. The decode is unverified and is display-only;
// nothing here may gate access to anything.
func (c *Client) Session() (*auth.UnverifiedClaims, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, nil
	}
	claims, err := auth.DecodeUnverified(tok)
	if err != nil {
		return nil, err
	}
	if claims.ExpiredAt(time.Now()) {
		return nil, nil
	}
	return claims, nil
}
