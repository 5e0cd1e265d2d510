package client

import (
	"context"
	"net/url"

	"github.com/example/bidngo-client/internal/models"
)

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, "GET", "/api/users/me", nil, &u)
	return u, err
}

func (c *Client) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := c.do(ctx, "GET", "/api/users/user/"+url.PathEscape(email), nil, &u)
	return u, err
}

func (c *Client) UpdateEmail(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.do(ctx, "PUT", "/api/users/email", body, nil)
}

func (c *Client) UpdatePhone(ctx context.Context, phone string) error {
	body := struct {
		Phone string `json:"phone"`
	}{Phone: phone}
	return c.do(ctx, "PUT", "/api/users/phone", body, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(ctx, "PUT", "/api/users/password", body, nil)
}

func (c *Client) DeleteUser(ctx context.Context, email string) error {
	return c.do(ctx, "DELETE", "/api/users/"+url.PathEscape(email), nil, nil)
}

func (c *Client) SaveFCMToken(ctx context.Context, token string) error {
	body := struct {
		Token string `json:"token"`
	}{Token: token}
	return c.do(ctx, "PUT", "/api/users/me/fcm-token", body, nil)
}
