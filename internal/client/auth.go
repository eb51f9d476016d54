package client

import (
	"context"
	"net/http"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// Login exchanges credentials for an access token. A successful login re-arms
// the unauthorized hook.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var env models.Envelope[models.AuthResponse]
	if err := c.send(ctx, http.MethodPost, "/auth/login", req, &env); err != nil {
		return nil, err
	}
	c.ResetUnauthorized()
	return &env.Data, nil
}

// Signup creates a user and organisation and returns an access token.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var env models.Envelope[models.AuthResponse]
	if err := c.send(ctx, http.MethodPost, "/auth/signup", req, &env); err != nil {
		return nil, err
	}
	c.ResetUnauthorized()
	return &env.Data, nil
}

// Me returns the user owning the current token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var env models.Envelope[models.User]
	if err := c.get(ctx, "/auth/me", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

var _ interfaces.AuthAPI = (*Client)(nil)
