package client

import (
	"context"
	"net/http"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// GetPreferences returns the stored dashboard preferences. Neither this nor
// PutPreferences is wrapped in a data envelope.
func (c *Client) GetPreferences(ctx context.Context) (*models.UserPreferences, error) {
	var out models.UserPreferences
	if err := c.get(ctx, "/user/preferences", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PutPreferences replaces the dashboard preferences.
func (c *Client) PutPreferences(ctx context.Context, prefs models.UserPreferences) (*models.UserPreferences, error) {
	var out models.UserPreferences
	if err := c.send(ctx, http.MethodPut, "/user/preferences", prefs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AppConfig returns deployment settings exposed to clients.
func (c *Client) AppConfig(ctx context.Context) (*models.AppConfig, error) {
	var out models.AppConfig
	if err := c.get(ctx, "/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ interfaces.PreferencesAPI = (*Client)(nil)
