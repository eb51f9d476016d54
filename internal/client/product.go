package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

func wizardPath(section string) (string, error) {
	if !models.ValidWizardSection(section) {
		return "", fmt.Errorf("unknown wizard section %q", section)
	}
	return "/product/wizard/" + section, nil
}

// OnboardingStatus reports which wizard sections are complete.
func (c *Client) OnboardingStatus(ctx context.Context) (*models.OnboardingStatus, error) {
	var env models.Envelope[models.OnboardingStatus]
	if err := c.get(ctx, "/product/onboarding-status", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CompleteOnboarding marks onboarding done.
func (c *Client) CompleteOnboarding(ctx context.Context) (bool, error) {
	var env models.Envelope[struct {
		Completed bool `json:"completed"`
	}]
	if err := c.send(ctx, http.MethodPost, "/product/onboarding-complete", nil, &env); err != nil {
		return false, err
	}
	return env.Data.Completed, nil
}

// Wizard returns every saved section.
func (c *Client) Wizard(ctx context.Context) (*models.WizardAll, error) {
	var env models.Envelope[models.WizardAll]
	if err := c.get(ctx, "/product/wizard", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// WizardSection returns one saved section, or nil if it was never saved.
func (c *Client) WizardSection(ctx context.Context, section string) (*models.WizardSection, error) {
	path, err := wizardPath(section)
	if err != nil {
		return nil, err
	}
	var env models.Envelope[models.WizardSection]
	if err := c.get(ctx, path, nil, &env); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &env.Data, nil
}

// PutWizardSection saves one section.
func (c *Client) PutWizardSection(ctx context.Context, section string, data any) error {
	path, err := wizardPath(section)
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPut, path, data, nil)
}

// DeleteWizardSection clears one section.
func (c *Client) DeleteWizardSection(ctx context.Context, section string) error {
	path, err := wizardPath(section)
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodDelete, path, nil, nil)
}

// ProductContext returns the flattened product context.
func (c *Client) ProductContext(ctx context.Context) (*models.ProductContext, error) {
	var env models.Envelope[models.ProductContext]
	if err := c.get(ctx, "/product/context", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

var _ interfaces.ProductAPI = (*Client)(nil)
