package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// GenerateSpec asks the backend to draft a spec for a topic.
func (c *Client) GenerateSpec(ctx context.Context, req models.GenerateSpecRequest) (*models.GenerateSpecResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var env models.Envelope[models.GenerateSpecResponse]
	if err := c.send(ctx, http.MethodPost, "/specs/generate", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListSpecs pages through specs.
func (c *Client) ListSpecs(ctx context.Context, p models.SpecListParams) (*models.PagedList[models.Spec], error) {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setInt(q, "page_size", p.PageSize)
	setStr(q, "product_area", p.ProductArea)
	setStr(q, "status", p.Status)
	setStr(q, "date_from", p.DateFrom)
	setStr(q, "date_to", p.DateTo)
	setStr(q, "customer_id", p.CustomerID)

	var list models.PagedList[models.Spec]
	if err := c.get(ctx, "/specs", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetSpec fetches a spec with all four documents.
func (c *Client) GetSpec(ctx context.Context, id string) (*models.Spec, error) {
	var env models.Envelope[models.Spec]
	if err := c.get(ctx, "/specs/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateSpec changes status, title or document content.
func (c *Client) UpdateSpec(ctx context.Context, id string, req models.UpdateSpecRequest) (*models.Spec, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var env models.Envelope[models.Spec]
	if err := c.send(ctx, http.MethodPut, "/specs/"+url.PathEscape(id), req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteSpec removes a spec.
func (c *Client) DeleteSpec(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/specs/"+url.PathEscape(id), nil, nil)
}

// RegenerateSpec rebuilds the four documents from the saved data brief.
func (c *Client) RegenerateSpec(ctx context.Context, id string) (*models.Spec, error) {
	var env models.Envelope[models.Spec]
	if err := c.send(ctx, http.MethodPost, "/specs/"+url.PathEscape(id)+"/regenerate", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

var _ interfaces.SpecsAPI = (*Client)(nil)
