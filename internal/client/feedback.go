package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// ListFeedback pages through feedback records.
func (c *Client) ListFeedback(ctx context.Context, p models.FeedbackListParams) (*models.PagedList[models.Feedback], error) {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setInt(q, "page_size", p.PageSize)
	setStr(q, "source_type", p.SourceType)
	setStr(q, "product_area", p.ProductArea)
	setStr(q, "sentiment", p.Sentiment)
	setStr(q, "sort_by", p.SortBy)
	setStr(q, "sort_order", p.SortOrder)

	var list models.PagedList[models.Feedback]
	if err := c.get(ctx, "/feedback", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// FeedbackCount returns the organisation's feedback total.
func (c *Client) FeedbackCount(ctx context.Context) (int, error) {
	var env models.Envelope[models.Count]
	if err := c.get(ctx, "/feedback/count", nil, &env); err != nil {
		return 0, err
	}
	return env.Data.Count, nil
}

// GetFeedback fetches one record.
func (c *Client) GetFeedback(ctx context.Context, id string) (*models.Feedback, error) {
	var env models.Envelope[models.Feedback]
	if err := c.get(ctx, "/feedback/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// SimilarFeedback returns records semantically close to id.
func (c *Client) SimilarFeedback(ctx context.Context, id string) ([]models.Feedback, error) {
	var env models.Envelope[[]models.Feedback]
	if err := c.get(ctx, "/feedback/"+url.PathEscape(id)+"/similar", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateFeedback adds a single record by hand.
func (c *Client) CreateFeedback(ctx context.Context, req models.ManualFeedbackRequest) (*models.Feedback, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var env models.Envelope[models.Feedback]
	if err := c.send(ctx, http.MethodPost, "/feedback/manual", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func setStr(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, strconv.Itoa(value))
	}
}

func setIntPtr(q url.Values, key string, value *int) {
	if value != nil {
		q.Set(key, strconv.Itoa(*value))
	}
}

func setFloatPtr(q url.Values, key string, value *float64) {
	if value != nil {
		q.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
	}
}

var _ interfaces.FeedbackAPI = (*Client)(nil)
