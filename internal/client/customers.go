package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// ListCustomers pages through customers with the list filters applied.
func (c *Client) ListCustomers(ctx context.Context, p models.CustomerListParams) (*models.PagedList[models.Customer], error) {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setInt(q, "page_size", p.PageSize)
	setStr(q, "search", p.Search)
	setStr(q, "segment", p.Segment)
	setFloatPtr(q, "health_min", p.HealthMin)
	setFloatPtr(q, "health_max", p.HealthMax)
	setIntPtr(q, "renewal_within", p.RenewalWithin)
	setFloatPtr(q, "arr_min", p.ARRMin)
	setFloatPtr(q, "arr_max", p.ARRMax)
	if p.HasNegativeFeedback != nil {
		q.Set("has_negative_feedback", strconv.FormatBool(*p.HasNegativeFeedback))
	}
	if p.IncludeFeedbackStats {
		q.Set("include_feedback_stats", "true")
	}
	setStr(q, "sort_by", p.SortBy)
	setStr(q, "sort_order", p.SortOrder)

	var list models.PagedList[models.Customer]
	if err := c.get(ctx, "/customers", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// SearchCustomers is the autocomplete lookup. A blank query returns no matches
// without calling the API.
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]models.CustomerMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.CustomerMatch{}, nil
	}
	var env models.Envelope[[]models.CustomerMatch]
	if err := c.get(ctx, "/customers/search", url.Values{"q": {query}}, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CustomerCount returns the organisation's customer total.
func (c *Client) CustomerCount(ctx context.Context) (int, error) {
	var env models.Envelope[models.Count]
	if err := c.get(ctx, "/customers/count", nil, &env); err != nil {
		return 0, err
	}
	return env.Data.Count, nil
}

// GetCustomer fetches one customer.
func (c *Client) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var env models.Envelope[models.Customer]
	if err := c.get(ctx, "/customers/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CustomerFeedback pages through one customer's feedback.
func (c *Client) CustomerFeedback(ctx context.Context, id string, page, pageSize int) (*models.PagedList[models.Feedback], error) {
	q := url.Values{}
	setInt(q, "page", page)
	setInt(q, "page_size", pageSize)

	var list models.PagedList[models.Feedback]
	if err := c.get(ctx, "/customers/"+url.PathEscape(id)+"/feedback", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CustomerSentimentTrend returns the customer's sentiment over time against
// the product average.
func (c *Client) CustomerSentimentTrend(ctx context.Context, id string) (*models.SentimentTrend, error) {
	var env models.Envelope[models.SentimentTrend]
	if err := c.get(ctx, "/customers/"+url.PathEscape(id)+"/sentiment-trend", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateCustomer adds a single customer by hand.
func (c *Client) CreateCustomer(ctx context.Context, req models.ManualCustomerRequest) (*models.Customer, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var env models.Envelope[models.Customer]
	if err := c.send(ctx, http.MethodPost, "/customers/manual", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

var _ interfaces.CustomersAPI = (*Client)(nil)
