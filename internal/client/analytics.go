package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// Analytics defaults.
const (
	PeriodCustom        = "custom"
	DefaultPeriod       = "30d"
	DefaultSliceLimit   = 5
	analyticsPathPrefix = "/analytics/"
)

// AnalyticsParams builds the query for one slice. Period is always sent, from
// and to only for a custom period with both dates. top-issues and at-risk
// carry a limit, volume an optional comma-joined area list.
func AnalyticsParams(slice string, q models.AnalyticsQuery) url.Values {
	period := q.Period
	if period == "" {
		period = DefaultPeriod
	}
	params := url.Values{}
	params.Set("period", period)
	if period == PeriodCustom && q.From != "" && q.To != "" {
		params.Set("from", q.From)
		params.Set("to", q.To)
	}

	switch slice {
	case models.SliceTopIssues, models.SliceAtRisk:
		limit := q.Limit
		if limit <= 0 {
			limit = DefaultSliceLimit
		}
		params.Set("limit", strconv.Itoa(limit))
	case models.SliceVolume:
		if len(q.Areas) > 0 {
			params.Set("areas", strings.Join(q.Areas, ","))
		}
	}
	return params
}

// slice fetches an unwrapped analytics body into out.
func (c *Client) slice(ctx context.Context, name string, q models.AnalyticsQuery, out any) error {
	return c.get(ctx, analyticsPathPrefix+name, AnalyticsParams(name, q), out)
}

// Summary returns the headline counters.
func (c *Client) Summary(ctx context.Context, q models.AnalyticsQuery) (*models.Summary, error) {
	var out models.Summary
	if err := c.slice(ctx, models.SliceSummary, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Volume returns feedback counts per bucket.
func (c *Client) Volume(ctx context.Context, q models.AnalyticsQuery) (*models.Volume, error) {
	var out models.Volume
	if err := c.slice(ctx, models.SliceVolume, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sentiment returns the sentiment distribution.
func (c *Client) Sentiment(ctx context.Context, q models.AnalyticsQuery) (*models.SentimentBreakdown, error) {
	var out models.SentimentBreakdown
	if err := c.slice(ctx, models.SliceSentiment, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopIssues returns the highest-impact issues.
func (c *Client) TopIssues(ctx context.Context, q models.AnalyticsQuery) (*models.TopIssues, error) {
	var out models.TopIssues
	if err := c.slice(ctx, models.SliceTopIssues, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Areas returns counts and average sentiment per product area.
func (c *Client) Areas(ctx context.Context, q models.AnalyticsQuery) (*models.AreaBreakdown, error) {
	var out models.AreaBreakdown
	if err := c.slice(ctx, models.SliceAreas, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AtRisk returns customers with renewal risk.
func (c *Client) AtRisk(ctx context.Context, q models.AnalyticsQuery) (*models.AtRisk, error) {
	var out models.AtRisk
	if err := c.slice(ctx, models.SliceAtRisk, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sources returns the source distribution.
func (c *Client) Sources(ctx context.Context, q models.AnalyticsQuery) (*models.SourceBreakdown, error) {
	var out models.SourceBreakdown
	if err := c.slice(ctx, models.SliceSources, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Segments returns per-segment counts broken down by area.
func (c *Client) Segments(ctx context.Context, q models.AnalyticsQuery) (*models.SegmentBreakdown, error) {
	var out models.SegmentBreakdown
	if err := c.slice(ctx, models.SliceSegments, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ interfaces.AnalyticsAPI = (*Client)(nil)
