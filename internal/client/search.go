package client

import (
	"context"
	"net/http"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// Search request defaults.
const (
	DefaultSearchPageSize = 20
	DefaultSearchPage     = 1
)

// SearchFeedback runs a hybrid search. Zero sort, page and page size fall back
// to relevance, 1 and 20. The response is not wrapped in a data envelope.
func (c *Client) SearchFeedback(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	if req.SortBy == "" {
		req.SortBy = models.SortRelevance
	}
	if req.Page <= 0 {
		req.Page = DefaultSearchPage
	}
	if req.PageSize <= 0 {
		req.PageSize = DefaultSearchPageSize
	}

	var resp models.SearchResponse
	if err := c.send(ctx, http.MethodPost, "/search/feedback", req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.Feedback{}
	}
	return &resp, nil
}

var _ interfaces.SearchAPI = (*Client)(nil)
