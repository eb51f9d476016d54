package filters

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// FeedbackState is everything the feedback list reads from the URL.
type FeedbackState struct {
	Query      string  `json:"query"`
	Sort       string  `json:"sort"`
	Filters    Filters `json:"filters"`
	Page       int     `json:"page"`
	FeedbackID string  `json:"feedback_id,omitempty"`
}

// ParseFeedbackState reads the feedback list URL. Unknown sorts fall back to
// relevance and pages below 1 to 1.
func ParseFeedbackState(params url.Values, today time.Time) FeedbackState {
	sort := params.Get(KeySort)
	if !models.ValidSearchSorts[sort] {
		sort = models.SortRelevance
	}
	return FeedbackState{
		Query:      strings.TrimSpace(params.Get(KeyQuery)),
		Sort:       sort,
		Filters:    QueryToFilters(params, today),
		Page:       ParsePage(params.Get(KeyPage)),
		FeedbackID: params.Get(KeyID),
	}
}

// ParsePage reads a 1-based page number.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Request builds the search call for this state.
func (s FeedbackState) Request(pageSize int) models.SearchRequest {
	return models.SearchRequest{
		Query:    s.Query,
		Filters:  s.Filters.ToAPI(),
		SortBy:   s.Sort,
		Page:     s.Page,
		PageSize: pageSize,
	}
}

// SortOptions lists the sorts worth offering. Relevance is meaningless
// without query text, so it is dropped for an empty query.
func SortOptions(query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{models.SortDate, models.SortSentiment}
	}
	return []string{models.SortRelevance, models.SortDate, models.SortSentiment}
}
