package models

// SearchFilters is the "filters" object of POST /search/feedback. Empty facets are
// omitted; a nil *SearchFilters means no constraint at all.
type SearchFilters struct {
	ProductArea     []string `json:"product_area,omitempty"`
	Source          []string `json:"source,omitempty"`
	Sentiment       []string `json:"sentiment,omitempty"`
	CustomerSegment []string `json:"customer_segment,omitempty"`
	DateFrom        string   `json:"date_from,omitempty"`
	DateTo          string   `json:"date_to,omitempty"`
	CustomerID      string   `json:"customer_id,omitempty"`
	HasCustomer     *bool    `json:"has_customer,omitempty"`
}

// SearchRequest is the body of POST /search/feedback.
type SearchRequest struct {
	Query    string         `json:"query"`
	Filters  *SearchFilters `json:"filters"`
	SortBy   string         `json:"sort_by"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// SearchResponse is the body returned by POST /search/feedback.
type SearchResponse struct {
	Data       []Feedback `json:"data"`
	Pagination Pagination `json:"pagination"`
	Query      string     `json:"query"`
}
