package models

// Pagination is the pagination block of list responses.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// Pages returns the number of pages, at least 1.
func (p Pagination) Pages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Envelope is the {"data": ...} wrapper used by most endpoints.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// PagedList is the {"data": [...], "pagination": {...}} wrapper of list endpoints.
type PagedList[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Count is the body of the */count endpoints.
type Count struct {
	Count int `json:"count"`
}
