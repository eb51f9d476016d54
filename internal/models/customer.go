package models

import "encoding/json"

// Customer is a read-only projection of a backend customer record.
type Customer struct {
	ID                    string                     `json:"id"`
	OrgID                 string                     `json:"org_id,omitempty"`
	CompanyName           string                     `json:"company_name"`
	CustomerIDExternal    string                     `json:"customer_id_external,omitempty"`
	Segment               string                     `json:"segment,omitempty"`
	Plan                  string                     `json:"plan,omitempty"`
	MRR                   *float64                   `json:"mrr,omitempty"`
	ARR                   *float64                   `json:"arr,omitempty"`
	AccountManager        string                     `json:"account_manager,omitempty"`
	RenewalDate           string                     `json:"renewal_date,omitempty"`
	HealthScore           *float64                   `json:"health_score,omitempty"`
	Industry              string                     `json:"industry,omitempty"`
	EmployeeCount         *int                       `json:"employee_count,omitempty"`
	CreatedAt             string                     `json:"created_at,omitempty"`
	UpdatedAt             string                     `json:"updated_at,omitempty"`
	Metadata              map[string]json.RawMessage `json:"metadata,omitempty"`
	FeedbackCount         *int                       `json:"feedback_count,omitempty"`
	NegativeFeedbackCount *int                       `json:"negative_feedback_count,omitempty"`
}

// CustomerMatch is one row of GET /customers/search.
type CustomerMatch struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	Segment     string `json:"segment,omitempty"`
}

// TrendPoint is one dated sentiment average.
type TrendPoint struct {
	Date         string  `json:"date"`
	AvgSentiment float64 `json:"avg_sentiment"`
	Count        int     `json:"count,omitempty"`
}

// SentimentTrend is the body of GET /customers/{id}/sentiment-trend.
type SentimentTrend struct {
	Periods        []TrendPoint `json:"periods"`
	ProductAverage []TrendPoint `json:"product_average"`
}

// ManualCustomerRequest is the body of POST /customers/manual.
type ManualCustomerRequest struct {
	CompanyName        string   `json:"company_name" validate:"required"`
	CustomerIDExternal string   `json:"customer_id_external,omitempty"`
	Segment            string   `json:"segment,omitempty"`
	Plan               string   `json:"plan,omitempty"`
	MRR                *float64 `json:"mrr,omitempty" validate:"omitempty,min=0"`
	ARR                *float64 `json:"arr,omitempty" validate:"omitempty,min=0"`
	AccountManager     string   `json:"account_manager,omitempty"`
	RenewalDate        string   `json:"renewal_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HealthScore        *float64 `json:"health_score,omitempty" validate:"omitempty,min=0,max=100"`
	Industry           string   `json:"industry,omitempty"`
	EmployeeCount      *int     `json:"employee_count,omitempty" validate:"omitempty,min=0"`
}

// Customer list sort keys.
const (
	CustomerSortCompanyName = "company_name"
	CustomerSortARR         = "arr"
	CustomerSortHealth      = "health_score"
	CustomerSortRenewal     = "renewal_date"
	CustomerSortFeedback    = "feedback_count"
)

// CustomerListParams are the query params of GET /customers. Nil pointers and
// empty strings are omitted.
type CustomerListParams struct {
	Page                 int
	PageSize             int
	Search               string
	Segment              string
	HealthMin            *float64
	HealthMax            *float64
	RenewalWithin        *int
	ARRMin               *float64
	ARRMax               *float64
	HasNegativeFeedback  *bool
	IncludeFeedbackStats bool
	SortBy               string
	SortOrder            string
}
