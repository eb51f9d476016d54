package models

// Analytics slice names, in dashboard order. Each maps to GET /analytics/{slice}.
const (
	SliceSummary   = "summary"
	SliceVolume    = "volume"
	SliceSentiment = "sentiment"
	SliceTopIssues = "top-issues"
	SliceAreas     = "areas"
	SliceAtRisk    = "at-risk"
	SliceSources   = "sources"
	SliceSegments  = "segments"
)

// AllSlices lists every analytics slice fetched by the dashboard fan-out.
var AllSlices = []string{
	SliceSummary,
	SliceVolume,
	SliceSentiment,
	SliceTopIssues,
	SliceAreas,
	SliceAtRisk,
	SliceSources,
	SliceSegments,
}

// Summary is the body of /analytics/summary.
type Summary struct {
	TotalFeedback      int      `json:"total_feedback"`
	TotalFeedbackTrend *float64 `json:"total_feedback_trend"`
	AvgSentiment       float64  `json:"avg_sentiment"`
	AvgSentimentTrend  *float64 `json:"avg_sentiment_trend"`
	ActiveIssues       int      `json:"active_issues"`
	ActiveIssuesTrend  *float64 `json:"active_issues_trend"`
	AtRiskCustomers    int      `json:"at_risk_customers"`
}

// VolumePoint is one bucket of /analytics/volume.
type VolumePoint struct {
	Date   string         `json:"date"`
	Count  int            `json:"count"`
	ByArea map[string]int `json:"by_area,omitempty"`
}

// Volume is the body of /analytics/volume.
type Volume struct {
	Periods []VolumePoint `json:"periods"`
}

// ShareItem is one row of a sentiment or source distribution.
type ShareItem struct {
	Sentiment  string  `json:"sentiment,omitempty"`
	Source     string  `json:"source,omitempty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SentimentBreakdown is the body of /analytics/sentiment.
type SentimentBreakdown struct {
	Breakdown []ShareItem `json:"breakdown"`
	Total     int         `json:"total"`
}

// SourceBreakdown is the body of /analytics/sources.
type SourceBreakdown struct {
	Breakdown []ShareItem `json:"breakdown"`
	Total     int         `json:"total"`
}

// TopIssue is one row of /analytics/top-issues.
type TopIssue struct {
	ProductArea       string   `json:"product_area"`
	IssueName         string   `json:"issue_name"`
	FeedbackCount     int      `json:"feedback_count"`
	GrowthRate        *float64 `json:"growth_rate"`
	Severity          string   `json:"severity"`
	AffectedCustomers int      `json:"affected_customers"`
	AvgSentiment      float64  `json:"avg_sentiment"`
}

// Issue severities.
const (
	SeverityCritical  = "Critical"
	SeverityEmerging  = "Emerging"
	SeverityStable    = "Stable"
	SeverityImproving = "Improving"
)

// TopIssues is the body of /analytics/top-issues.
type TopIssues struct {
	Issues []TopIssue `json:"issues"`
}

// AreaItem is one row of /analytics/areas.
type AreaItem struct {
	ProductArea  string  `json:"product_area"`
	Count        int     `json:"count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// AreaBreakdown is the body of /analytics/areas.
type AreaBreakdown struct {
	Areas []AreaItem `json:"areas"`
}

// AtRiskCustomer is one row of /analytics/at-risk.
type AtRiskCustomer struct {
	ID                    string   `json:"id"`
	CompanyName           string   `json:"company_name"`
	ARR                   *float64 `json:"arr,omitempty"`
	RenewalDate           string   `json:"renewal_date,omitempty"`
	HealthScore           *float64 `json:"health_score,omitempty"`
	NegativeFeedbackCount int      `json:"negative_feedback_count"`
}

// AtRisk is the body of /analytics/at-risk.
type AtRisk struct {
	Customers []AtRiskCustomer `json:"customers"`
}

// AreaCount is a product area with a count.
type AreaCount struct {
	ProductArea string `json:"product_area"`
	Count       int    `json:"count"`
}

// SegmentItem is one row of /analytics/segments.
type SegmentItem struct {
	Segment string      `json:"segment"`
	Count   int         `json:"count"`
	ByArea  []AreaCount `json:"by_area"`
}

// SegmentBreakdown is the body of /analytics/segments.
type SegmentBreakdown struct {
	Segments []SegmentItem `json:"segments"`
}

// AppConfig is the body of GET /config.
type AppConfig struct {
	KibanaURL string `json:"kibana_url"`
}

// AnalyticsQuery addresses one analytics slice. From and To are only sent for
// the custom period.
type AnalyticsQuery struct {
	Period string
	From   string
	To     string
	Limit  int
	Areas  []string
}
