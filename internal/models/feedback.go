package models

import "encoding/json"

// Feedback is a read-only projection of a backend feedback record.
type Feedback struct {
	ID              string                     `json:"id"`
	OrgID           string                     `json:"org_id,omitempty"`
	Text            string                     `json:"text"`
	Source          string                     `json:"source,omitempty"`
	Sentiment       string                     `json:"sentiment,omitempty"`
	SentimentScore  *float64                   `json:"sentiment_score,omitempty"`
	Rating          *float64                   `json:"rating,omitempty"`
	ProductArea     string                     `json:"product_area,omitempty"`
	CustomerID      string                     `json:"customer_id,omitempty"`
	CustomerName    string                     `json:"customer_name,omitempty"`
	CustomerSegment string                     `json:"customer_segment,omitempty"`
	AuthorName      string                     `json:"author_name,omitempty"`
	AuthorEmail     string                     `json:"author_email,omitempty"`
	Tags            []string                   `json:"tags,omitempty"`
	SourceFile      string                     `json:"source_file,omitempty"`
	IngestionMethod string                     `json:"ingestion_method,omitempty"`
	CreatedAt       string                     `json:"created_at,omitempty"`
	IngestedAt      string                     `json:"ingested_at,omitempty"`
	Metadata        map[string]json.RawMessage `json:"metadata,omitempty"`
}

// Feedback source constants.
const (
	SourceAppStoreReview    = "app_store_review"
	SourceG2Capterra        = "g2_capterra"
	SourceSupportTicket     = "support_ticket"
	SourceNPSCSAT           = "nps_csat"
	SourceCustomerEmail     = "customer_email"
	SourceSalesCallNote     = "sales_call_note"
	SourceSlackMessage      = "slack_message"
	SourceInternalTeam      = "internal_team_feedback"
	SourceUserInterview     = "user_interview"
	SourceBugReport         = "bug_report"
	SourceCommunityForum    = "community_forum"
	DefaultFeedbackSource   = SourceSupportTicket
	ManualFeedbackTimeOfDay = "T12:00:00.000Z"
)

// FeedbackSourceLabels maps source ids to display labels, in display order.
var FeedbackSourceLabels = []struct {
	ID    string
	Label string
}{
	{SourceAppStoreReview, "App Store Review"},
	{SourceG2Capterra, "G2 / Capterra"},
	{SourceSupportTicket, "Support Ticket"},
	{SourceNPSCSAT, "NPS / CSAT Survey"},
	{SourceCustomerEmail, "Customer Email"},
	{SourceSalesCallNote, "Sales Call Note"},
	{SourceSlackMessage, "Slack Message"},
	{SourceInternalTeam, "Internal Team Feedback"},
	{SourceUserInterview, "User Interview / Research"},
	{SourceBugReport, "Bug Report (Jira/Linear)"},
	{SourceCommunityForum, "Community Forum / Discord"},
}

// SourceLabel returns the display label for a source id, or the id itself.
func SourceLabel(id string) string {
	for _, s := range FeedbackSourceLabels {
		if s.ID == id {
			return s.Label
		}
	}
	return id
}

// ValidFeedbackSources is the set of allowed source values.
var ValidFeedbackSources = func() map[string]bool {
	m := make(map[string]bool, len(FeedbackSourceLabels))
	for _, s := range FeedbackSourceLabels {
		m[s.ID] = true
	}
	return m
}()

// Sentiment constants.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// ValidSentiments is the set of allowed sentiment values.
var ValidSentiments = map[string]bool{
	SentimentPositive: true,
	SentimentNegative: true,
	SentimentNeutral:  true,
}

// Search sort keys.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
	SortSentiment = "sentiment"
)

// ValidSearchSorts is the set of allowed sort_by values for feedback search.
var ValidSearchSorts = map[string]bool{
	SortRelevance: true,
	SortDate:      true,
	SortSentiment: true,
}

// ManualFeedbackRequest is the body of POST /feedback/manual.
type ManualFeedbackRequest struct {
	Text         string   `json:"text" validate:"required"`
	Source       string   `json:"source,omitempty" validate:"omitempty,feedback_source"`
	ProductArea  string   `json:"product_area,omitempty"`
	CustomerID   string   `json:"customer_id,omitempty"`
	CustomerName string   `json:"customer_name,omitempty"`
	AuthorName   string   `json:"author_name,omitempty"`
	AuthorEmail  string   `json:"author_email,omitempty" validate:"omitempty,email"`
	Rating       *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=10"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// FeedbackListParams are the query params of GET /feedback.
type FeedbackListParams struct {
	Page        int
	PageSize    int
	SourceType  string
	ProductArea string
	Sentiment   string
	SortBy      string
	SortOrder   string
}
