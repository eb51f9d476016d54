package widgets

import (
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// ErrInvalidWidget is returned when toggling an id that is not a widget.
var ErrInvalidWidget = errors.New("unknown widget")

// TopIssueLimit caps the top-issues table.
const TopIssueLimit = 5

// RecentTextLimit caps the feedback excerpt in the recent widget.
const RecentTextLimit = 80

// Card is one summary tile.
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Trend *Trend `json:"trend,omitempty"`
	Link  string `json:"link"`
}

// SummaryCards maps the summary slice to its four tiles.
func SummaryCards(s *models.Summary) []Card {
	if s == nil {
		return nil
	}
	return []Card{
		{Label: "Total Feedback", Value: fmt.Sprintf("%d", s.TotalFeedback), Trend: FormatTrend(s.TotalFeedbackTrend), Link: FeedbackPath},
		{Label: "Avg Sentiment", Value: SentimentScore(s.AvgSentiment), Trend: FormatTrend(s.AvgSentimentTrend), Link: FeedbackPath},
		{Label: "Active Issues", Value: fmt.Sprintf("%d", s.ActiveIssues), Trend: FormatTrend(s.ActiveIssuesTrend), Link: SentimentLink(models.SentimentNegative)},
		{Label: "At-Risk Customers", Value: fmt.Sprintf("%d", s.AtRiskCustomers), Link: CustomersPath},
	}
}

// IssueRow is one row of the top-issues table.
type IssueRow struct {
	models.TopIssue
	Growth        *Trend   `json:"growth,omitempty"`
	SeverityColor string   `json:"severity_color"`
	Link          string   `json:"link"`
	Actions       []Action `json:"actions"`
}

// TopIssueRows keeps the first TopIssueLimit issues and attaches their actions.
func TopIssueRows(t *models.TopIssues) []IssueRow {
	if t == nil {
		return nil
	}
	issues := t.Issues
	if len(issues) > TopIssueLimit {
		issues = issues[:TopIssueLimit]
	}
	rows := make([]IssueRow, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, IssueRow{
			TopIssue:      issue,
			Growth:        FormatTrend(issue.GrowthRate),
			SeverityColor: SeverityColor(issue.Severity),
			Link:          AreaLink(issue.ProductArea),
			Actions:       IssueActions(issue.ProductArea),
		})
	}
	return rows
}

// AtRiskRow is one row of the at-risk customers table.
type AtRiskRow struct {
	models.AtRiskCustomer
	ARRText string `json:"arr_text"`
	Health  string `json:"health"`
	Link    string `json:"link"`
}

// AtRiskRows formats the at-risk slice.
func AtRiskRows(a *models.AtRisk) []AtRiskRow {
	if a == nil {
		return nil
	}
	rows := make([]AtRiskRow, 0, len(a.Customers))
	for _, c := range a.Customers {
		rows = append(rows, AtRiskRow{
			AtRiskCustomer: c,
			ARRText:        FormatARR(c.ARR),
			Health:         filters.HealthBand(c.HealthScore),
			Link:           CustomerLink(c.ID),
		})
	}
	return rows
}

// RecentRow is one row of the recent-feedback widget.
type RecentRow struct {
	ID          string `json:"id"`
	Excerpt     string `json:"excerpt"`
	Sentiment   string `json:"sentiment,omitempty"`
	Source      string `json:"source,omitempty"`
	ProductArea string `json:"product_area,omitempty"`
	Customer    string `json:"customer,omitempty"`
	When        string `json:"when"`
	Link        string `json:"link"`
}

// RecentRows formats the recent feedback list relative to now.
func RecentRows(items []models.Feedback, now time.Time) []RecentRow {
	rows := make([]RecentRow, 0, len(items))
	for _, f := range items {
		rows = append(rows, RecentRow{
			ID:          f.ID,
			Excerpt:     Truncate(f.Text, RecentTextLimit),
			Sentiment:   f.Sentiment,
			Source:      models.SourceLabel(f.Source),
			ProductArea: f.ProductArea,
			Customer:    f.CustomerName,
			When:        RelativeTime(f.CreatedAt, now),
			Link:        FeedbackItemLink(f.ID),
		})
	}
	return rows
}

// VisibleWidgets returns the saved widget set in layout order, dropping
// unknown ids. An empty set falls back to every widget.
func VisibleWidgets(prefs *models.UserPreferences) []string {
	if prefs == nil || len(prefs.DashboardPreferences.VisibleWidgets) == 0 {
		return models.DefaultWidgets()
	}
	saved := make(map[string]bool, len(prefs.DashboardPreferences.VisibleWidgets))
	for _, id := range prefs.DashboardPreferences.VisibleWidgets {
		saved[id] = true
	}
	out := make([]string, 0, len(saved))
	for _, w := range models.DashboardWidgets {
		if saved[w.ID] {
			out = append(out, w.ID)
		}
	}
	if len(out) == 0 {
		return models.DefaultWidgets()
	}
	return out
}

// ToggleWidget flips one widget in a visibility set, keeping layout order.
func ToggleWidget(visible []string, id string) ([]string, error) {
	if !models.ValidWidget(id) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWidget, id)
	}
	set := make(map[string]bool, len(visible))
	for _, v := range visible {
		set[v] = true
	}
	set[id] = !set[id]
	out := make([]string, 0, len(set))
	for _, w := range models.DashboardWidgets {
		if set[w.ID] {
			out = append(out, w.ID)
		}
	}
	return out, nil
}
