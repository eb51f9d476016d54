package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/analytics"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
	"github.com/bobmcallan/feedpulse/internal/services/customers"
	"github.com/bobmcallan/feedpulse/internal/services/dashboard"
	"github.com/bobmcallan/feedpulse/internal/services/search"
	"github.com/bobmcallan/feedpulse/internal/services/upload"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

func TestFormatFeedbackList(t *testing.T) {
	snap := search.Snapshot{
		Items: []models.Feedback{
			{ID: "f1", Text: "Checkout | payment fails", Sentiment: "negative", Source: models.SourceSupportTicket, CreatedAt: "2024-03-01T10:00:00Z"},
			{ID: "f2", Text: "Love the new search", Sentiment: "positive"},
		},
		Total: 2, Page: 1, Pages: 1,
		State: filters.FeedbackState{
			Query: "checkout",
			Sort:  models.SortRelevance,
			Filters: filters.Filters{
				Sentiment: []string{"negative"},
			},
		},
	}

	out := formatFeedbackList(snap, []string{"f2"})

	for _, want := range []string{
		"# Feedback matching \"checkout\"",
		"**Results:** 2",
		"sentiment=negative",
		"| Support Ticket |",
		"2024-03-01",
		"Checkout \\| payment fails",
		"| ★ | f2 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "| ★ | f1 |") {
		t.Error("f1 should not be starred")
	}
}

func TestFormatFeedbackList_Empty(t *testing.T) {
	out := formatFeedbackList(search.Snapshot{Page: 1}, nil)
	if !strings.Contains(out, "No feedback found.") {
		t.Errorf("expected empty message, got:\n%s", out)
	}
	if !strings.Contains(out, "Page:** 1 of 1") {
		t.Errorf("pages should floor at 1, got:\n%s", out)
	}
}

func TestFormatFeedback(t *testing.T) {
	score := 0.25
	item := &models.Feedback{
		ID:             "f9",
		Text:           "Line one\nLine two",
		Source:         models.SourceBugReport,
		SentimentScore: &score,
		Tags:           []string{"billing", "ux"},
	}

	out := formatFeedback(item, true)

	for _, want := range []string{
		"# Feedback f9 ★",
		"> Line one\n> Line two",
		"| Source | Bug Report (Jira/Linear) |",
		"| Tags | billing, ux |",
		"feedpulse chat --feedback f9",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "| Author |") {
		t.Error("empty fields should be skipped")
	}
}

func TestFormatCustomerPage(t *testing.T) {
	health := 35.0
	neg := 4
	p := &customers.Page{
		Items: []customers.Row{{
			Customer:    models.Customer{ID: "c1", CompanyName: "Globex", RenewalDate: "2024-04-01", HealthScore: &health, NegativeFeedbackCount: &neg},
			ARRText:     "$120K",
			Health:      filters.HealthAtRisk,
			RenewalSoon: true,
		}},
		Total: 1, Page: 1, Pages: 1,
		State: filters.CustomerState{Sort: "arr", Order: "desc"},
	}

	out := formatCustomerPage(p)

	for _, want := range []string{"# Customers", "**Sort:** arr desc", "| c1 | Globex |", "$120K", "35 (" + filters.HealthAtRisk + ")", "2024-04-01 ⚠", "| - | 4 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatProfile(t *testing.T) {
	days := 12
	p := &customers.Profile{
		Customer:      &models.Customer{ID: "c1", CompanyName: "Globex", RenewalDate: "2024-04-01"},
		ARRText:       "$1.2M",
		DaysToRenewal: &days,
		RenewalSoon:   true,
		Feedback: &models.PagedList[models.Feedback]{
			Data:       []models.Feedback{{ID: "f1", Text: "Exports time out"}},
			Pagination: models.Pagination{Page: 1, PageSize: 20, Total: 1},
		},
		Trend: &models.SentimentTrend{
			Periods:        []models.TrendPoint{{Date: "2024-03", AvgSentiment: -0.4}},
			ProductAverage: []models.TrendPoint{{Date: "2024-03", AvgSentiment: 0.1}},
		},
	}

	out := formatProfile(p)

	for _, want := range []string{
		"# Globex",
		"(12 days) ⚠ renewing soon",
		"## Sentiment Trend",
		"| 2024-03 | " + widgets.SentimentScore(-0.4) + " | " + widgets.SentimentScore(0.1) + " |",
		"## Feedback (1)",
		"Exports time out",
		"feedpulse chat --customer c1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDashboard_FailedSliceShowsError(t *testing.T) {
	v := &dashboard.View{
		Dashboard: &analytics.Dashboard{
			Period: filters.Period{From: "2024-03-01", To: "2024-03-31"},
			Slices: map[string]*analytics.Slice{
				models.SliceTopIssues: {Error: "boom", Err: errors.New("boom")},
			},
		},
		AtRiskRows: []widgets.AtRiskRow{{
			AtRiskCustomer: models.AtRiskCustomer{CompanyName: "Initech", NegativeFeedbackCount: 3},
			ARRText:        "$50K",
		}},
		Recent:         dashboard.Recent{Error: "timeout"},
		VisibleWidgets: []string{models.WidgetTopIssues, models.WidgetAtRisk, models.WidgetRecent},
	}

	out := formatDashboard(v)

	for _, want := range []string{
		"# Dashboard: 2024-03-01 to 2024-03-31",
		"_Could not load top-issues: boom_",
		"| Initech | $50K |",
		"_Could not load recent feedback: timeout_",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Sources") {
		t.Error("hidden widgets should not render")
	}
}

func TestFormatWidgets(t *testing.T) {
	out := formatWidgets([]string{models.WidgetSummary})
	if !strings.Contains(out, "- [x] Summary Cards (`summary`)") {
		t.Errorf("summary should be checked:\n%s", out)
	}
	if !strings.Contains(out, "- [ ] At-Risk Customers (`at_risk`)") {
		t.Errorf("at_risk should be unchecked:\n%s", out)
	}
}

func TestFormatToggled(t *testing.T) {
	if got := formatToggled(models.WidgetAtRisk, []string{models.WidgetAtRisk}); !strings.Contains(got, "**At-Risk Customers** is now shown.") {
		t.Errorf("unexpected toggle line: %q", got)
	}
	if got := formatToggled(models.WidgetVolume, nil); !strings.Contains(got, "**Volume Chart** is now hidden.") {
		t.Errorf("unexpected toggle line: %q", got)
	}
}

func TestFormatMessage_Citations(t *testing.T) {
	out := formatMessage(chat.Message{
		Role:    "assistant",
		Content: "Checkout latency is the top complaint.",
		Citations: []models.Citation{
			{FeedbackID: "f1", Text: "Checkout is slow"},
			{CustomerID: "c7"},
		},
	})
	for _, want := range []string{"Checkout latency", "Sources:", "feedback `f1` Checkout is slow", "customer `c7`"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatOutcome(t *testing.T) {
	pending := formatOutcome(&upload.Outcome{
		Kind:         models.UploadFeedback,
		UploadID:     "u1",
		Columns:      []string{"comment", "date"},
		TotalRows:    12,
		NeedsMapping: true,
	})
	if !strings.Contains(pending, "feedpulse upload confirm feedback u1 --map text=<column>") {
		t.Errorf("expected confirm hint:\n%s", pending)
	}

	done := formatOutcome(&upload.Outcome{
		Kind:     models.UploadFeedback,
		UploadID: "u1",
		Result: &models.UploadResult{
			TotalRows:     12,
			ImportedRows:  10,
			DetectedAreas: []models.DetectedArea{{Name: "Checkout", Count: 6, IsNew: true}},
		},
	})
	for _, want := range []string{"Imported **10** of 12 feedback rows.", "- Checkout: 6 (new)"} {
		if !strings.Contains(done, want) {
			t.Errorf("output missing %q:\n%s", want, done)
		}
	}
}

func TestFormatSpec_SkipsEmptySections(t *testing.T) {
	out := formatSpec(&models.Spec{ID: "s1", Title: "Faster checkout", Status: models.SpecStatusDraft, PRD: "# PRD\nShip it", Plan: "  "})
	if !strings.Contains(out, "# Faster checkout") || !strings.Contains(out, "# PRD\nShip it") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Count(out, "---") != 1 {
		t.Errorf("only the PRD section should render:\n%s", out)
	}
}

func TestFormatStarredAndEmptyLists(t *testing.T) {
	if got := formatStarred(nil); got != "Nothing starred.\n" {
		t.Errorf("formatStarred(nil) = %q", got)
	}
	if got := formatStarred([]string{"f1"}); got != "- ★ f1\n" {
		t.Errorf("formatStarred = %q", got)
	}
	if got := formatUploads(nil); got != "No uploads yet.\n" {
		t.Errorf("formatUploads(nil) = %q", got)
	}
	if got := formatMatches(nil); got != "No matching customers.\n" {
		t.Errorf("formatMatches(nil) = %q", got)
	}
}

func TestCell(t *testing.T) {
	if got := cell("a|b\nc"); got != "a\\|b c" {
		t.Errorf("cell = %q", got)
	}
	if got := cell(""); got != "-" {
		t.Errorf("cell(\"\") = %q", got)
	}
}
