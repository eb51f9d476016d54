package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
	"github.com/bobmcallan/feedpulse/internal/services/customers"
	"github.com/bobmcallan/feedpulse/internal/services/dashboard"
	"github.com/bobmcallan/feedpulse/internal/services/search"
	"github.com/bobmcallan/feedpulse/internal/services/upload"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

// excerptLen caps feedback text in tables.
const excerptLen = 80

// cell makes text safe for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if s == "" {
		return "-"
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatSignedIn(user *models.User, token string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Signed in as **%s** <%s>\n", orDash(user.FullName), user.Email))
	if user.OrgName != "" {
		sb.WriteString(fmt.Sprintf("**Organisation:** %s\n", user.OrgName))
	}
	if user.Role != "" {
		sb.WriteString(fmt.Sprintf("**Role:** %s\n", user.Role))
	}
	if exp := tokenExpiry(token); exp != "" {
		sb.WriteString(fmt.Sprintf("**Session expires:** %s\n", exp))
	}
	return sb.String()
}

// formatFeedbackList formats one page of search results as markdown
func formatFeedbackList(snap search.Snapshot, starred []string) string {
	var sb strings.Builder

	st := snap.State
	if st.Query != "" {
		sb.WriteString(fmt.Sprintf("# Feedback matching \"%s\"\n\n", st.Query))
	} else {
		sb.WriteString("# Feedback\n\n")
	}
	sb.WriteString(fmt.Sprintf("**Results:** %d | **Page:** %d of %d | **Sort:** %s\n", snap.Total, snap.Page, max(snap.Pages, 1), st.Sort))

	f := st.Filters
	var active []string
	if len(f.Sentiment) > 0 {
		active = append(active, "sentiment="+strings.Join(f.Sentiment, ","))
	}
	if len(f.ProductArea) > 0 {
		active = append(active, "area="+strings.Join(f.ProductArea, ","))
	}
	if len(f.Source) > 0 {
		active = append(active, "source="+strings.Join(f.Source, ","))
	}
	if len(f.CustomerSegment) > 0 {
		active = append(active, "segment="+strings.Join(f.CustomerSegment, ","))
	}
	if f.DateFrom != "" || f.DateTo != "" {
		active = append(active, fmt.Sprintf("dates=%s..%s", f.DateFrom, f.DateTo))
	}
	if f.CustomerID != "" {
		active = append(active, "customer="+f.CustomerID)
	}
	if len(active) > 0 {
		sb.WriteString(fmt.Sprintf("**Filters:** %s\n", strings.Join(active, " · ")))
	}
	sb.WriteString("\n")

	if len(snap.Items) == 0 {
		sb.WriteString("No feedback found.\n")
		return sb.String()
	}

	sb.WriteString("| ★ | ID | Feedback | Sentiment | Area | Source | Customer | Date |\n")
	sb.WriteString("|---|----|----------|-----------|------|--------|----------|------|\n")
	for _, item := range snap.Items {
		star := ""
		if slices.Contains(starred, item.ID) {
			star = "★"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			star, item.ID,
			cell(widgets.Truncate(item.Text, excerptLen)),
			cell(item.Sentiment),
			cell(item.ProductArea),
			cell(models.SourceLabel(item.Source)),
			cell(item.CustomerName),
			cell(shortDate(item.CreatedAt)),
		))
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatFeedback formats one feedback item as markdown
func formatFeedback(item *models.Feedback, starred bool) string {
	var sb strings.Builder

	title := "Feedback " + item.ID
	if starred {
		title += " ★"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("> %s\n\n", strings.ReplaceAll(item.Text, "\n", "\n> ")))

	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	row := func(k, v string) {
		if v != "" {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", k, cell(v)))
		}
	}
	row("Source", models.SourceLabel(item.Source))
	row("Sentiment", item.Sentiment)
	if item.SentimentScore != nil {
		row("Sentiment Score", widgets.SentimentScore(*item.SentimentScore))
	}
	if item.Rating != nil {
		row("Rating", fmt.Sprintf("%g", *item.Rating))
	}
	row("Product Area", item.ProductArea)
	row("Customer", item.CustomerName)
	row("Segment", item.CustomerSegment)
	row("Author", item.AuthorName)
	row("Author Email", item.AuthorEmail)
	row("Tags", strings.Join(item.Tags, ", "))
	row("Created", shortDate(item.CreatedAt))
	row("Source File", item.SourceFile)
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Ask the agent: `feedpulse chat --feedback %s`\n", item.ID))
	return sb.String()
}

func formatSimilar(id string, items []models.Feedback) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Similar to %s\n\n", id))
	if len(items) == 0 {
		sb.WriteString("No similar feedback.\n")
		return sb.String()
	}
	sb.WriteString("| ID | Feedback | Sentiment | Area |\n")
	sb.WriteString("|----|----------|-----------|------|\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			item.ID, cell(widgets.Truncate(item.Text, excerptLen)), cell(item.Sentiment), cell(item.ProductArea)))
	}
	return sb.String()
}

// formatCustomerPage formats the customer list as markdown
func formatCustomerPage(p *customers.Page) string {
	var sb strings.Builder

	sb.WriteString("# Customers\n\n")
	sb.WriteString(fmt.Sprintf("**Total:** %d | **Page:** %d of %d | **Sort:** %s %s\n\n", p.Total, p.Page, max(p.Pages, 1), p.State.Sort, p.State.Order))

	if len(p.Items) == 0 {
		sb.WriteString("No customers found.\n")
		return sb.String()
	}

	sb.WriteString("| ID | Company | Segment | ARR | Health | Renewal | Feedback | Negative |\n")
	sb.WriteString("|----|---------|---------|-----|--------|---------|----------|----------|\n")
	for _, row := range p.Items {
		renewal := orDash(shortDate(row.RenewalDate))
		if row.RenewalSoon {
			renewal += " ⚠"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			row.ID, cell(row.CompanyName), cell(row.Segment), row.ARRText,
			healthText(row.HealthScore, row.Health), renewal,
			intPtr(row.FeedbackCount), intPtr(row.NegativeFeedbackCount),
		))
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatProfile formats a customer profile as markdown
func formatProfile(p *customers.Profile) string {
	var sb strings.Builder
	c := p.Customer

	sb.WriteString(fmt.Sprintf("# %s\n\n", c.CompanyName))
	sb.WriteString(fmt.Sprintf("**ARR:** %s | **Health:** %s | **Segment:** %s | **Plan:** %s\n",
		p.ARRText, healthText(c.HealthScore, p.Health), orDash(c.Segment), orDash(c.Plan)))
	if c.RenewalDate != "" {
		line := fmt.Sprintf("**Renewal:** %s", shortDate(c.RenewalDate))
		if p.DaysToRenewal != nil {
			line += fmt.Sprintf(" (%d days)", *p.DaysToRenewal)
		}
		if p.RenewalSoon {
			line += " ⚠ renewing soon"
		}
		sb.WriteString(line + "\n")
	}
	if c.AccountManager != "" {
		sb.WriteString(fmt.Sprintf("**Account Manager:** %s\n", c.AccountManager))
	}
	if c.Industry != "" {
		sb.WriteString(fmt.Sprintf("**Industry:** %s\n", c.Industry))
	}
	sb.WriteString("\n")

	if p.Trend != nil && len(p.Trend.Periods) > 0 {
		sb.WriteString("## Sentiment Trend\n\n")
		sb.WriteString("| Period | Customer | Product Average |\n")
		sb.WriteString("|--------|----------|-----------------|\n")
		avg := make(map[string]float64, len(p.Trend.ProductAverage))
		for _, pt := range p.Trend.ProductAverage {
			avg[pt.Date] = pt.AvgSentiment
		}
		for _, pt := range p.Trend.Periods {
			product := "-"
			if v, ok := avg[pt.Date]; ok {
				product = widgets.SentimentScore(v)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", pt.Date, widgets.SentimentScore(pt.AvgSentiment), product))
		}
		sb.WriteString("\n")
	}

	if p.Feedback != nil {
		pg := p.Feedback.Pagination
		sb.WriteString(fmt.Sprintf("## Feedback (%d)\n\n", pg.Total))
		if len(p.Feedback.Data) == 0 {
			sb.WriteString("No feedback from this customer.\n\n")
		} else {
			sb.WriteString("| ID | Feedback | Sentiment | Area | Date |\n")
			sb.WriteString("|----|----------|-----------|------|------|\n")
			for _, item := range p.Feedback.Data {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
					item.ID, cell(widgets.Truncate(item.Text, excerptLen)), cell(item.Sentiment),
					cell(item.ProductArea), cell(shortDate(item.CreatedAt))))
			}
			sb.WriteString(fmt.Sprintf("\nPage %d of %d\n\n", pg.Page, pg.Pages()))
		}
	}

	sb.WriteString(fmt.Sprintf("Ask the agent: `feedpulse chat --customer %s`\n", c.ID))
	return sb.String()
}

func formatMatches(matches []models.CustomerMatch) string {
	if len(matches) == 0 {
		return "No matching customers.\n"
	}
	var sb strings.Builder
	for _, m := range matches {
		if m.Segment != "" {
			sb.WriteString(fmt.Sprintf("- %s (%s) `%s`\n", m.CompanyName, m.Segment, m.ID))
		} else {
			sb.WriteString(fmt.Sprintf("- %s `%s`\n", m.CompanyName, m.ID))
		}
	}
	return sb.String()
}

// formatDashboard formats the dashboard view as markdown. Hidden widgets
// are skipped; failed slices show their error in place.
func formatDashboard(v *dashboard.View) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Dashboard: %s to %s\n\n", v.Period.From, v.Period.To))

	visible := func(id string) bool {
		return len(v.VisibleWidgets) == 0 || slices.Contains(v.VisibleWidgets, id)
	}
	failed := func(slice string) bool {
		if s, ok := v.Slices[slice]; ok && s.Error != "" {
			sb.WriteString(fmt.Sprintf("_Could not load %s: %s_\n\n", slice, s.Error))
			return true
		}
		return false
	}

	if visible(models.WidgetSummary) && !failed(models.SliceSummary) && len(v.Cards) > 0 {
		sb.WriteString("| Metric | Value | Trend |\n")
		sb.WriteString("|--------|-------|-------|\n")
		for _, c := range v.Cards {
			trend := "-"
			if c.Trend != nil {
				trend = c.Trend.Text
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", c.Label, c.Value, trend))
		}
		sb.WriteString("\n")
	}

	if visible(models.WidgetTopIssues) {
		sb.WriteString("## Top Issues\n\n")
		if !failed(models.SliceTopIssues) {
			if len(v.Issues) == 0 {
				sb.WriteString("No issues in this period.\n\n")
			} else {
				sb.WriteString("| Issue | Area | Feedback | Customers | Growth | Severity |\n")
				sb.WriteString("|-------|------|----------|-----------|--------|----------|\n")
				for _, is := range v.Issues {
					growth := "-"
					if is.Growth != nil {
						growth = is.Growth.Text
					}
					sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s | %s |\n",
						cell(is.IssueName), cell(is.ProductArea), is.FeedbackCount, is.AffectedCustomers, growth, cell(is.Severity)))
				}
				sb.WriteString("\n")
			}
		}
	}

	if visible(models.WidgetAtRisk) {
		sb.WriteString("## At-Risk Customers\n\n")
		if !failed(models.SliceAtRisk) {
			if len(v.AtRiskRows) == 0 {
				sb.WriteString("No customers at risk.\n\n")
			} else {
				sb.WriteString("| Company | ARR | Health | Renewal | Negative |\n")
				sb.WriteString("|---------|-----|--------|---------|----------|\n")
				for _, r := range v.AtRiskRows {
					sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d |\n",
						cell(r.CompanyName), r.ARRText, healthText(r.HealthScore, r.Health),
						orDash(shortDate(r.RenewalDate)), r.NegativeFeedbackCount))
				}
				sb.WriteString("\n")
			}
		}
	}

	breakdown := func(widget, slice, title string) {
		if !visible(widget) {
			return
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", title))
		if failed(slice) {
			return
		}
		links := v.Links[slice]
		if len(links) == 0 {
			sb.WriteString("No data.\n\n")
			return
		}
		for _, l := range links {
			sb.WriteString(fmt.Sprintf("- %s → `%s`\n", l.Label, l.Href))
		}
		sb.WriteString("\n")
	}
	breakdown(models.WidgetSentiment, models.SliceSentiment, "Sentiment")
	breakdown(models.WidgetAreas, models.SliceAreas, "Product Areas")
	breakdown(models.WidgetSources, models.SliceSources, "Sources")
	breakdown(models.WidgetSegments, models.SliceSegments, "Segments")

	if visible(models.WidgetRecent) {
		sb.WriteString("## Recent Feedback\n\n")
		switch {
		case v.Recent.Error != "":
			sb.WriteString(fmt.Sprintf("_Could not load recent feedback: %s_\n\n", v.Recent.Error))
		case len(v.Recent.Rows) == 0:
			sb.WriteString("No feedback in this period.\n\n")
		default:
			for _, r := range v.Recent.Rows {
				sb.WriteString(fmt.Sprintf("- %s _(%s, %s)_ `%s`\n", r.Excerpt, orDash(r.Sentiment), r.When, r.ID))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func formatWidgets(visible []string) string {
	var sb strings.Builder
	for _, w := range models.DashboardWidgets {
		mark := " "
		if slices.Contains(visible, w.ID) {
			mark = "x"
		}
		sb.WriteString(fmt.Sprintf("- [%s] %s (`%s`)\n", mark, w.Label, w.ID))
	}
	return sb.String()
}

func formatToggled(id string, visible []string) string {
	state := "hidden"
	if slices.Contains(visible, id) {
		state = "shown"
	}
	return fmt.Sprintf("**%s** is now %s.\n\n", widgets.WidgetLabel(id), state)
}

func formatMessage(m chat.Message) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(m.Content)
	sb.WriteString("\n")
	if len(m.Citations) > 0 {
		sb.WriteString("\nSources:\n")
		for _, c := range m.Citations {
			switch {
			case c.FeedbackID != "":
				sb.WriteString(fmt.Sprintf("- feedback `%s` %s\n", c.FeedbackID, widgets.Truncate(c.Text, excerptLen)))
			case c.CustomerID != "":
				sb.WriteString(fmt.Sprintf("- customer `%s`\n", c.CustomerID))
			}
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatSuggestions(prompts []string) string {
	var sb strings.Builder
	sb.WriteString("Try asking:\n")
	for _, p := range prompts {
		sb.WriteString(fmt.Sprintf("- %s\n", p))
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatConversations(list []models.Conversation) string {
	if len(list) == 0 {
		return "No stored conversations.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Title | Messages | Updated |\n")
	sb.WriteString("|----|-------|----------|---------|\n")
	for _, c := range list {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n",
			c.ID, cell(c.Title), len(c.Messages), cell(widgets.RelativeTime(c.UpdatedAt, time.Now()))))
	}
	return sb.String()
}

// formatOutcome reports an upload: either the import result or the mapping
// still needed to finish it.
func formatOutcome(o *upload.Outcome) string {
	var sb strings.Builder

	if o.NeedsMapping {
		required, _ := upload.RequiredColumn(o.Kind)
		sb.WriteString(fmt.Sprintf("Upload `%s` staged (%d rows) but the **%s** field is not mapped.\n\n", o.UploadID, o.TotalRows, required))
		sb.WriteString(fmt.Sprintf("**Columns:** %s\n\n", strings.Join(o.Columns, ", ")))
		sb.WriteString(fmt.Sprintf("Finish with: `feedpulse upload confirm %s %s --map %s=<column>`\n", o.Kind, o.UploadID, required))
		return sb.String()
	}

	if o.Result == nil {
		return fmt.Sprintf("Upload `%s` staged.\n", o.UploadID)
	}
	r := o.Result
	sb.WriteString(fmt.Sprintf("Imported **%d** of %d %s rows.\n", r.ImportedRows, r.TotalRows, o.Kind))
	if o.Warning != "" {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", o.Warning))
	}
	if len(r.DetectedAreas) > 0 {
		sb.WriteString("\n**Detected product areas:**\n")
		for _, a := range r.DetectedAreas {
			suffix := ""
			if a.IsNew {
				suffix = " (new)"
			}
			sb.WriteString(fmt.Sprintf("- %s: %d%s\n", a.Name, a.Count, suffix))
		}
	}
	return sb.String()
}

func formatUploads(list []models.UploadRecord) string {
	if len(list) == 0 {
		return "No uploads yet.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Type | File | Status | Imported | Failed | Created |\n")
	sb.WriteString("|----|------|------|--------|----------|--------|---------|\n")
	for _, u := range list {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %d | %s |\n",
			u.ID, u.UploadType, cell(u.Filename), u.Status, u.ImportedRows, u.FailedRows, cell(shortDate(u.CreatedAt))))
	}
	return sb.String()
}

func formatUploadRecord(u *models.UploadRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Upload %s\n\n", u.ID))
	sb.WriteString(fmt.Sprintf("**Type:** %s | **File:** %s | **Status:** %s\n", u.UploadType, orDash(u.Filename), u.Status))
	sb.WriteString(fmt.Sprintf("**Rows:** %d total, %d imported, %d failed\n", u.TotalRows, u.ImportedRows, u.FailedRows))
	if u.ErrorMessage != nil && *u.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("**Error:** %s\n", *u.ErrorMessage))
	}
	if u.CreatedAt != "" {
		sb.WriteString(fmt.Sprintf("**Created:** %s\n", u.CreatedAt))
	}
	if u.CompletedAt != "" {
		sb.WriteString(fmt.Sprintf("**Completed:** %s\n", u.CompletedAt))
	}
	return sb.String()
}

func formatSpecList(list *models.PagedList[models.Spec]) string {
	var sb strings.Builder
	sb.WriteString("# Specs\n\n")
	if len(list.Data) == 0 {
		sb.WriteString("No specs yet. Generate one with `feedpulse specs generate <topic>`.\n")
		return sb.String()
	}
	sb.WriteString("| ID | Title | Status | Area | Feedback | Customers | ARR | Created |\n")
	sb.WriteString("|----|-------|--------|------|----------|-----------|-----|---------|\n")
	for _, s := range list.Data {
		area := ""
		if s.ProductArea != nil {
			area = *s.ProductArea
		}
		arr := s.TotalARR
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %d | %s | %s |\n",
			s.ID, cell(s.Title), s.Status, cell(area), s.FeedbackCount, s.CustomerCount,
			widgets.FormatARR(&arr), cell(shortDate(s.CreatedAt))))
	}
	pg := list.Pagination
	sb.WriteString(fmt.Sprintf("\nPage %d of %d (%d specs)\n", pg.Page, pg.Pages(), pg.Total))
	return sb.String()
}

func formatSpec(s *models.Spec) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", s.Title))
	sb.WriteString(fmt.Sprintf("**ID:** %s | **Status:** %s | **Topic:** %s\n", s.ID, s.Status, s.Topic))
	arr := s.TotalARR
	sb.WriteString(fmt.Sprintf("**Evidence:** %d feedback items, %d customers, %s ARR\n", s.FeedbackCount, s.CustomerCount, widgets.FormatARR(&arr)))
	for _, section := range models.SpecSections {
		content, _ := s.Section(section)
		if strings.TrimSpace(content) == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n---\n\n%s\n", strings.TrimSpace(content)))
	}
	return sb.String()
}

func formatOnboarding(st *models.OnboardingStatus) string {
	var sb strings.Builder
	if st.Completed {
		sb.WriteString("Onboarding complete.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Onboarding in progress: %d of %d sections done.\n", len(st.CompletedSections), st.TotalSections))
	}
	for _, s := range models.WizardSections {
		mark := " "
		if slices.Contains(st.CompletedSections, s) {
			mark = "x"
		}
		sb.WriteString(fmt.Sprintf("- [%s] %s\n", mark, s))
	}
	return sb.String()
}

func formatProductContext(pc *models.ProductContext, areas, segments []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", orDash(pc.ProductName)))
	if pc.Description != "" {
		sb.WriteString(pc.Description + "\n\n")
	}
	if pc.Industry != "" || pc.Stage != "" {
		sb.WriteString(fmt.Sprintf("**Industry:** %s | **Stage:** %s\n", orDash(pc.Industry), orDash(pc.Stage)))
	}
	if pc.WebsiteURL != "" {
		sb.WriteString(fmt.Sprintf("**Website:** %s\n", pc.WebsiteURL))
	}
	if len(areas) > 0 {
		sb.WriteString(fmt.Sprintf("**Product Areas:** %s\n", strings.Join(areas, ", ")))
	}
	if len(segments) > 0 {
		sb.WriteString(fmt.Sprintf("**Segments:** %s\n", strings.Join(segments, ", ")))
	}
	return sb.String()
}

func formatStarred(ids []string) string {
	if len(ids) == 0 {
		return "Nothing starred.\n"
	}
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(fmt.Sprintf("- ★ %s\n", id))
	}
	return sb.String()
}

func healthText(score *float64, band string) string {
	if score == nil {
		return "-"
	}
	if band == "" {
		return fmt.Sprintf("%.0f", *score)
	}
	return fmt.Sprintf("%.0f (%s)", *score, band)
}

func intPtr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// shortDate keeps the date part of an ISO timestamp.
func shortDate(iso string) string {
	if len(iso) > 10 {
		return iso[:10]
	}
	return iso
}
