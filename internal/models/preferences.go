package models

// Dashboard widget ids.
const (
	WidgetSummary   = "summary"
	WidgetVolume    = "volume"
	WidgetSentiment = "sentiment"
	WidgetTopIssues = "top_issues"
	WidgetAreas     = "areas"
	WidgetAtRisk    = "at_risk"
	WidgetRecent    = "recent"
	WidgetSources   = "sources"
	WidgetSegments  = "segments"
)

// DashboardWidgets lists every widget with its label, in layout order.
var DashboardWidgets = []struct {
	ID    string
	Label string
}{
	{WidgetSummary, "Summary Cards"},
	{WidgetVolume, "Volume Chart"},
	{WidgetSentiment, "Sentiment Donut"},
	{WidgetTopIssues, "Top Issues"},
	{WidgetAreas, "Area Breakdown"},
	{WidgetAtRisk, "At-Risk Customers"},
	{WidgetRecent, "Recent Feedback"},
	{WidgetSources, "Source Distribution"},
	{WidgetSegments, "Segment Breakdown"},
}

// DefaultWidgets returns a fresh copy of the full widget set.
func DefaultWidgets() []string {
	ids := make([]string, len(DashboardWidgets))
	for i, w := range DashboardWidgets {
		ids[i] = w.ID
	}
	return ids
}

// ValidWidget reports whether id names a dashboard widget.
func ValidWidget(id string) bool {
	for _, w := range DashboardWidgets {
		if w.ID == id {
			return true
		}
	}
	return false
}

// DashboardPreferences is stored server-side per user.
type DashboardPreferences struct {
	VisibleWidgets []string `json:"visible_widgets"`
	DefaultPeriod  string   `json:"default_period,omitempty"`
}

// UserPreferences is the body of GET/PUT /user/preferences.
type UserPreferences struct {
	DashboardPreferences DashboardPreferences `json:"dashboard_preferences"`
}

// Theme values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)
