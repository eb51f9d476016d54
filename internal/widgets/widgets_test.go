package widgets

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestSentimentLink_OnlySetsSentiment(t *testing.T) {
	assert.Equal(t, "/feedback?sentiment=negative", SentimentLink("negative"))
}

func TestTarget(t *testing.T) {
	tests := []struct {
		widget, value, want string
	}{
		{models.WidgetSentiment, "positive", "/feedback?sentiment=positive"},
		{models.WidgetAreas, "Checkout Flow", "/feedback?area=Checkout+Flow"},
		{models.WidgetTopIssues, "Billing", "/feedback?area=Billing"},
		{models.WidgetSources, "bug_report", "/feedback?source=bug_report"},
		{models.WidgetSegments, "enterprise", "/feedback?segment=enterprise"},
		{models.WidgetVolume, "2024-03-01", "/feedback?date_from=2024-03-01&date_to=2024-03-01"},
		{models.WidgetAtRisk, "c 1", "/customers/c%201"},
		{models.WidgetRecent, "f1", "/feedback?id=f1"},
	}
	for _, tt := range tests {
		got, err := Target(tt.widget, tt.value)
		require.NoError(t, err, tt.widget)
		assert.Equal(t, tt.want, got, tt.widget)
	}

	_, err := Target(models.WidgetSummary, "x")
	assert.True(t, errors.Is(err, ErrUnknownWidget))
	_, err = Target(models.WidgetSentiment, "  ")
	assert.Error(t, err)
}

func TestCustomerFeedbackLink(t *testing.T) {
	assert.Equal(t, "/feedback?customer=abc", CustomerFeedbackLink("abc"))
}

func TestFormatTrend(t *testing.T) {
	assert.Nil(t, FormatTrend(nil))
	assert.Equal(t, &Trend{Text: "+12.5%", Up: true}, FormatTrend(ptr(12.5)))
	assert.Equal(t, &Trend{Text: "-3%", Up: false}, FormatTrend(ptr(-3.0)))
	assert.Equal(t, &Trend{Text: "0%", Up: true}, FormatTrend(ptr(0.0)))
}

func TestFormatARR(t *testing.T) {
	assert.Equal(t, "-", FormatARR(nil))
	assert.Equal(t, "$1.2M", FormatARR(ptr(1_200_000.0)))
	assert.Equal(t, "$3.4K", FormatARR(ptr(3_400.0)))
	assert.Equal(t, "$950", FormatARR(ptr(950.0)))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		iso, want string
	}{
		{"2024-03-15T11:59:30Z", "Just now"},
		{"2024-03-15T11:15:00Z", "45m ago"},
		{"2024-03-15T09:00:00Z", "3h ago"},
		{"2024-03-12T12:00:00Z", "3d ago"},
		{"2024-03-01T12:00:00Z", "1 Mar 2024"},
		{"2024-03-15T10:00:00", "2h ago"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeTime(tt.iso, now), tt.iso)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 80))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}

func TestColors(t *testing.T) {
	assert.Equal(t, "ef4444", SentimentColor("negative"))
	assert.Equal(t, "6b7280", SentimentColor("mixed"))
	assert.Equal(t, "22c55e", AreaColor(0.3))
	assert.Equal(t, "eab308", AreaColor(-0.3))
	assert.Equal(t, "ef4444", AreaColor(-0.31))
	assert.Equal(t, SegmentColor(0), SegmentColor(4))
	assert.Equal(t, "f97316", SourceColor(models.SourceSupportTicket))
}

func TestIssueActions(t *testing.T) {
	inv := InvestigateIssue("Checkout")
	assert.Equal(t, "Tell me more about Checkout issues", inv.Prompt)
	assert.Empty(t, inv.Navigate)

	gen := GenerateSpecFor("Checkout")
	assert.Equal(t, "Generate specs for fixing Checkout", gen.Prompt)
	assert.Equal(t, SpecsPath, gen.Navigate)
}

func TestTopIssueRows_FirstFive(t *testing.T) {
	issues := &models.TopIssues{}
	for i := 0; i < 8; i++ {
		issues.Issues = append(issues.Issues, models.TopIssue{ProductArea: string(rune('A' + i)), Severity: models.SeverityCritical})
	}
	rows := TopIssueRows(issues)
	require.Len(t, rows, TopIssueLimit)
	assert.Equal(t, "/feedback?area=A", rows[0].Link)
	assert.Equal(t, "ef4444", rows[0].SeverityColor)
	assert.Len(t, rows[0].Actions, 2)
	assert.Nil(t, TopIssueRows(nil))
}

func TestSummaryCards(t *testing.T) {
	cards := SummaryCards(&models.Summary{TotalFeedback: 120, TotalFeedbackTrend: ptr(4.0), AvgSentiment: 0.25, ActiveIssues: 3, AtRiskCustomers: 2})
	require.Len(t, cards, 4)
	assert.Equal(t, "120", cards[0].Value)
	assert.Equal(t, "+4%", cards[0].Trend.Text)
	assert.Equal(t, "0.25", cards[1].Value)
	assert.Nil(t, cards[1].Trend)
	assert.Equal(t, "/feedback?sentiment=negative", cards[2].Link)
}

func TestRecentRows(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	long := string(bytes.Repeat([]byte("x"), 100))
	rows := RecentRows([]models.Feedback{{ID: "f1", Text: long, Source: models.SourceBugReport, CreatedAt: "2024-03-15T10:00:00Z"}}, now)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Excerpt, RecentTextLimit+3)
	assert.Equal(t, "2h ago", rows[0].When)
	assert.Equal(t, "/feedback?id=f1", rows[0].Link)
	assert.Equal(t, "Bug Report (Jira/Linear)", rows[0].Source)
}

func TestVisibleWidgets(t *testing.T) {
	assert.Equal(t, models.DefaultWidgets(), VisibleWidgets(nil))
	assert.Equal(t, models.DefaultWidgets(), VisibleWidgets(&models.UserPreferences{}))

	prefs := &models.UserPreferences{DashboardPreferences: models.DashboardPreferences{
		VisibleWidgets: []string{"recent", "summary", "weather"},
	}}
	assert.Equal(t, []string{"summary", "recent"}, VisibleWidgets(prefs))
}

func TestToggleWidget(t *testing.T) {
	off, err := ToggleWidget(models.DefaultWidgets(), models.WidgetVolume)
	require.NoError(t, err)
	assert.NotContains(t, off, models.WidgetVolume)
	assert.Len(t, off, 8)

	on, err := ToggleWidget(off, models.WidgetVolume)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultWidgets(), on)

	_, err = ToggleWidget(on, "weather")
	assert.True(t, errors.Is(err, ErrInvalidWidget))
}

func TestRenderVolume(t *testing.T) {
	_, err := RenderVolume(&models.Volume{Periods: []models.VolumePoint{{Date: "2024-03-01", Count: 3}}}, FormatPNG)
	assert.True(t, errors.Is(err, ErrNoData))

	png, err := RenderVolume(&models.Volume{Periods: []models.VolumePoint{
		{Date: "2024-03-01", Count: 3},
		{Date: "2024-03-02", Count: 5},
		{Date: "2024-03-03", Count: 1},
	}}, FormatPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestRenderSentiment(t *testing.T) {
	_, err := RenderSentiment(&models.SentimentBreakdown{}, FormatPNG)
	assert.True(t, errors.Is(err, ErrNoData))

	svg, err := RenderSentiment(&models.SentimentBreakdown{Breakdown: []models.ShareItem{
		{Sentiment: "positive", Count: 6, Percentage: 60},
		{Sentiment: "negative", Count: 4, Percentage: 40},
	}}, FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Equal(t, "image/svg+xml", ContentType(FormatSVG))
}

func TestRenderBars_AllZeroIsNoData(t *testing.T) {
	_, err := RenderAreas(&models.AreaBreakdown{Areas: []models.AreaItem{{ProductArea: "A"}}}, FormatPNG)
	assert.True(t, errors.Is(err, ErrNoData))

	png, err := RenderSources(&models.SourceBreakdown{Breakdown: []models.ShareItem{
		{Source: models.SourceBugReport, Count: 2},
		{Source: models.SourceNPSCSAT, Count: 5},
	}}, FormatPNG)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestRenderSentimentTrend(t *testing.T) {
	trend := &models.SentimentTrend{
		Periods:        []models.TrendPoint{{Date: "2024-01-01", AvgSentiment: 0.2}, {Date: "2024-02-01", AvgSentiment: -0.1}},
		ProductAverage: []models.TrendPoint{{Date: "2024-01-01", AvgSentiment: 0.1}},
	}
	png, err := RenderSentimentTrend(trend, FormatPNG)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	_, err = RenderSentimentTrend(&models.SentimentTrend{}, FormatPNG)
	assert.True(t, errors.Is(err, ErrNoData))
}
