package widgets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// Trend is a formatted period-over-period change.
type Trend struct {
	Text string `json:"text"`
	Up   bool   `json:"up"`
}

// FormatTrend renders a trend percentage with an explicit sign. A nil trend
// has no previous period to compare against.
func FormatTrend(trend *float64) *Trend {
	if trend == nil {
		return nil
	}
	sign := ""
	if *trend > 0 {
		sign = "+"
	}
	return &Trend{
		Text: sign + strconv.FormatFloat(*trend, 'f', -1, 64) + "%",
		Up:   *trend >= 0,
	}
}

// FormatARR abbreviates currency amounts as $1.2M, $3.4K or $950.
func FormatARR(v *float64) string {
	if v == nil {
		return "-"
	}
	n := *v
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("$%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("$%.1fK", n/1_000)
	}
	return fmt.Sprintf("$%.0f", n)
}

// RelativeTime renders an ISO timestamp relative to now. Anything older than
// a week is shown as a date.
func RelativeTime(iso string, now time.Time) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		if t, err = time.Parse("2006-01-02T15:04:05", iso); err != nil {
			return iso
		}
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("2 Jan 2006")
}

// Truncate shortens text to max runes plus an ellipsis.
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}

// SentimentScore renders a -1..1 score with two decimals.
func SentimentScore(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WidgetLabel returns the display label of a widget id.
func WidgetLabel(id string) string {
	for _, w := range models.DashboardWidgets {
		if w.ID == id {
			return w.Label
		}
	}
	return id
}
