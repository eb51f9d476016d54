package widgets

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/feedpulse/internal/models"
)

var sentimentColors = map[string]string{
	models.SentimentPositive: "22c55e",
	models.SentimentNegative: "ef4444",
	models.SentimentNeutral:  "6b7280",
}

var sourceColors = map[string]string{
	models.SourceAppStoreReview: "3b82f6",
	models.SourceG2Capterra:     "6366f1",
	models.SourceSupportTicket:  "f97316",
	models.SourceNPSCSAT:        "22c55e",
	models.SourceCustomerEmail:  "14b8a6",
	models.SourceSalesCallNote:  "a855f7",
	models.SourceSlackMessage:   "ec4899",
	models.SourceInternalTeam:   "6b7280",
	models.SourceUserInterview:  "06b6d4",
	models.SourceBugReport:      "ef4444",
	models.SourceCommunityForum: "eab308",
}

var segmentPalette = []string{"6366f1", "8b5cf6", "ec4899", "f59e0b"}

const fallbackColor = "6b7280"

// SentimentColor is the hex colour of a sentiment label.
func SentimentColor(sentiment string) string {
	if c, ok := sentimentColors[sentiment]; ok {
		return c
	}
	return fallbackColor
}

// SourceColor is the hex colour of a feedback source.
func SourceColor(source string) string {
	if c, ok := sourceColors[source]; ok {
		return c
	}
	return fallbackColor
}

// AreaColor grades an average sentiment: green from 0.3, amber from -0.3, red below.
func AreaColor(avg float64) string {
	switch {
	case avg >= 0.3:
		return "22c55e"
	case avg >= -0.3:
		return "eab308"
	}
	return "ef4444"
}

// SegmentColor cycles the segment palette.
func SegmentColor(i int) string {
	return segmentPalette[i%len(segmentPalette)]
}

// SeverityColor is the hex colour of an issue severity.
func SeverityColor(severity string) string {
	switch severity {
	case models.SeverityCritical:
		return "ef4444"
	case models.SeverityEmerging:
		return "f59e0b"
	case models.SeverityImproving:
		return "22c55e"
	}
	return fallbackColor
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(hex)
}
