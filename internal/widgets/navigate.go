// Package widgets shapes analytics slices for display: click-to-filter
// targets, colours, labels and rendered charts.
package widgets

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// Navigation targets.
const (
	FeedbackPath  = "/feedback"
	CustomersPath = "/customers"
	SpecsPath     = "/specs"
	LoginPath     = "/login"
	OnboardPath   = "/onboarding"
)

// ErrUnknownWidget is returned for a widget with no click target.
var ErrUnknownWidget = errors.New("widget has no click target")

// feedbackLink builds /feedback with only the given filter applied, so no
// other facet is altered.
func feedbackLink(f filters.Filters) string {
	q := filters.FiltersToQuery(f).Apply(url.Values{})
	if len(q) == 0 {
		return FeedbackPath
	}
	return FeedbackPath + "?" + q.Encode()
}

// SentimentLink is the target of a sentiment donut slice.
func SentimentLink(sentiment string) string {
	return feedbackLink(filters.Filters{Sentiment: []string{sentiment}})
}

// AreaLink is the target of an area bar.
func AreaLink(area string) string {
	return feedbackLink(filters.Filters{ProductArea: []string{area}})
}

// SourceLink is the target of a source slice.
func SourceLink(source string) string {
	return feedbackLink(filters.Filters{Source: []string{source}})
}

// SegmentLink is the target of a segment bar.
func SegmentLink(segment string) string {
	return feedbackLink(filters.Filters{CustomerSegment: []string{segment}})
}

// DayLink is the target of a volume point: that single day.
func DayLink(date string) string {
	return feedbackLink(filters.Filters{DateFrom: date, DateTo: date})
}

// CustomerLink is the profile of one customer.
func CustomerLink(id string) string {
	return CustomersPath + "/" + url.PathEscape(id)
}

// CustomerFeedbackLink lists one customer's feedback.
func CustomerFeedbackLink(id string) string {
	return FeedbackPath + "?" + url.Values{filters.KeyCustomer: {id}}.Encode()
}

// FeedbackItemLink opens the detail panel for one item.
func FeedbackItemLink(id string) string {
	return FeedbackPath + "?" + url.Values{filters.KeyID: {id}}.Encode()
}

// Target resolves a click on widget with value to a navigation path.
func Target(widget, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty value for widget %q", widget)
	}
	switch widget {
	case models.WidgetSentiment:
		return SentimentLink(value), nil
	case models.WidgetAreas, models.WidgetTopIssues:
		return AreaLink(value), nil
	case models.WidgetSources:
		return SourceLink(value), nil
	case models.WidgetSegments:
		return SegmentLink(value), nil
	case models.WidgetVolume:
		return DayLink(value), nil
	case models.WidgetAtRisk:
		return CustomerLink(value), nil
	case models.WidgetRecent:
		return FeedbackItemLink(value), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownWidget, widget)
}
