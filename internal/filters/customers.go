package filters

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// Customer list URL keys.
const (
	KeyHealthMin   = "health_min"
	KeyHealthMax   = "health_max"
	KeyRenewal     = "renewal"
	KeyHasNegative = "has_negative"
	KeyARRMin      = "arr_min"
	KeyARRMax      = "arr_max"
	KeyOrder       = "order"
)

// RenewalSoonDays marks a renewal as imminent.
const RenewalSoonDays = 60

// CustomerState is everything the customer list reads from the URL.
type CustomerState struct {
	Search      string   `json:"search,omitempty"`
	Segment     string   `json:"segment,omitempty"`
	HealthMin   *float64 `json:"health_min,omitempty"`
	HealthMax   *float64 `json:"health_max,omitempty"`
	RenewalDays *int     `json:"renewal_within,omitempty"`
	HasNegative *bool    `json:"has_negative,omitempty"`
	ARRMin      *float64 `json:"arr_min,omitempty"`
	ARRMax      *float64 `json:"arr_max,omitempty"`
	Sort        string   `json:"sort"`
	Order       string   `json:"order"`
	Page        int      `json:"page"`
}

// ParseCustomerState reads the customer list URL. has_negative is "1" or "0";
// anything else leaves it unset.
func ParseCustomerState(params url.Values) CustomerState {
	s := CustomerState{
		Search:    strings.TrimSpace(params.Get(KeyQuery)),
		Segment:   params.Get(KeySegment),
		HealthMin: parseFloat(params.Get(KeyHealthMin)),
		HealthMax: parseFloat(params.Get(KeyHealthMax)),
		ARRMin:    parseFloat(params.Get(KeyARRMin)),
		ARRMax:    parseFloat(params.Get(KeyARRMax)),
		Sort:      params.Get(KeySort),
		Order:     params.Get(KeyOrder),
		Page:      ParsePage(params.Get(KeyPage)),
	}
	if n, err := strconv.Atoi(params.Get(KeyRenewal)); err == nil {
		s.RenewalDays = &n
	}
	switch params.Get(KeyHasNegative) {
	case "1":
		v := true
		s.HasNegative = &v
	case "0":
		v := false
		s.HasNegative = &v
	}
	if s.Sort == "" {
		s.Sort = models.CustomerSortCompanyName
	}
	if s.Order != "desc" {
		s.Order = "asc"
	}
	return s
}

// Params builds the list call. Feedback stats are always requested.
func (s CustomerState) Params(pageSize int) models.CustomerListParams {
	return models.CustomerListParams{
		Page:                 s.Page,
		PageSize:             pageSize,
		Search:               s.Search,
		Segment:              s.Segment,
		HealthMin:            s.HealthMin,
		HealthMax:            s.HealthMax,
		RenewalWithin:        s.RenewalDays,
		ARRMin:               s.ARRMin,
		ARRMax:               s.ARRMax,
		HasNegativeFeedback:  s.HasNegative,
		IncludeFeedbackStats: true,
		SortBy:               s.Sort,
		SortOrder:            s.Order,
	}
}

// DaysToRenewal returns whole days from today until the renewal date, or
// nil when the date is missing or unparsable.
func DaysToRenewal(renewal string, today time.Time) *int {
	if renewal == "" {
		return nil
	}
	if len(renewal) > len(DateLayout) {
		renewal = renewal[:len(DateLayout)]
	}
	r, err := time.Parse(DateLayout, renewal)
	if err != nil {
		return nil
	}
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(r.Sub(t).Hours() / 24)
	return &days
}

// RenewalSoon reports a renewal within the next RenewalSoonDays days.
func RenewalSoon(renewal string, today time.Time) bool {
	d := DaysToRenewal(renewal, today)
	return d != nil && *d >= 0 && *d <= RenewalSoonDays
}

// Health bands.
const (
	HealthGood    = "good"
	HealthWatch   = "watch"
	HealthAtRisk  = "at_risk"
	HealthUnknown = "unknown"
)

// HealthBand classifies a 0-100 health score.
func HealthBand(score *float64) string {
	switch {
	case score == nil:
		return HealthUnknown
	case *score >= 70:
		return HealthGood
	case *score >= 40:
		return HealthWatch
	}
	return HealthAtRisk
}

func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
