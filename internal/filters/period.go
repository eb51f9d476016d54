package filters

import (
	"time"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// Analytics periods.
const (
	Period7d     = "7d"
	Period30d    = "30d"
	Period90d    = "90d"
	PeriodCustom = "custom"
)

// PeriodDays maps symbolic periods to their length.
var PeriodDays = map[string]int{
	Period7d:  7,
	Period30d: 30,
	Period90d: 90,
}

// Periods lists the selectable periods in display order.
var Periods = []string{Period7d, Period30d, Period90d, PeriodCustom}

// Period is a symbolic period resolved to concrete dates.
type Period struct {
	Name string `json:"period"`
	From string `json:"from"`
	To   string `json:"to"`
}

// ResolvePeriod turns a period selection into dates. Fixed periods end today
// and start N days earlier. Custom keeps the given dates only when both are
// set, otherwise it spans the last 30 days. Unknown names resolve as 30d.
func ResolvePeriod(name, from, to string, today time.Time) Period {
	if name == PeriodCustom {
		if from != "" && to != "" {
			return Period{Name: PeriodCustom, From: from, To: to}
		}
		return Period{
			Name: PeriodCustom,
			From: today.AddDate(0, 0, -PeriodDays[Period30d]).Format(DateLayout),
			To:   today.Format(DateLayout),
		}
	}
	days, ok := PeriodDays[name]
	if !ok {
		name, days = Period30d, PeriodDays[Period30d]
	}
	return Period{
		Name: name,
		From: today.AddDate(0, 0, -days).Format(DateLayout),
		To:   today.Format(DateLayout),
	}
}

// Query returns the analytics query for this period.
func (p Period) Query() models.AnalyticsQuery {
	return models.AnalyticsQuery{Period: p.Name, From: p.From, To: p.To}
}

// Key identifies the period for change detection.
func (p Period) Key() string {
	return p.Name + "|" + p.From + "|" + p.To
}

// Filters limits a feedback search to this period.
func (p Period) Filters() Filters {
	return Filters{DateFrom: p.From, DateTo: p.To}
}
