// Package filters converts between the feedback filter model and its URL
// query representation.
package filters

import (
	"encoding/json"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// Feedback list URL keys.
const (
	KeyQuery     = "q"
	KeySort      = "sort"
	KeyArea      = "area"
	KeySentiment = "sentiment"
	KeySource    = "source"
	KeySegment   = "segment"
	KeyDateFrom  = "date_from"
	KeyDateTo    = "date_to"
	KeyRange     = "range"
	KeyCustomer  = "customer"
	KeyLinked    = "has_customer"
	KeyID        = "id"
	KeyPage      = "page"
)

// DateLayout is the wire format of every date filter.
const DateLayout = "2006-01-02"

// DefaultRangeDays applies when the range key cannot be parsed.
const DefaultRangeDays = 30

// Filters is the structured feedback filter. An empty facet means no
// constraint on that facet.
type Filters struct {
	ProductArea     []string `json:"product_area"`
	Source          []string `json:"source"`
	Sentiment       []string `json:"sentiment"`
	CustomerSegment []string `json:"customer_segment"`
	DateFrom        string   `json:"date_from,omitempty"`
	DateTo          string   `json:"date_to,omitempty"`
	CustomerID      string   `json:"customer_id,omitempty"`
	HasCustomer     *bool    `json:"has_customer,omitempty"`
}

// MarshalJSON writes unset facets as empty lists rather than null.
func (f Filters) MarshalJSON() ([]byte, error) {
	type plain Filters
	out := plain(f)
	for _, facet := range []*[]string{&out.ProductArea, &out.Source, &out.Sentiment, &out.CustomerSegment} {
		if *facet == nil {
			*facet = []string{}
		}
	}
	return json.Marshal(out)
}

// IsEmpty reports whether no facet constrains the search.
func (f Filters) IsEmpty() bool {
	return len(f.ProductArea) == 0 &&
		len(f.Source) == 0 &&
		len(f.Sentiment) == 0 &&
		len(f.CustomerSegment) == 0 &&
		f.DateFrom == "" &&
		f.DateTo == "" &&
		f.CustomerID == "" &&
		f.HasCustomer == nil
}

// ToAPI returns the search request filter object, or nil when nothing is set.
func (f Filters) ToAPI() *models.SearchFilters {
	if f.IsEmpty() {
		return nil
	}
	return &models.SearchFilters{
		ProductArea:     nonEmpty(f.ProductArea),
		Source:          nonEmpty(f.Source),
		Sentiment:       nonEmpty(f.Sentiment),
		CustomerSegment: nonEmpty(f.CustomerSegment),
		DateFrom:        f.DateFrom,
		DateTo:          f.DateTo,
		CustomerID:      f.CustomerID,
		HasCustomer:     f.HasCustomer,
	}
}

// Key is a canonical, order-insensitive representation used for change
// detection. Two filters with the same facet sets produce the same key.
func (f Filters) Key() string {
	var b strings.Builder
	writeSet := func(name string, vals []string) {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(canonical(vals), ","))
		b.WriteByte(';')
	}
	writeSet("area", f.ProductArea)
	writeSet("source", f.Source)
	writeSet("sentiment", f.Sentiment)
	writeSet("segment", f.CustomerSegment)
	b.WriteString("from=" + f.DateFrom + ";to=" + f.DateTo + ";customer=" + f.CustomerID + ";has_customer=")
	if f.HasCustomer != nil {
		b.WriteString(strconv.FormatBool(*f.HasCustomer))
	}
	return b.String()
}

// Equal compares two filters by set membership.
func (f Filters) Equal(o Filters) bool {
	return f.Key() == o.Key()
}

// Patch is a set of query-param writes. An empty value deletes the key.
type Patch map[string]string

// Apply writes the patch onto a copy of prev. Any patch resets pagination,
// so page is always removed.
func (p Patch) Apply(prev url.Values) url.Values {
	next := make(url.Values, len(prev)+len(p))
	for k, v := range prev {
		next[k] = append([]string(nil), v...)
	}
	for k, v := range p {
		if v == "" {
			next.Del(k)
		} else {
			next.Set(k, v)
		}
	}
	next.Del(KeyPage)
	return next
}

// FiltersToQuery serializes every facet. Empty facets and unset dates map to
// deletions so stale keys never linger in the URL.
func FiltersToQuery(f Filters) Patch {
	return Patch{
		KeyArea:      strings.Join(nonEmpty(f.ProductArea), ","),
		KeySentiment: strings.Join(nonEmpty(f.Sentiment), ","),
		KeySource:    strings.Join(nonEmpty(f.Source), ","),
		KeySegment:   strings.Join(nonEmpty(f.CustomerSegment), ","),
		KeyDateFrom:  normalizeDate(f.DateFrom),
		KeyDateTo:    normalizeDate(f.DateTo),
		KeyCustomer:  f.CustomerID,
		KeyLinked:    formatLinked(f.HasCustomer),
	}
}

// QueryToFilters is the inverse of FiltersToQuery. When neither date is set
// but a range (days) is, the dates resolve to [today-range, today].
func QueryToFilters(params url.Values, today time.Time) Filters {
	f := Filters{
		ProductArea:     splitFacet(params.Get(KeyArea)),
		Source:          splitFacet(params.Get(KeySource)),
		Sentiment:       splitFacet(params.Get(KeySentiment)),
		CustomerSegment: splitFacet(params.Get(KeySegment)),
		DateFrom:        params.Get(KeyDateFrom),
		DateTo:          params.Get(KeyDateTo),
		CustomerID:      params.Get(KeyCustomer),
		HasCustomer:     parseLinked(params.Get(KeyLinked)),
	}
	if f.DateFrom == "" && f.DateTo == "" {
		if raw := params.Get(KeyRange); raw != "" {
			days, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || days <= 0 {
				days = DefaultRangeDays
			}
			f.DateFrom = today.AddDate(0, 0, -days).Format(DateLayout)
			f.DateTo = today.Format(DateLayout)
		}
	}
	return f
}

// QueryPatch writes the free-text query.
func QueryPatch(q string) Patch {
	return Patch{KeyQuery: strings.TrimSpace(q)}
}

// SortPatch writes the sort key.
func SortPatch(sort string) Patch {
	return Patch{KeySort: sort}
}

// SetPage writes an explicit page onto a copy of prev. Page 1 is the default
// and is stored as an absent key.
func SetPage(prev url.Values, page int) url.Values {
	next := make(url.Values, len(prev))
	for k, v := range prev {
		next[k] = append([]string(nil), v...)
	}
	if page <= 1 {
		next.Del(KeyPage)
	} else {
		next.Set(KeyPage, strconv.Itoa(page))
	}
	return next
}

// has_customer is stored as 1 or 0; anything else means unset.
func formatLinked(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "1"
	default:
		return "0"
	}
}

func parseLinked(raw string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil
	}
	return &v
}

func splitFacet(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func canonical(vals []string) []string {
	out := nonEmpty(vals)
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout)
	}
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
