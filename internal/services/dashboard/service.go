// Package dashboard composes the analytics view: the slice fan-out, the
// recent feedback list, widget visibility and the external logs link.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/analytics"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

const (
	DefaultTopLimit    = 5
	DefaultRecentLimit = 10
)

// Recent is the recent feedback widget. It loads independently of the slices.
type Recent struct {
	Rows  []widgets.RecentRow `json:"rows"`
	Error string              `json:"error,omitempty"`
}

// View is everything the dashboard renders for one period.
type View struct {
	*analytics.Dashboard
	Cards          []widgets.Card      `json:"cards,omitempty"`
	Issues         []widgets.IssueRow  `json:"issues,omitempty"`
	AtRiskRows     []widgets.AtRiskRow `json:"at_risk_rows,omitempty"`
	Recent         Recent              `json:"recent"`
	VisibleWidgets []string            `json:"visible_widgets"`
	KibanaURL      string              `json:"kibana_url,omitempty"`
	Links          map[string][]Link   `json:"links,omitempty"`
}

// Link is one click-to-filter target on a chart.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Service loads dashboard views for one session.
type Service struct {
	loader      *analytics.Loader
	search      interfaces.SearchAPI
	prefs       interfaces.PreferencesAPI
	logger      *common.Logger
	recentLimit int
	now         func() time.Time
}

// NewService creates a dashboard service. Non-positive limits use the defaults.
func NewService(api interfaces.AnalyticsAPI, search interfaces.SearchAPI, prefs interfaces.PreferencesAPI, cfg common.DashboardConfig, logger *common.Logger) *Service {
	top := cfg.TopLimit
	if top <= 0 {
		top = DefaultTopLimit
	}
	recent := cfg.RecentLimit
	if recent <= 0 {
		recent = DefaultRecentLimit
	}
	return &Service{
		loader:      analytics.NewLoader(api, logger, top),
		search:      search,
		prefs:       prefs,
		logger:      logger,
		recentLimit: recent,
		now:         time.Now,
	}
}

// Loader exposes the fan-out, e.g. to attach a metrics observer.
func (s *Service) Loader() *analytics.Loader {
	return s.loader
}

// Resolve turns a period selection into dates relative to today.
func (s *Service) Resolve(period, from, to string) filters.Period {
	return filters.ResolvePeriod(period, from, to, s.now())
}

// Load runs the fan-out, the recent list, the preferences read and the config
// read concurrently. Only the slices are required; the rest degrade quietly.
func (s *Service) Load(ctx context.Context, p filters.Period) *View {
	var (
		dash    *analytics.Dashboard
		recent  Recent
		visible []string
		kibana  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recent = s.Recent(gctx, p)
		return ctx.Err()
	})
	g.Go(func() error {
		visible = s.Widgets(gctx)
		return ctx.Err()
	})
	g.Go(func() error {
		kibana = s.KibanaURL(gctx)
		return ctx.Err()
	})
	dash = s.loader.Load(ctx, p, nil)
	if err := g.Wait(); err != nil {
		s.logger.Debug().Err(err).Msg("Dashboard load cancelled")
	}

	v := &View{
		Dashboard:      dash,
		Recent:         recent,
		VisibleWidgets: visible,
		KibanaURL:      kibana,
		Links:          Links(dash),
	}
	if sum := dash.Summary(); sum != nil {
		v.Cards = widgets.SummaryCards(sum)
	}
	v.Issues = widgets.TopIssueRows(dash.TopIssues())
	v.AtRiskRows = widgets.AtRiskRows(dash.AtRisk())
	return v
}

// Recent fetches the newest feedback inside the period.
func (s *Service) Recent(ctx context.Context, p filters.Period) Recent {
	resp, err := s.search.SearchFeedback(ctx, models.SearchRequest{
		Filters:  p.Filters().ToAPI(),
		SortBy:   models.SortDate,
		Page:     1,
		PageSize: s.recentLimit,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Recent feedback failed")
		return Recent{Rows: []widgets.RecentRow{}, Error: err.Error()}
	}
	return Recent{Rows: widgets.RecentRows(resp.Data, s.now())}
}

// Widgets returns the saved visibility set, or every widget when nothing is
// saved or the read fails.
func (s *Service) Widgets(ctx context.Context) []string {
	prefs, err := s.prefs.GetPreferences(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Preferences unavailable, showing all widgets")
		return models.DefaultWidgets()
	}
	return widgets.VisibleWidgets(prefs)
}

// SaveWidgets persists a visibility set. Unknown ids are rejected.
func (s *Service) SaveWidgets(ctx context.Context, ids []string) ([]string, error) {
	for _, id := range ids {
		if !models.ValidWidget(id) {
			return nil, fmt.Errorf("%w: %s", widgets.ErrInvalidWidget, id)
		}
	}
	prefs := models.UserPreferences{DashboardPreferences: models.DashboardPreferences{VisibleWidgets: ids}}
	saved, err := s.prefs.PutPreferences(ctx, prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to save widget preferences: %w", err)
	}
	return widgets.VisibleWidgets(saved), nil
}

// ToggleWidget flips one widget and saves the result.
func (s *Service) ToggleWidget(ctx context.Context, id string) ([]string, error) {
	next, err := widgets.ToggleWidget(s.Widgets(ctx), id)
	if err != nil {
		return nil, err
	}
	return s.SaveWidgets(ctx, next)
}

// KibanaURL returns the configured logs link, or "".
func (s *Service) KibanaURL(ctx context.Context) string {
	cfg, err := s.prefs.AppConfig(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("App config unavailable")
		return ""
	}
	return cfg.KibanaURL
}

// Links lists the click-to-filter targets of every loaded chart.
func Links(d *analytics.Dashboard) map[string][]Link {
	out := make(map[string][]Link)
	if v := d.Volume(); v != nil {
		for _, p := range v.Periods {
			out[models.SliceVolume] = append(out[models.SliceVolume], Link{Label: p.Date, Href: widgets.DayLink(p.Date)})
		}
	}
	if b := d.Sentiment(); b != nil {
		for _, item := range b.Breakdown {
			out[models.SliceSentiment] = append(out[models.SliceSentiment], Link{Label: item.Sentiment, Href: widgets.SentimentLink(item.Sentiment)})
		}
	}
	if b := d.Sources(); b != nil {
		for _, item := range b.Breakdown {
			out[models.SliceSources] = append(out[models.SliceSources], Link{Label: models.SourceLabel(item.Source), Href: widgets.SourceLink(item.Source)})
		}
	}
	if a := d.Areas(); a != nil {
		for _, item := range a.Areas {
			out[models.SliceAreas] = append(out[models.SliceAreas], Link{Label: item.ProductArea, Href: widgets.AreaLink(item.ProductArea)})
		}
	}
	if sg := d.Segments(); sg != nil {
		for _, item := range sg.Segments {
			out[models.SliceSegments] = append(out[models.SliceSegments], Link{Label: item.Segment, Href: widgets.SegmentLink(item.Segment)})
		}
	}
	return out
}

// Chart renders one loaded slice. The slice must have loaded without error.
func Chart(d *analytics.Dashboard, slice, format string) ([]byte, error) {
	if s, ok := d.Slices[slice]; ok && s.Err != nil {
		return nil, fmt.Errorf("%s: %w", slice, s.Err)
	}
	switch slice {
	case models.SliceVolume:
		return widgets.RenderVolume(d.Volume(), format)
	case models.SliceSentiment:
		return widgets.RenderSentiment(d.Sentiment(), format)
	case models.SliceSources:
		return widgets.RenderSources(d.Sources(), format)
	case models.SliceAreas:
		return widgets.RenderAreas(d.Areas(), format)
	case models.SliceSegments:
		return widgets.RenderSegments(d.Segments(), format)
	}
	return nil, fmt.Errorf("%w: %s has no chart", analytics.ErrUnknownSlice, slice)
}
