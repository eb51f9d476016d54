// Package analytics fans a period selection out to the eight analytics slices.
package analytics

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// Slice is one independently loaded result. Data is nil when Err is set.
type Slice struct {
	Data    any           `json:"data"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"-"`
	Err     error         `json:"-"`
}

// Dashboard holds every slice for one period.
type Dashboard struct {
	Period   filters.Period    `json:"period"`
	Slices   map[string]*Slice `json:"slices"`
	LoadedAt time.Time         `json:"loaded_at"`
}

// Failed lists the slices that errored, in dashboard order.
func (d *Dashboard) Failed() []string {
	var out []string
	for _, name := range models.AllSlices {
		if s, ok := d.Slices[name]; ok && s.Err != nil {
			out = append(out, name)
		}
	}
	return out
}

func sliceData[T any](d *Dashboard, name string) *T {
	if d == nil {
		return nil
	}
	s, ok := d.Slices[name]
	if !ok || s.Err != nil {
		return nil
	}
	v, _ := s.Data.(*T)
	return v
}

func (d *Dashboard) Summary() *models.Summary {
	return sliceData[models.Summary](d, models.SliceSummary)
}
func (d *Dashboard) Volume() *models.Volume { return sliceData[models.Volume](d, models.SliceVolume) }
func (d *Dashboard) Sentiment() *models.SentimentBreakdown {
	return sliceData[models.SentimentBreakdown](d, models.SliceSentiment)
}
func (d *Dashboard) TopIssues() *models.TopIssues {
	return sliceData[models.TopIssues](d, models.SliceTopIssues)
}
func (d *Dashboard) Areas() *models.AreaBreakdown {
	return sliceData[models.AreaBreakdown](d, models.SliceAreas)
}
func (d *Dashboard) AtRisk() *models.AtRisk { return sliceData[models.AtRisk](d, models.SliceAtRisk) }
func (d *Dashboard) Sources() *models.SourceBreakdown {
	return sliceData[models.SourceBreakdown](d, models.SliceSources)
}
func (d *Dashboard) Segments() *models.SegmentBreakdown {
	return sliceData[models.SegmentBreakdown](d, models.SliceSegments)
}

type fetchFunc func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error)

var fetchers = map[string]fetchFunc{
	models.SliceSummary: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.Summary(ctx, q)
	},
	models.SliceVolume: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.Volume(ctx, q)
	},
	models.SliceSentiment: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.Sentiment(ctx, q)
	},
	models.SliceTopIssues: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.TopIssues(ctx, q)
	},
	models.SliceAreas: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.Areas(ctx, q)
	},
	models.SliceAtRisk: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.AtRisk(ctx, q)
	},
	models.SliceSources: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.Sources(ctx, q)
	},
	models.SliceSegments: func(ctx context.Context, api interfaces.AnalyticsAPI, q models.AnalyticsQuery) (any, error) {
		return api.Segments(ctx, q)
	},
}

// SliceObserver is told about every slice fetch, for metrics.
type SliceObserver func(slice string, elapsed time.Duration, err error)

// Loader issues the fan-out. A failing slice only degrades itself. The
// loading gate is raised for the first load of a new period and not for
// single-slice refreshes.
type Loader struct {
	api     interfaces.AnalyticsAPI
	logger  *common.Logger
	limit   int
	observe SliceObserver

	mu        sync.Mutex
	seq       uint64
	periodKey string
	loading   bool
	current   *Dashboard
}

// NewLoader creates a loader. limit applies to top-issues and at-risk.
func NewLoader(api interfaces.AnalyticsAPI, logger *common.Logger, limit int) *Loader {
	return &Loader{api: api, logger: logger, limit: limit}
}

// SetObserver registers a per-slice callback.
func (l *Loader) SetObserver(fn SliceObserver) {
	l.mu.Lock()
	l.observe = fn
	l.mu.Unlock()
}

// Loading reports whether the first load for the current period is pending.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Current returns the last applied dashboard, or nil.
func (l *Loader) Current() *Dashboard {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

func (l *Loader) query(p filters.Period, areas []string) models.AnalyticsQuery {
	q := p.Query()
	q.Limit = l.limit
	q.Areas = areas
	return q
}

// Load fetches every slice concurrently and waits for all of them. areas
// narrows the volume slice. When a newer Load starts before this one
// finishes, or ctx is cancelled, this result is returned but not applied.
func (l *Loader) Load(ctx context.Context, p filters.Period, areas []string) *Dashboard {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	if p.Key() != l.periodKey || l.current == nil {
		l.loading = true
	}
	l.periodKey = p.Key()
	observe := l.observe
	l.mu.Unlock()

	q := l.query(p, areas)
	dash := &Dashboard{Period: p, Slices: make(map[string]*Slice, len(models.AllSlices))}
	results := make([]*Slice, len(models.AllSlices))

	// a slice failure stays in its Slice; only cancellation stops the group
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range models.AllSlices {
		g.Go(func() error {
			results[i] = l.fetch(gctx, name, q, observe)
			return ctx.Err()
		})
	}
	cancelled := g.Wait()

	for i, name := range models.AllSlices {
		dash.Slices[name] = results[i]
	}
	dash.LoadedAt = time.Now()

	if failed := dash.Failed(); len(failed) > 0 {
		l.logger.Warn().Strs("slices", failed).Str("period", p.Name).Msg("Analytics slices failed")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return dash
	}
	l.loading = false
	if cancelled != nil {
		l.logger.Debug().Err(cancelled).Str("period", p.Name).Msg("Analytics load cancelled")
		l.periodKey = ""
		if l.current != nil {
			l.periodKey = l.current.Period.Key()
		}
		return dash
	}
	l.current = dash
	return dash
}

// Refresh reloads one slice into the current dashboard without raising the
// loading gate.
func (l *Loader) Refresh(ctx context.Context, name string, areas []string) (*Slice, error) {
	if _, ok := fetchers[name]; !ok {
		return nil, ErrUnknownSlice
	}
	l.mu.Lock()
	cur := l.current
	observe := l.observe
	l.mu.Unlock()
	if cur == nil {
		return nil, ErrNotLoaded
	}

	s := l.fetch(ctx, name, l.query(cur.Period, areas), observe)

	l.mu.Lock()
	if l.current == cur {
		next := &Dashboard{Period: cur.Period, Slices: make(map[string]*Slice, len(cur.Slices)), LoadedAt: cur.LoadedAt}
		for k, v := range cur.Slices {
			next.Slices[k] = v
		}
		next.Slices[name] = s
		l.current = next
	}
	l.mu.Unlock()
	return s, nil
}

func (l *Loader) fetch(ctx context.Context, name string, q models.AnalyticsQuery, observe SliceObserver) *Slice {
	start := time.Now()
	data, err := fetchers[name](ctx, l.api, q)
	s := &Slice{Elapsed: time.Since(start)}
	if err != nil {
		s.Err = err
		s.Error = err.Error()
	} else {
		s.Data = data
	}
	if observe != nil {
		observe(name, s.Elapsed, err)
	}
	return s
}
