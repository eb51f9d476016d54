// Package search keeps one feedback result page in step with the list state.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// ErrorPolicy decides what a failed fetch does to the displayed list.
type ErrorPolicy int

const (
	// KeepPrevious leaves the last good list in place and records the error.
	KeepPrevious ErrorPolicy = iota
	// ClearOnError empties the list and records the error.
	ClearOnError
)

// Snapshot is the displayed state of the list.
type Snapshot struct {
	Items    []models.Feedback     `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Pages    int                   `json:"pages"`
	State    filters.FeedbackState `json:"state"`
	Loading  bool                  `json:"loading"`
	Err      error                 `json:"-"`
	Seq      uint64                `json:"seq"`
}

// Fetcher issues at most one search per distinct (query, filters, sort, page)
// and only applies the response of the latest request.
type Fetcher struct {
	api      interfaces.SearchAPI
	logger   *common.Logger
	pageSize int
	policy   ErrorPolicy

	mu        sync.Mutex
	seq       uint64
	lastKey   string
	lastScope string
	hasScope  bool
	cancel    context.CancelFunc
	snapshot  Snapshot
	hasResult bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithErrorPolicy sets the failure behaviour. The default is KeepPrevious.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(f *Fetcher) { f.policy = p }
}

// NewFetcher creates a fetcher. A non-positive page size uses 20.
func NewFetcher(api interfaces.SearchAPI, logger *common.Logger, pageSize int, opts ...Option) *Fetcher {
	if pageSize <= 0 {
		pageSize = 20
	}
	f := &Fetcher{
		api:      api,
		logger:   logger,
		pageSize: pageSize,
		snapshot: Snapshot{Items: []models.Feedback{}, Page: 1, PageSize: pageSize, Pages: 1},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewFetcherFromConfig builds a fetcher from the [search] config section.
func NewFetcherFromConfig(api interfaces.SearchAPI, logger *common.Logger, cfg common.SearchConfig) *Fetcher {
	policy := KeepPrevious
	if cfg.ClearOnError() {
		policy = ClearOnError
	}
	return NewFetcher(api, logger, cfg.GetPageSize(), WithErrorPolicy(policy))
}

// requestKey is the memo key. The page is part of it, the scope key is not.
func requestKey(st filters.FeedbackState) string {
	return fmt.Sprintf("%s|%d", scopeKey(st), st.Page)
}

// scopeKey covers everything that resets pagination when it changes.
func scopeKey(st filters.FeedbackState) string {
	return st.Query + "|" + st.Sort + "|" + st.Filters.Key()
}

// normalizeLocked applies the pagination reset: when query, sort or filters
// differ from the previous request, the page becomes 1.
func (f *Fetcher) normalizeLocked(st filters.FeedbackState) filters.FeedbackState {
	if st.Page < 1 {
		st.Page = 1
	}
	if f.hasScope && scopeKey(st) != f.lastScope {
		st.Page = 1
	}
	return st
}

// Fetch brings the list in line with st. An unchanged state returns the
// current snapshot without a request. A superseded response is discarded and
// the latest snapshot is returned instead.
func (f *Fetcher) Fetch(ctx context.Context, st filters.FeedbackState) Snapshot {
	f.mu.Lock()
	st = f.normalizeLocked(st)
	key := requestKey(st)
	if key == f.lastKey && (f.hasResult || f.snapshot.Loading) && f.snapshot.Err == nil {
		snap := f.snapshot
		f.mu.Unlock()
		return snap
	}

	if f.cancel != nil {
		f.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.seq++
	seq := f.seq
	f.lastKey = key
	f.lastScope = scopeKey(st)
	f.hasScope = true
	f.snapshot.Loading = true
	f.snapshot.State = st
	f.mu.Unlock()

	resp, err := f.api.SearchFeedback(reqCtx, st.Request(f.pageSize))
	cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.seq {
		f.logger.Debug().Uint64("seq", seq).Uint64("latest", f.seq).Msg("Discarding stale search response")
		return f.snapshot
	}
	f.cancel = nil
	f.snapshot.Loading = false
	f.snapshot.Seq = seq

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			f.lastKey = ""
		}
		f.logger.Warn().Err(err).Str("query", st.Query).Int("page", st.Page).Msg("Feedback search failed")
		f.snapshot.Err = err
		if f.policy == ClearOnError {
			f.snapshot.Items = []models.Feedback{}
			f.snapshot.Total = 0
			f.snapshot.Pages = 1
			f.hasResult = false
		}
		return f.snapshot
	}

	f.snapshot = Snapshot{
		Items:    resp.Data,
		Total:    resp.Pagination.Total,
		Page:     st.Page,
		PageSize: f.pageSize,
		Pages:    models.Pagination{Page: st.Page, PageSize: f.pageSize, Total: resp.Pagination.Total}.Pages(),
		State:    st,
		Seq:      seq,
	}
	f.hasResult = true
	return f.snapshot
}

// Snapshot returns the displayed state.
func (f *Fetcher) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

// Invalidate forces the next Fetch to hit the API even for an unchanged state.
func (f *Fetcher) Invalidate() {
	f.mu.Lock()
	f.lastKey = ""
	f.mu.Unlock()
}

// Close cancels any in-flight request.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.seq++
}
