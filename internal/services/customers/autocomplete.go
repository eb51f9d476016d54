package customers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// AutocompleteDelay is the quiet period before a customer lookup fires.
const AutocompleteDelay = 200 * time.Millisecond

// Autocomplete looks customers up as the user types. The input is recorded
// immediately; the lookup fires after the quiet period and a newer keystroke
// cancels both the pending lookup and any in-flight one.
type Autocomplete struct {
	api      interfaces.CustomersAPI
	logger   *common.Logger
	debounce *common.Debouncer
	onResult func([]models.CustomerMatch)

	mu      sync.Mutex
	input   string
	cancel  context.CancelFunc
	options []models.CustomerMatch
}

// NewAutocomplete creates an autocomplete. onResult, when set, receives every
// applied option list.
func NewAutocomplete(api interfaces.CustomersAPI, logger *common.Logger, delay time.Duration, onResult func([]models.CustomerMatch)) *Autocomplete {
	if delay <= 0 {
		delay = AutocompleteDelay
	}
	return &Autocomplete{
		api:      api,
		logger:   logger,
		debounce: common.NewDebouncer(delay),
		onResult: onResult,
	}
}

// Type records new input. Blank input clears the options without a lookup.
func (a *Autocomplete) Type(ctx context.Context, input string) {
	a.mu.Lock()
	a.input = input
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()

	q := strings.TrimSpace(input)
	if q == "" {
		a.debounce.Cancel()
		a.apply(input, []models.CustomerMatch{})
		return
	}
	a.debounce.Trigger(func() { a.lookup(ctx, input, q) })
}

func (a *Autocomplete) lookup(ctx context.Context, input, q string) {
	reqCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	if a.input != input {
		a.mu.Unlock()
		cancel()
		return
	}
	a.cancel = cancel
	a.mu.Unlock()
	defer cancel()

	matches, err := a.api.SearchCustomers(reqCtx, q)
	if err != nil {
		if reqCtx.Err() == nil {
			a.logger.Debug().Err(err).Str("query", q).Msg("Customer lookup failed")
		}
		return
	}
	if matches == nil {
		matches = []models.CustomerMatch{}
	}
	a.apply(input, matches)
}

func (a *Autocomplete) apply(input string, matches []models.CustomerMatch) {
	a.mu.Lock()
	if a.input != input {
		a.mu.Unlock()
		return
	}
	a.options = matches
	fn := a.onResult
	a.mu.Unlock()
	if fn != nil {
		fn(matches)
	}
}

// Input returns the latest typed value.
func (a *Autocomplete) Input() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.input
}

// Pending reports whether a lookup is waiting out the quiet period.
func (a *Autocomplete) Pending() bool {
	return a.debounce.Pending()
}

// Options returns the last applied matches.
func (a *Autocomplete) Options() []models.CustomerMatch {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.options
}

// Close cancels pending and in-flight lookups.
func (a *Autocomplete) Close() {
	a.debounce.Cancel()
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()
}
