// Package customers serves the customer list, the customer profile and the
// debounced customer autocomplete.
package customers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

// ProfileFeedbackPageSize is the page size of the profile's feedback list.
const ProfileFeedbackPageSize = 20

// Row is one customer in the list view.
type Row struct {
	models.Customer
	ARRText     string `json:"arr_text"`
	Health      string `json:"health"`
	RenewalSoon bool   `json:"renewal_soon"`
	Link        string `json:"link"`
}

// Page is one page of the customer list.
type Page struct {
	Items    []Row                 `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Pages    int                   `json:"pages"`
	State    filters.CustomerState `json:"state"`
}

// Profile is the customer detail bundle. A failed trend degrades to empty.
type Profile struct {
	Customer      *models.Customer                   `json:"customer"`
	ARRText       string                             `json:"arr_text"`
	Health        string                             `json:"health"`
	DaysToRenewal *int                               `json:"days_to_renewal,omitempty"`
	RenewalSoon   bool                               `json:"renewal_soon"`
	Feedback      *models.PagedList[models.Feedback] `json:"feedback"`
	Trend         *models.SentimentTrend             `json:"trend"`
	FeedbackLink  string                             `json:"feedback_link"`
	ChatPrompt    string                             `json:"chat_prompt"`
}

// Service wraps the customers API.
type Service struct {
	api      interfaces.CustomersAPI
	logger   *common.Logger
	pageSize int
	now      func() time.Time
}

// NewService creates a customers service. A non-positive page size uses 20.
func NewService(api interfaces.CustomersAPI, logger *common.Logger, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Service{api: api, logger: logger, pageSize: pageSize, now: time.Now}
}

// List loads the page described by st.
func (s *Service) List(ctx context.Context, st filters.CustomerState) (*Page, error) {
	list, err := s.api.ListCustomers(ctx, st.Params(s.pageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	today := s.now()
	rows := make([]Row, 0, len(list.Data))
	for _, c := range list.Data {
		rows = append(rows, Row{
			Customer:    c,
			ARRText:     widgets.FormatARR(c.ARR),
			Health:      filters.HealthBand(c.HealthScore),
			RenewalSoon: filters.RenewalSoon(c.RenewalDate, today),
			Link:        widgets.CustomerLink(c.ID),
		})
	}
	return &Page{
		Items:    rows,
		Total:    list.Pagination.Total,
		Page:     st.Page,
		PageSize: s.pageSize,
		Pages:    models.Pagination{Page: st.Page, PageSize: s.pageSize, Total: list.Pagination.Total}.Pages(),
		State:    st,
	}, nil
}

// Profile loads the customer, one page of their feedback and their sentiment
// trend concurrently.
func (s *Service) Profile(ctx context.Context, id string, page int) (*Profile, error) {
	if page < 1 {
		page = 1
	}
	var (
		customer *models.Customer
		feedback *models.PagedList[models.Feedback]
		trend    *models.SentimentTrend
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.api.GetCustomer(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to get customer %s: %w", id, err)
		}
		customer = c
		return nil
	})
	g.Go(func() error {
		fb, err := s.api.CustomerFeedback(gctx, id, page, ProfileFeedbackPageSize)
		if err != nil {
			return fmt.Errorf("failed to get feedback for customer %s: %w", id, err)
		}
		feedback = fb
		return nil
	})
	g.Go(func() error {
		t, err := s.api.CustomerSentimentTrend(gctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("customer_id", id).Msg("Sentiment trend unavailable")
			t = &models.SentimentTrend{}
		}
		trend = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Profile{
		Customer:      customer,
		ARRText:       widgets.FormatARR(customer.ARR),
		Health:        filters.HealthBand(customer.HealthScore),
		DaysToRenewal: filters.DaysToRenewal(customer.RenewalDate, s.now()),
		RenewalSoon:   filters.RenewalSoon(customer.RenewalDate, s.now()),
		Feedback:      feedback,
		Trend:         trend,
		FeedbackLink:  widgets.CustomerFeedbackLink(customer.ID),
		ChatPrompt:    chat.CustomerPrompt(customer.CompanyName),
	}, nil
}

// Trend returns the sentiment trend alone, for charting.
func (s *Service) Trend(ctx context.Context, id string) (*models.SentimentTrend, error) {
	t, err := s.api.CustomerSentimentTrend(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sentiment trend for %s: %w", id, err)
	}
	return t, nil
}

// Create adds one customer by hand.
func (s *Service) Create(ctx context.Context, req models.ManualCustomerRequest) (*models.Customer, error) {
	c, err := s.api.CreateCustomer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}
