package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// ManualFeedback is the single-item feedback form. Date is a calendar day;
// the item is stamped at noon UTC on that day.
type ManualFeedback struct {
	Text         string
	Source       string
	ProductArea  string
	CustomerName string
	AuthorName   string
	AuthorEmail  string
	Rating       *float64
	Date         string
}

// Request builds the API body, applying the default source and today's date.
func (m ManualFeedback) Request(today string) models.ManualFeedbackRequest {
	source := m.Source
	if source == "" {
		source = models.DefaultFeedbackSource
	}
	date := strings.TrimSpace(m.Date)
	if date == "" {
		date = today
	}
	return models.ManualFeedbackRequest{
		Text:         strings.TrimSpace(m.Text),
		Source:       source,
		ProductArea:  strings.TrimSpace(m.ProductArea),
		CustomerName: strings.TrimSpace(m.CustomerName),
		AuthorName:   strings.TrimSpace(m.AuthorName),
		AuthorEmail:  strings.TrimSpace(m.AuthorEmail),
		Rating:       m.Rating,
		CreatedAt:    date + models.ManualFeedbackTimeOfDay,
	}
}

// Manual creates single records.
type Manual struct {
	feedback  interfaces.FeedbackAPI
	customers interfaces.CustomersAPI
}

// NewManual creates the manual entry forms.
func NewManual(feedback interfaces.FeedbackAPI, customers interfaces.CustomersAPI) *Manual {
	return &Manual{feedback: feedback, customers: customers}
}

// AddFeedback creates one feedback item. today is used when no date is given.
func (m *Manual) AddFeedback(ctx context.Context, in ManualFeedback, today string) (*models.Feedback, error) {
	f, err := m.feedback.CreateFeedback(ctx, in.Request(today))
	if err != nil {
		return nil, fmt.Errorf("failed to add feedback: %w", err)
	}
	return f, nil
}

// AddCustomer creates one customer record.
func (m *Manual) AddCustomer(ctx context.Context, req models.ManualCustomerRequest) (*models.Customer, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	c, err := m.customers.CreateCustomer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add customer: %w", err)
	}
	return c, nil
}
