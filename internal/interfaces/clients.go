// Package interfaces defines service contracts for feedpulse
package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// TokenProvider supplies and clears the bearer token for outgoing requests.
type TokenProvider interface {
	Token(ctx context.Context) string
	ClearToken(ctx context.Context) error
}

// AuthAPI covers /auth.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// SearchAPI covers feedback search.
type SearchAPI interface {
	SearchFeedback(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

// FeedbackAPI covers /feedback records.
type FeedbackAPI interface {
	ListFeedback(ctx context.Context, params models.FeedbackListParams) (*models.PagedList[models.Feedback], error)
	FeedbackCount(ctx context.Context) (int, error)
	GetFeedback(ctx context.Context, id string) (*models.Feedback, error)
	SimilarFeedback(ctx context.Context, id string) ([]models.Feedback, error)
	CreateFeedback(ctx context.Context, req models.ManualFeedbackRequest) (*models.Feedback, error)
}

// CustomersAPI covers /customers.
type CustomersAPI interface {
	ListCustomers(ctx context.Context, params models.CustomerListParams) (*models.PagedList[models.Customer], error)
	SearchCustomers(ctx context.Context, q string) ([]models.CustomerMatch, error)
	CustomerCount(ctx context.Context) (int, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	CustomerFeedback(ctx context.Context, id string, page, pageSize int) (*models.PagedList[models.Feedback], error)
	CustomerSentimentTrend(ctx context.Context, id string) (*models.SentimentTrend, error)
	CreateCustomer(ctx context.Context, req models.ManualCustomerRequest) (*models.Customer, error)
}

// AnalyticsAPI covers the eight /analytics slices.
type AnalyticsAPI interface {
	Summary(ctx context.Context, q models.AnalyticsQuery) (*models.Summary, error)
	Volume(ctx context.Context, q models.AnalyticsQuery) (*models.Volume, error)
	Sentiment(ctx context.Context, q models.AnalyticsQuery) (*models.SentimentBreakdown, error)
	TopIssues(ctx context.Context, q models.AnalyticsQuery) (*models.TopIssues, error)
	Areas(ctx context.Context, q models.AnalyticsQuery) (*models.AreaBreakdown, error)
	AtRisk(ctx context.Context, q models.AnalyticsQuery) (*models.AtRisk, error)
	Sources(ctx context.Context, q models.AnalyticsQuery) (*models.SourceBreakdown, error)
	Segments(ctx context.Context, q models.AnalyticsQuery) (*models.SegmentBreakdown, error)
}

// PreferencesAPI covers /user/preferences and /config.
type PreferencesAPI interface {
	GetPreferences(ctx context.Context) (*models.UserPreferences, error)
	PutPreferences(ctx context.Context, prefs models.UserPreferences) (*models.UserPreferences, error)
	AppConfig(ctx context.Context) (*models.AppConfig, error)
}

// UploadAPI covers the three-step CSV protocol for one upload kind.
type UploadAPI interface {
	UploadCSV(ctx context.Context, kind, filename string, r io.Reader) (*models.UploadInit, error)
	ConfirmUpload(ctx context.Context, kind, uploadID string, body models.UploadConfirm) (*models.UploadConfirmed, error)
	ImportUpload(ctx context.Context, kind, uploadID string) (*models.UploadResult, error)
}

// UploadsAPI covers the upload history.
type UploadsAPI interface {
	ListUploads(ctx context.Context) ([]models.UploadRecord, error)
	GetUpload(ctx context.Context, id string) (*models.UploadRecord, error)
	DeleteUpload(ctx context.Context, id string) error
}

// SpecsAPI covers the spec lifecycle.
type SpecsAPI interface {
	GenerateSpec(ctx context.Context, req models.GenerateSpecRequest) (*models.GenerateSpecResponse, error)
	ListSpecs(ctx context.Context, params models.SpecListParams) (*models.PagedList[models.Spec], error)
	GetSpec(ctx context.Context, id string) (*models.Spec, error)
	UpdateSpec(ctx context.Context, id string, req models.UpdateSpecRequest) (*models.Spec, error)
	DeleteSpec(ctx context.Context, id string) error
	RegenerateSpec(ctx context.Context, id string) (*models.Spec, error)
}

// AgentAPI covers /agent.
type AgentAPI interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	Conversations(ctx context.Context) ([]models.Conversation, error)
	Conversation(ctx context.Context, id string) (*models.Conversation, error)
}

// ProductAPI covers /product onboarding and context.
type ProductAPI interface {
	OnboardingStatus(ctx context.Context) (*models.OnboardingStatus, error)
	CompleteOnboarding(ctx context.Context) (bool, error)
	Wizard(ctx context.Context) (*models.WizardAll, error)
	WizardSection(ctx context.Context, section string) (*models.WizardSection, error)
	PutWizardSection(ctx context.Context, section string, data any) error
	DeleteWizardSection(ctx context.Context, section string) error
	ProductContext(ctx context.Context) (*models.ProductContext, error)
}
