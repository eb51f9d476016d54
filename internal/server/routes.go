package server

import (
	"net/http"
)

// registerRoutes sets up all BFF routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.HandleFunc("/api/navigate", s.handleNavigate)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// Auth
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/signup", s.handleAuthSignup)
	mux.HandleFunc("/api/auth/me", s.requireAuth(s.handleAuthMe))
	mux.HandleFunc("/api/auth/logout", s.handleAuthLogout)

	// Feedback
	mux.HandleFunc("/api/feedback/", s.requireAuth(s.routeFeedback))
	mux.HandleFunc("/api/feedback", s.requireAuth(s.handleFeedbackRoot))

	// Customers
	mux.HandleFunc("/api/customers/search", s.requireAuth(s.handleCustomerSearch))
	mux.HandleFunc("/api/customers/autocomplete", s.requireAuth(s.handleCustomerAutocomplete))
	mux.HandleFunc("/api/customers/", s.requireAuth(s.routeCustomers))
	mux.HandleFunc("/api/customers", s.requireAuth(s.handleCustomersRoot))

	// Dashboard
	mux.HandleFunc("/api/dashboard/widgets", s.requireAuth(s.handleDashboardWidgets))
	mux.HandleFunc("/api/dashboard/status", s.requireAuth(s.handleDashboardStatus))
	mux.HandleFunc("/api/dashboard/charts/", s.requireAuth(s.handleDashboardChart))
	mux.HandleFunc("/api/dashboard/slices/", s.requireAuth(s.handleDashboardSlice))
	mux.HandleFunc("/api/dashboard", s.requireAuth(s.handleDashboard))

	// Chat
	mux.HandleFunc("/api/chat/open", s.requireAuth(s.handleChatOpen))
	mux.HandleFunc("/api/chat/close", s.requireAuth(s.handleChatClose))
	mux.HandleFunc("/api/chat/new", s.requireAuth(s.handleChatNew))
	mux.HandleFunc("/api/chat/pending", s.requireAuth(s.handleChatPending))
	mux.HandleFunc("/api/chat/conversations/", s.requireAuth(s.handleChatConversationLoad))
	mux.HandleFunc("/api/chat/conversations", s.requireAuth(s.handleChatConversations))
	mux.HandleFunc("/api/chat", s.requireAuth(s.handleChat))

	// Client state
	mux.HandleFunc("/api/starred/", s.requireAuth(s.handleStarredItem))
	mux.HandleFunc("/api/starred", s.requireAuth(s.handleStarred))
	mux.HandleFunc("/api/theme/toggle", s.handleThemeToggle)
	mux.HandleFunc("/api/theme", s.handleTheme)

	// Uploads
	mux.HandleFunc("/api/uploads/", s.requireAuth(s.routeUploads))
	mux.HandleFunc("/api/uploads", s.requireAuth(s.handleUploadHistory))

	// Specs
	mux.HandleFunc("/api/specs/", s.requireAuth(s.routeSpecs))
	mux.HandleFunc("/api/specs", s.requireAuth(s.handleSpecsRoot))

	// Onboarding
	mux.HandleFunc("/api/onboarding/guard", s.handleOnboardingGuard)
	mux.HandleFunc("/api/onboarding/options", s.requireAuth(s.handleOnboardingOptions))
	mux.HandleFunc("/api/onboarding/context", s.requireAuth(s.handleOnboardingContext))
	mux.HandleFunc("/api/onboarding/complete", s.requireAuth(s.handleOnboardingComplete))
	mux.HandleFunc("/api/onboarding/wizard/", s.requireAuth(s.handleOnboardingSection))
	mux.HandleFunc("/api/onboarding/wizard", s.requireAuth(s.handleOnboardingWizard))
	mux.HandleFunc("/api/onboarding", s.requireAuth(s.handleOnboardingStatus))
}
