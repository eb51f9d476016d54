package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/export"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

// handleCustomersRoot handles GET (list) and POST (manual entry) on /api/customers.
func (s *Server) handleCustomersRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		page, err := s.app.Customers.List(r.Context(), filters.ParseCustomerState(r.URL.Query()))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, page)
	case http.MethodPost:
		var req models.ManualCustomerRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		c, err := s.app.Manual.AddCustomer(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, c)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleCustomerSearch handles GET /api/customers/search?q=. Blank input
// returns no options without calling the API.
func (s *Server) handleCustomerSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"options": []models.CustomerMatch{}})
		return
	}
	matches, err := s.app.Client.SearchCustomers(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if matches == nil {
		matches = []models.CustomerMatch{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"options": matches})
}

// handleCustomerAutocomplete drives the session's debounced customer picker.
// POST {"input"} records a keystroke and returns at once; the lookup fires
// after the quiet period. GET reads the current input and options.
func (s *Server) handleCustomerAutocomplete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	picker := s.sessions.get(r.Context()).picker
	if r.Method == http.MethodPost {
		var body struct {
			Input string `json:"input"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		// the lookup outlives this request but keeps its token
		picker.Type(context.WithoutCancel(r.Context()), body.Input)
	}
	options := picker.Options()
	if options == nil {
		options = []models.CustomerMatch{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"input":   picker.Input(),
		"pending": picker.Pending(),
		"options": options,
	})
}

// routeCustomers dispatches /api/customers/{id}, /api/customers/{id}/trend.png
// and /api/customers/export.
func (s *Server) routeCustomers(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/customers/")
	if len(parts) == 0 {
		s.handleCustomersRoot(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	switch {
	case len(parts) == 1 && parts[0] == "export":
		s.handleCustomersExport(w, r)
	case len(parts) == 1:
		profile, err := s.app.Customers.Profile(r.Context(), parts[0], filters.ParsePage(r.URL.Query().Get(filters.KeyPage)))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, profile)
	case len(parts) == 2 && (parts[1] == "trend.png" || parts[1] == "trend.svg"):
		s.handleCustomerTrendChart(w, r, parts[0], strings.TrimPrefix(parts[1], "trend."))
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleCustomerTrendChart(w http.ResponseWriter, r *http.Request, id, format string) {
	trend, err := s.app.Customers.Trend(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	data, err := widgets.RenderSentimentTrend(trend, format)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteBytes(w, widgets.ContentType(format), "", data)
}

func (s *Server) handleCustomersExport(w http.ResponseWriter, r *http.Request) {
	page, err := s.app.Customers.List(r.Context(), filters.ParseCustomerState(r.URL.Query()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items := make([]models.Customer, 0, len(page.Items))
	for _, row := range page.Items {
		items = append(items, row.Customer)
	}
	data, err := export.Customers(items)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteBytes(w, export.ContentType, "customers.xlsx", data)
}
