package server

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/export"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
	"github.com/bobmcallan/feedpulse/internal/services/upload"
)

// feedbackPage is the list response. Error is set when the latest search
// failed and the previous page is being shown.
type feedbackPage struct {
	Items       []models.Feedback `json:"items"`
	Total       int               `json:"total"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	Pages       int               `json:"pages"`
	Query       string            `json:"query"`
	Sort        string            `json:"sort"`
	SortOptions []string          `json:"sort_options"`
	Filters     filters.Filters   `json:"filters"`
	FeedbackID  string            `json:"feedback_id,omitempty"`
	URL         string            `json:"url"`
	Starred     []string          `json:"starred"`
	Error       string            `json:"error,omitempty"`
}

type manualFeedbackBody struct {
	Text         string   `json:"text"`
	Source       string   `json:"source"`
	ProductArea  string   `json:"product_area"`
	CustomerName string   `json:"customer_name"`
	AuthorName   string   `json:"author_name"`
	AuthorEmail  string   `json:"author_email"`
	Rating       *float64 `json:"rating"`
	Date         string   `json:"date"`
}

// handleFeedbackRoot handles GET (search) and POST (manual entry) on /api/feedback.
func (s *Server) handleFeedbackRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFeedbackList(w, r)
	case http.MethodPost:
		s.handleFeedbackCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// feedbackStatePatch is one control change on the list. Fields left nil are
// untouched; Clear drops every param first.
type feedbackStatePatch struct {
	Clear   bool             `json:"clear"`
	Query   *string          `json:"query"`
	Sort    *string          `json:"sort"`
	Filters *filters.Filters `json:"filters"`
	Page    *int             `json:"page"`
}

// apply folds the patch into prev. Query, sort and filter writes reset the
// page; an explicit page is written last.
func (p feedbackStatePatch) apply(prev url.Values) url.Values {
	next := prev
	if p.Clear {
		next = url.Values{}
	}
	if p.Query != nil {
		next = filters.QueryPatch(*p.Query).Apply(next)
	}
	if p.Sort != nil {
		next = filters.SortPatch(*p.Sort).Apply(next)
	}
	if p.Filters != nil {
		next = filters.FiltersToQuery(*p.Filters).Apply(next)
	}
	if p.Page != nil {
		next = filters.SetPage(next, *p.Page)
	}
	return next
}

// handleFeedbackList mirrors the request URL into the session's list state
// and fetches it.
func (s *Server) handleFeedbackList(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(r.Context())
	query := r.URL.Query()
	params := sess.list.Update(func(url.Values) url.Values { return query })
	s.writeFeedbackPage(w, r, sess, params)
}

// handleFeedbackState reads (GET) or patches (PATCH) the session's list URL.
// A patch triggers one fetch of the resulting state.
func (s *Server) handleFeedbackState(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPatch) {
		return
	}
	sess := s.sessions.get(r.Context())
	if r.Method == http.MethodGet {
		WriteJSON(w, http.StatusOK, map[string]any{
			"url":     listURL(sess.list.Encode()),
			"version": sess.list.Version(),
		})
		return
	}

	var patch feedbackStatePatch
	if !DecodeJSON(w, r, &patch) {
		return
	}
	if patch.Sort != nil && *patch.Sort != "" && !models.ValidSearchSorts[*patch.Sort] {
		WriteError(w, http.StatusBadRequest, "sort must be one of relevance, date, sentiment")
		return
	}
	params := sess.list.Update(patch.apply)
	s.writeFeedbackPage(w, r, sess, params)
}

func listURL(encoded string) string {
	if encoded == "" {
		return "/feedback"
	}
	return "/feedback?" + encoded
}

func (s *Server) writeFeedbackPage(w http.ResponseWriter, r *http.Request, sess *session, params url.Values) {
	ctx := r.Context()
	st := filters.ParseFeedbackState(params, time.Now())

	snap := sess.fetcher.Fetch(ctx, st)
	if snap.State.Page != st.Page {
		// a scope change reset pagination
		params = sess.list.Update(func(prev url.Values) url.Values {
			return filters.SetPage(prev, snap.State.Page)
		})
	}
	st = snap.State
	if snap.Err != nil && errors.Is(snap.Err, client.ErrUnauthorized) {
		s.writeServiceError(w, r, snap.Err)
		return
	}

	starred, err := sess.starred.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read starred feedback")
	}
	if starred == nil {
		starred = []string{}
	}

	page := feedbackPage{
		Items:       snap.Items,
		Total:       snap.Total,
		Page:        snap.Page,
		PageSize:    snap.PageSize,
		Pages:       snap.Pages,
		Query:       st.Query,
		Sort:        st.Sort,
		SortOptions: filters.SortOptions(st.Query),
		Filters:     st.Filters,
		FeedbackID:  st.FeedbackID,
		URL:         listURL(params.Encode()),
		Starred:     starred,
	}
	if page.Items == nil {
		page.Items = []models.Feedback{}
	}
	if snap.Err != nil {
		page.Error = "Search failed: " + snap.Err.Error()
	}
	WriteJSON(w, http.StatusOK, page)
}

func (s *Server) handleFeedbackCreate(w http.ResponseWriter, r *http.Request) {
	var body manualFeedbackBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	ctx := r.Context()
	in := upload.ManualFeedback{
		Text:         body.Text,
		Source:       body.Source,
		ProductArea:  body.ProductArea,
		CustomerName: body.CustomerName,
		AuthorName:   body.AuthorName,
		AuthorEmail:  body.AuthorEmail,
		Rating:       body.Rating,
		Date:         body.Date,
	}
	f, err := s.app.Manual.AddFeedback(ctx, in, time.Now().UTC().Format(filters.DateLayout))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.sessions.get(ctx).fetcher.Invalidate()
	WriteJSON(w, http.StatusCreated, f)
}

// routeFeedback dispatches /api/feedback/{id}, /api/feedback/{id}/similar,
// /api/feedback/state and /api/feedback/export.
func (s *Server) routeFeedback(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/feedback/")
	if len(parts) == 0 {
		s.handleFeedbackRoot(w, r)
		return
	}
	if len(parts) == 1 && parts[0] == "state" {
		s.handleFeedbackState(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	switch {
	case len(parts) == 1 && parts[0] == "export":
		s.handleFeedbackExport(w, r)
	case len(parts) == 1:
		s.handleFeedbackGet(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "similar":
		s.handleFeedbackSimilar(w, r, parts[0])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleFeedbackGet(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	f, err := s.app.Client.GetFeedback(ctx, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	starred, _ := s.sessions.get(ctx).starred.Contains(ctx, id)
	WriteJSON(w, http.StatusOK, map[string]any{
		"feedback":    f,
		"source":      models.SourceLabel(f.Source),
		"starred":     starred,
		"chat_prompt": chat.FeedbackPrompt(f.Text),
	})
}

func (s *Server) handleFeedbackSimilar(w http.ResponseWriter, r *http.Request, id string) {
	items, err := s.app.Client.SimilarFeedback(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleFeedbackExport writes the current result page as a workbook.
func (s *Server) handleFeedbackExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := filters.ParseFeedbackState(r.URL.Query(), time.Now())
	resp, err := s.app.Client.SearchFeedback(ctx, st.Request(s.app.Config.Search.GetPageSize()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	data, err := export.Feedback(resp.Data)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteBytes(w, export.ContentType, "feedback.xlsx", data)
}
