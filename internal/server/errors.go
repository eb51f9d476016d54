package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/services/analytics"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
	"github.com/bobmcallan/feedpulse/internal/services/onboarding"
	"github.com/bobmcallan/feedpulse/internal/services/specs"
	"github.com/bobmcallan/feedpulse/internal/services/upload"
	"github.com/bobmcallan/feedpulse/internal/storage"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

var badRequest = []error{
	client.ErrValidation,
	upload.ErrNotCSV,
	upload.ErrUnknownKind,
	specs.ErrUnknownSection,
	specs.ErrEmptyTopic,
	onboarding.ErrUnknownSection,
	chat.ErrEmptyMessage,
	widgets.ErrInvalidWidget,
	widgets.ErrUnknownWidget,
	storage.ErrInvalidTheme,
	analytics.ErrUnknownSlice,
}

// statusFor maps a service error to the response status. Upstream 4xx
// statuses pass through; upstream 5xx and transport failures become 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, specs.ErrNotDraft), errors.Is(err, chat.ErrSendInFlight), errors.Is(err, chat.ErrNotOpen):
		return http.StatusConflict
	case errors.Is(err, upload.ErrMappingRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, widgets.ErrNoData), errors.Is(err, analytics.ErrNotLoaded):
		return http.StatusNotFound
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if code := client.StatusCode(err); code != 0 {
		if code >= 400 && code < 500 {
			return code
		}
		return http.StatusBadGateway
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with the mapped status. A 401 ends the session
// and tells the browser where to go next.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	switch status {
	case http.StatusUnauthorized:
		s.endSession(w, r)
		resp.Error = "Session expired"
		resp.Code = "unauthorized"
		resp.Redirect = s.loginPath()
	case http.StatusBadGateway:
		resp.Code = "upstream_unavailable"
	case http.StatusInternalServerError:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		resp.Error = "Internal server error"
	}
	WriteJSON(w, status, resp)
}

func (s *Server) loginPath() string {
	if p := s.app.Config.API.LoginPath; p != "" {
		return p
	}
	return client.DefaultLoginPath
}

// requireAuth rejects tokenless requests before any upstream call is made.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requestToken(r) == "" {
			WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:    "Authentication required",
				Code:     "unauthorized",
				Redirect: s.loginPath(),
			})
			return
		}
		next(w, r)
	}
}
