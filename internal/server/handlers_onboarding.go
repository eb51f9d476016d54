package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bobmcallan/feedpulse/internal/common"
)

// handleOnboardingStatus handles GET /api/onboarding.
func (s *Server) handleOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	st, err := s.app.Onboarding.Status(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// handleOnboardingGuard handles GET /api/onboarding/guard. It never fails:
// the redirect is "" when the route may render.
func (s *Server) handleOnboardingGuard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	authenticated := common.ResolveToken(r.Context()) != ""
	WriteJSON(w, http.StatusOK, map[string]string{
		"redirect": s.app.Onboarding.Guard(r.Context(), authenticated),
	})
}

// handleOnboardingOptions handles GET /api/onboarding/options, the area and
// segment choices for the feedback filters.
func (s *Server) handleOnboardingOptions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Onboarding.Options(r.Context()))
}

func (s *Server) handleOnboardingContext(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	pc, err := s.app.Onboarding.Context(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, pc)
}

func (s *Server) handleOnboardingComplete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	st, err := s.app.Onboarding.Complete(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// handleOnboardingWizard handles GET /api/onboarding/wizard.
func (s *Server) handleOnboardingWizard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	wiz, err := s.app.Onboarding.Wizard(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, wiz)
}

// handleOnboardingSection handles GET, PUT and DELETE on
// /api/onboarding/wizard/{section}. PUT bodies are stored as sent.
func (s *Server) handleOnboardingSection(w http.ResponseWriter, r *http.Request) {
	section := PathParam(r, "/api/onboarding/wizard/", "")
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		ws, err := s.app.Onboarding.Section(ctx, section)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"section": section, "data": ws})
	case http.MethodPut:
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid body: "+err.Error())
			return
		}
		if err := s.app.Onboarding.SaveSection(ctx, section, json.RawMessage(data)); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"section": section, "status": "saved"})
	case http.MethodDelete:
		if err := s.app.Onboarding.ClearSection(ctx, section); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
