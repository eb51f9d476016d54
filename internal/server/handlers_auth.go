package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bobmcallan/feedpulse/internal/auth"
	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// handleAuthLogin handles POST /api/auth/login. The token is returned in the
// body and also set as an HttpOnly cookie.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	resp, err := s.app.Client.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			WriteErrorWithCode(w, http.StatusUnauthorized, "Invalid email or password", "invalid_credentials")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info().Str("user", resp.User.Email).Msg("User logged in")
	s.setTokenCookie(w, resp.AccessToken)
	WriteJSON(w, http.StatusOK, resp)
}

// handleAuthSignup handles POST /api/auth/signup.
func (s *Server) handleAuthSignup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.SignupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	resp, err := s.app.Client.Signup(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info().Str("user", resp.User.Email).Str("org", resp.User.OrgName).Msg("User signed up")
	s.setTokenCookie(w, resp.AccessToken)
	WriteJSON(w, http.StatusCreated, resp)
}

// handleAuthMe handles GET /api/auth/me.
func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user, err := s.app.Client.Me(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := map[string]any{"user": user}
	if exp, ok := auth.Expiry(common.ResolveToken(r.Context())); ok {
		out["expires_at"] = exp.UTC().Format(time.RFC3339)
	}
	WriteJSON(w, http.StatusOK, out)
}

// handleAuthLogout handles POST /api/auth/logout. The session's server-side
// state is dropped and the cookie cleared; the API has no logout call.
func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.endSession(w, r)
	WriteJSON(w, http.StatusOK, map[string]string{"redirect": s.loginPath()})
}

// endSession drops the caller's server-side state and expires the token
// cookie. The cookie is HttpOnly, so only the server can clear it.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if common.ResolveToken(r.Context()) != "" {
		s.sessions.drop(common.ResolveSessionKey(r.Context()))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setTokenCookie(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.app.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	if exp, ok := auth.Expiry(token); ok {
		c.Expires = exp
	}
	http.SetCookie(w, c)
}
