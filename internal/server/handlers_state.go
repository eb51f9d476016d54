package server

import (
	"net/http"
)

// handleStarred handles GET /api/starred.
func (s *Server) handleStarred(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ids, err := s.sessions.get(r.Context()).starred.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"starred": ids})
}

// handleStarredItem handles PUT (star), DELETE (unstar) and POST (toggle)
// on /api/starred/{id}.
func (s *Server) handleStarredItem(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/starred/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "feedback id is required")
		return
	}
	ctx := r.Context()
	starred := s.sessions.get(ctx).starred

	var (
		on  bool
		err error
	)
	switch r.Method {
	case http.MethodPut:
		on, err = true, starred.Add(ctx, id)
	case http.MethodDelete:
		on, err = false, starred.Remove(ctx, id)
	case http.MethodPost:
		on, err = starred.Toggle(ctx, id)
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete, http.MethodPost)
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"id": id, "starred": on})
}

// handleTheme handles GET and PUT on /api/theme.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	theme := s.sessions.get(ctx).theme
	switch r.Method {
	case http.MethodGet:
		current, err := theme.Get(ctx)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"theme": current})
	case http.MethodPut:
		var body struct {
			Theme string `json:"theme"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		if err := theme.Set(ctx, body.Theme); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"theme": body.Theme})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleThemeToggle handles POST /api/theme/toggle.
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	next, err := s.sessions.get(ctx).theme.Toggle(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"theme": next})
}
