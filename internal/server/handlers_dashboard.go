package server

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/services/analytics"
	"github.com/bobmcallan/feedpulse/internal/services/dashboard"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

// resolvePeriod reads period, from and to from the query string. The list
// filter names date_from and date_to are accepted too.
func resolvePeriod(r *http.Request, d *dashboard.Service) filters.Period {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" {
		from = q.Get(filters.KeyDateFrom)
	}
	if to == "" {
		to = q.Get(filters.KeyDateTo)
	}
	return d.Resolve(q.Get("period"), from, to)
}

// unauthorizedSlice returns the first slice error caused by a rejected
// token. One is enough to know the whole session is gone.
func unauthorizedSlice(d *analytics.Dashboard) error {
	for _, name := range d.Failed() {
		if err := d.Slices[name].Err; errors.Is(err, client.ErrUnauthorized) {
			return err
		}
	}
	return nil
}

// handleDashboard handles GET /api/dashboard?period=7d|30d|90d|custom.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	dash := s.sessions.get(ctx).dashboard
	view := dash.Load(ctx, resolvePeriod(r, dash))
	if err := unauthorizedSlice(view.Dashboard); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// handleDashboardStatus handles GET /api/dashboard/status: the loading gate
// of the session's fan-out and what its last applied load holds. Widgets poll
// it while the first load of a new period runs.
func (s *Server) handleDashboardStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	loader := s.sessions.get(r.Context()).dashboard.Loader()
	out := map[string]any{"loading": loader.Loading(), "failed": []string{}}
	if d := loader.Current(); d != nil {
		out["period"] = d.Period
		out["loaded_at"] = d.LoadedAt
		if failed := d.Failed(); failed != nil {
			out["failed"] = failed
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

// handleDashboardChart handles GET /api/dashboard/charts/{slice}.png|.svg.
// The loaded dashboard is reused when its period matches the request.
func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/dashboard/charts/")
	format := strings.TrimPrefix(path.Ext(name), ".")
	if format != widgets.FormatPNG && format != widgets.FormatSVG {
		WriteError(w, http.StatusBadRequest, "Chart format must be png or svg")
		return
	}
	slice := strings.TrimSuffix(name, path.Ext(name))

	ctx := r.Context()
	dash := s.sessions.get(ctx).dashboard
	p := resolvePeriod(r, dash)
	d := dash.Loader().Current()
	if d == nil || d.Period.Key() != p.Key() {
		d = dash.Loader().Load(ctx, p, nil)
	}
	data, err := dashboard.Chart(d, slice, format)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteBytes(w, widgets.ContentType(format), "", data)
}

// handleDashboardSlice handles POST /api/dashboard/slices/{slice}, reloading
// one slice of the current dashboard.
func (s *Server) handleDashboardSlice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	name := PathParam(r, "/api/dashboard/slices/", "")
	ctx := r.Context()
	slice, err := s.sessions.get(ctx).dashboard.Loader().Refresh(ctx, name, nil)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if slice.Err != nil && errors.Is(slice.Err, client.ErrUnauthorized) {
		s.writeServiceError(w, r, slice.Err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"slice": name, "result": slice})
}

// handleDashboardWidgets handles GET, PUT (replace) and PATCH (toggle one)
// on /api/dashboard/widgets.
func (s *Server) handleDashboardWidgets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dash := s.sessions.get(ctx).dashboard
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, map[string]any{"widgets": dash.Widgets(ctx)})
	case http.MethodPut:
		var body struct {
			Widgets []string `json:"widgets"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		saved, err := dash.SaveWidgets(ctx, body.Widgets)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"widgets": saved})
	case http.MethodPatch:
		var body struct {
			ID string `json:"id"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		saved, err := dash.ToggleWidget(ctx, body.ID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"widgets": saved})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch)
	}
}
