package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/specs"
)

func specListParams(r *http.Request) models.SpecListParams {
	q := r.URL.Query()
	size, _ := strconv.Atoi(q.Get("page_size"))
	return models.SpecListParams{
		Page:        filters.ParsePage(q.Get(filters.KeyPage)),
		PageSize:    size,
		ProductArea: q.Get("product_area"),
		Status:      q.Get("status"),
		DateFrom:    q.Get(filters.KeyDateFrom),
		DateTo:      q.Get(filters.KeyDateTo),
		CustomerID:  q.Get("customer_id"),
	}
}

// handleSpecsRoot handles GET (list) and POST (generate) on /api/specs.
func (s *Server) handleSpecsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.app.Specs.List(r.Context(), specListParams(r))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req models.GenerateSpecRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		resp, err := s.app.Specs.Generate(r.Context(), req.Topic, req.ProductArea)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, resp)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeSpecs dispatches /api/specs/{id}[/regenerate|/download|/sections/{section}].
func (s *Server) routeSpecs(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/specs/")
	switch {
	case len(parts) == 0:
		s.handleSpecsRoot(w, r)
	case len(parts) == 1:
		s.handleSpec(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "regenerate":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		spec, err := s.app.Specs.Regenerate(r.Context(), parts[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, spec)
	case len(parts) == 2 && parts[1] == "download":
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		s.handleSpecDownload(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "sections":
		if !RequireMethod(w, r, http.MethodPut) {
			return
		}
		var body struct {
			Content string `json:"content"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		spec, err := s.app.Specs.EditSection(r.Context(), parts[0], parts[2], body.Content)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, spec)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		spec, err := s.app.Specs.Get(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, spec)
	case http.MethodPut, http.MethodPatch:
		var req models.UpdateSpecRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		spec, err := s.app.Specs.Update(ctx, id, req)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, spec)
	case http.MethodDelete:
		if err := s.app.Specs.Delete(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

// handleSpecDownload serves one section (?section=prd), the markdown export
// (?format=export) or, by default, the zip of all four sections.
func (s *Server) handleSpecDownload(w http.ResponseWriter, r *http.Request, id string) {
	spec, err := s.app.Specs.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	q := r.URL.Query()

	var file *specs.File
	switch {
	case q.Get("section") != "":
		file, err = specs.SectionFile(spec, q.Get("section"))
	case q.Get("format") == "export":
		file, err = specs.Export(spec, time.Now())
	default:
		file, err = specs.Archive(spec)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteBytes(w, file.ContentType, file.Name, file.Data)
}
