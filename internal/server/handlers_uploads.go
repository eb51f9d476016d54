package server

import (
	"encoding/json"
	"net/http"

	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/upload"
)

// MaxUploadBytes caps a CSV upload request.
const MaxUploadBytes = 50 << 20

type confirmBody struct {
	Mapping map[string]*string `json:"mapping"`
	Options *upload.Options    `json:"options"`
}

// handleUploadHistory handles GET /api/uploads.
func (s *Server) handleUploadHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	list, err := s.app.Uploads.History(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.UploadRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"uploads": list})
}

// routeUploads dispatches:
//
//	POST   /api/uploads/{kind}               multipart CSV upload
//	POST   /api/uploads/{kind}/{id}/confirm  mapping confirmation and import
//	GET    /api/uploads/{id}                 one history record
//	DELETE /api/uploads/{id}
func (s *Server) routeUploads(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/uploads/")
	switch {
	case len(parts) == 0:
		s.handleUploadHistory(w, r)
	case len(parts) == 1 && r.Method == http.MethodPost:
		s.handleUploadCSV(w, r, parts[0])
	case len(parts) == 1:
		s.handleUploadRecord(w, r, parts[0])
	case len(parts) == 3 && parts[2] == "confirm":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		s.handleUploadConfirm(w, r, parts[0], parts[1])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request, kind string) {
	if _, err := upload.RequiredColumn(kind); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	var overrides map[string]*string
	if raw := r.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid mapping: "+err.Error())
			return
		}
	}
	opts := upload.DefaultOptions()
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid options: "+err.Error())
			return
		}
	}

	ctx := r.Context()
	out, err := s.app.Uploads.Upload(ctx, kind, header.Filename, file, overrides, opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if out.Result != nil {
		s.afterImport(r, kind)
	}
	status := http.StatusOK
	if out.NeedsMapping {
		status = http.StatusAccepted
	}
	WriteJSON(w, status, out)
}

func (s *Server) handleUploadConfirm(w http.ResponseWriter, r *http.Request, kind, id string) {
	var body confirmBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	opts := upload.DefaultOptions()
	if body.Options != nil {
		opts = *body.Options
	}
	result, err := s.app.Uploads.Confirm(r.Context(), kind, id, body.Mapping, opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.afterImport(r, kind)
	WriteJSON(w, http.StatusOK, map[string]any{
		"result":  result,
		"warning": upload.Warning(result),
	})
}

func (s *Server) handleUploadRecord(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		rec, err := s.app.Uploads.Get(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		if err := s.app.Uploads.Delete(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// afterImport drops the cached feedback page so the next list shows the
// imported rows.
func (s *Server) afterImport(r *http.Request, kind string) {
	if kind == models.UploadFeedback {
		s.sessions.get(r.Context()).fetcher.Invalidate()
	}
}
