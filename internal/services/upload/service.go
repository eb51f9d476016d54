// Package upload runs the three-step CSV import (upload, confirm mapping,
// import) and the manual single-record forms.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

var (
	ErrNotCSV          = errors.New("please select a CSV file")
	ErrMappingRequired = errors.New("required column is not mapped")
	ErrUnknownKind     = errors.New("unknown upload kind")
)

// Options are the feedback import switches. Customer uploads ignore them.
type Options struct {
	DefaultSource        string `json:"default_source"`
	UseTodayForDate      bool   `json:"use_today_for_date"`
	AutoDetectAreas      bool   `json:"auto_detect_areas"`
	AutoAnalyzeSentiment bool   `json:"auto_analyze_sentiment"`
}

// DefaultOptions matches a fresh upload form.
func DefaultOptions() Options {
	return Options{
		DefaultSource:        models.DefaultFeedbackSource,
		UseTodayForDate:      true,
		AutoDetectAreas:      true,
		AutoAnalyzeSentiment: true,
	}
}

// Outcome reports how far an upload got. When NeedsMapping is set the file
// is staged on the server and Confirm must be called with a mapping that
// covers the required column.
type Outcome struct {
	Kind         string               `json:"kind"`
	UploadID     string               `json:"upload_id"`
	Columns      []string             `json:"columns"`
	Mapping      map[string]*string   `json:"mapping"`
	TotalRows    int                  `json:"total_rows"`
	Preview      []map[string]string  `json:"preview_sample,omitempty"`
	NeedsMapping bool                 `json:"needs_mapping"`
	Result       *models.UploadResult `json:"result,omitempty"`
	Warning      string               `json:"warning,omitempty"`
}

// Service runs uploads against the API.
type Service struct {
	uploads interfaces.UploadAPI
	history interfaces.UploadsAPI
	logger  *common.Logger
}

// NewService creates a new upload service
func NewService(uploads interfaces.UploadAPI, history interfaces.UploadsAPI, logger *common.Logger) *Service {
	return &Service{
		uploads: uploads,
		history: history,
		logger:  logger,
	}
}

// RequiredColumn is the mapping key an import cannot run without.
func RequiredColumn(kind string) (string, error) {
	switch kind {
	case models.UploadFeedback:
		return "text", nil
	case models.UploadCustomers:
		return "company_name", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// Upload stages a CSV and, when the suggested mapping (overlaid with
// overrides) covers the required column, confirms and imports it straight
// away. Non-CSV names are rejected before any request is made.
func (s *Service) Upload(ctx context.Context, kind, filename string, r io.Reader, overrides map[string]*string, opts Options) (*Outcome, error) {
	required, err := RequiredColumn(kind)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, ErrNotCSV
	}

	init, err := s.uploads.UploadCSV(ctx, kind, filepath.Base(filename), r)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	mapping := make(map[string]*string, len(init.SuggestedMapping)+len(overrides))
	for k, v := range init.SuggestedMapping {
		mapping[k] = v
	}
	for k, v := range overrides {
		mapping[k] = v
	}

	out := &Outcome{
		Kind:      kind,
		UploadID:  init.UploadID,
		Columns:   init.Columns,
		Mapping:   mapping,
		TotalRows: init.TotalRows,
		Preview:   init.PreviewSample,
	}

	s.logger.Info().
		Str("kind", kind).
		Str("upload_id", init.UploadID).
		Int("rows", init.TotalRows).
		Msg("CSV staged")

	if !mapped(mapping, required) {
		out.NeedsMapping = true
		return out, nil
	}

	result, err := s.Confirm(ctx, kind, init.UploadID, mapping, opts)
	if err != nil {
		return out, err
	}
	out.Result = result
	out.Warning = Warning(result)
	return out, nil
}

// Confirm sends the column mapping and runs the import.
func (s *Service) Confirm(ctx context.Context, kind, uploadID string, mapping map[string]*string, opts Options) (*models.UploadResult, error) {
	required, err := RequiredColumn(kind)
	if err != nil {
		return nil, err
	}
	if !mapped(mapping, required) {
		return nil, fmt.Errorf("%w: %s", ErrMappingRequired, required)
	}

	body := models.UploadConfirm{ColumnMapping: mapping}
	if kind == models.UploadFeedback {
		if opts.DefaultSource == "" {
			opts.DefaultSource = models.DefaultFeedbackSource
		}
		body.DefaultSource = opts.DefaultSource
		body.UseTodayForDate = &opts.UseTodayForDate
		body.AutoDetectAreas = &opts.AutoDetectAreas
		body.AutoAnalyzeSentiment = &opts.AutoAnalyzeSentiment
	}

	if _, err := s.uploads.ConfirmUpload(ctx, kind, uploadID, body); err != nil {
		return nil, fmt.Errorf("confirm failed: %w", err)
	}
	result, err := s.uploads.ImportUpload(ctx, kind, uploadID)
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	s.logger.Info().
		Str("kind", kind).
		Str("upload_id", uploadID).
		Int("imported", result.ImportedRows).
		Int("failed", result.FailedRows).
		Msg("CSV imported")
	return result, nil
}

// Warning describes partial failures of an import, or "".
func Warning(r *models.UploadResult) string {
	if r == nil || r.FailedRows <= 0 {
		return ""
	}
	if r.FailedRows == 1 {
		return "1 row failed"
	}
	return fmt.Sprintf("%d rows failed", r.FailedRows)
}

// History lists past uploads.
func (s *Service) History(ctx context.Context) ([]models.UploadRecord, error) {
	list, err := s.history.ListUploads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return list, nil
}

// Get returns one upload record.
func (s *Service) Get(ctx context.Context, id string) (*models.UploadRecord, error) {
	rec, err := s.history.GetUpload(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes an upload record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.history.DeleteUpload(ctx, id); err != nil {
		return fmt.Errorf("failed to delete upload %s: %w", id, err)
	}
	s.logger.Info().Str("upload_id", id).Msg("Upload deleted")
	return nil
}

func mapped(m map[string]*string, key string) bool {
	v, ok := m[key]
	return ok && v != nil && strings.TrimSpace(*v) != ""
}
