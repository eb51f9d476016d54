package models

// Upload kinds.
const (
	UploadFeedback  = "feedback"
	UploadCustomers = "customers"
)

// UploadInit is returned by POST .../upload-csv.
type UploadInit struct {
	UploadID         string              `json:"upload_id"`
	Columns          []string            `json:"columns"`
	SuggestedMapping map[string]*string  `json:"suggested_mapping"`
	TotalRows        int                 `json:"total_rows"`
	PreviewSample    []map[string]string `json:"preview_sample,omitempty"`
}

// UploadConfirm is the body of POST .../upload-csv/{id}/confirm. The import
// options only apply to feedback uploads.
type UploadConfirm struct {
	ColumnMapping        map[string]*string `json:"column_mapping"`
	DefaultSource        string             `json:"default_source,omitempty"`
	UseTodayForDate      *bool              `json:"use_today_for_date,omitempty"`
	AutoDetectAreas      *bool              `json:"auto_detect_areas,omitempty"`
	AutoAnalyzeSentiment *bool              `json:"auto_analyze_sentiment,omitempty"`
}

// UploadConfirmed is returned by the confirm step.
type UploadConfirmed struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
}

// DetectedArea is a product area seen during import.
type DetectedArea struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	IsNew bool   `json:"is_new"`
}

// UploadResult is returned by the import step.
type UploadResult struct {
	UploadID      string         `json:"upload_id"`
	TotalRows     int            `json:"total_rows"`
	ImportedRows  int            `json:"imported_rows"`
	FailedRows    int            `json:"failed_rows"`
	DetectedAreas []DetectedArea `json:"detected_areas,omitempty"`
}

// UploadRecord is one entry of the upload history.
type UploadRecord struct {
	ID            string         `json:"id"`
	OrgID         string         `json:"org_id,omitempty"`
	UploadType    string         `json:"upload_type"`
	Filename      string         `json:"filename,omitempty"`
	TotalRows     int            `json:"total_rows,omitempty"`
	ImportedRows  int            `json:"imported_rows,omitempty"`
	FailedRows    int            `json:"failed_rows,omitempty"`
	Status        string         `json:"status"`
	ColumnMapping map[string]any `json:"column_mapping,omitempty"`
	ErrorMessage  *string        `json:"error_message,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	CompletedAt   string         `json:"completed_at,omitempty"`
}
