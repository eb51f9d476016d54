package models

// Spec status constants.
const (
	SpecStatusDraft  = "draft"
	SpecStatusFinal  = "final"
	SpecStatusShared = "shared"
)

// ValidSpecStatuses is the set of allowed spec status values.
var ValidSpecStatuses = map[string]bool{
	SpecStatusDraft:  true,
	SpecStatusFinal:  true,
	SpecStatusShared: true,
}

// Spec document sections, in download order.
const (
	SpecSectionPRD          = "prd"
	SpecSectionArchitecture = "architecture"
	SpecSectionRules        = "rules"
	SpecSectionPlan         = "plan"
)

// SpecSections lists the four generated documents.
var SpecSections = []string{SpecSectionPRD, SpecSectionArchitecture, SpecSectionRules, SpecSectionPlan}

// Spec is a generated multi-section document.
type Spec struct {
	ID                string   `json:"id"`
	OrgID             string   `json:"org_id,omitempty"`
	Title             string   `json:"title"`
	Topic             string   `json:"topic"`
	ProductArea       *string  `json:"product_area,omitempty"`
	Status            string   `json:"status"`
	PRD               string   `json:"prd,omitempty"`
	Architecture      string   `json:"architecture,omitempty"`
	Rules             string   `json:"rules,omitempty"`
	Plan              string   `json:"plan,omitempty"`
	FeedbackCount     int      `json:"feedback_count"`
	CustomerCount     int      `json:"customer_count"`
	TotalARR          float64  `json:"total_arr"`
	FeedbackIDs       []string `json:"feedback_ids,omitempty"`
	CustomerIDs       []string `json:"customer_ids,omitempty"`
	LinkedGoalID      *string  `json:"linked_goal_id,omitempty"`
	GeneratedBy       *string  `json:"generated_by,omitempty"`
	GeneratedByName   *string  `json:"generated_by_name,omitempty"`
	DataFreshnessDate *string  `json:"data_freshness_date,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// Section returns the content of a named section and whether the name is known.
func (s *Spec) Section(name string) (string, bool) {
	switch name {
	case SpecSectionPRD:
		return s.PRD, true
	case SpecSectionArchitecture:
		return s.Architecture, true
	case SpecSectionRules:
		return s.Rules, true
	case SpecSectionPlan:
		return s.Plan, true
	}
	return "", false
}

// GenerateSpecRequest is the body of POST /specs/generate.
type GenerateSpecRequest struct {
	Topic       string `json:"topic" validate:"required"`
	ProductArea string `json:"product_area,omitempty"`
}

// GenerateSpecResponse is the data block of POST /specs/generate.
type GenerateSpecResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	FeedbackCount int     `json:"feedback_count"`
	CustomerCount int     `json:"customer_count"`
	TotalARR      float64 `json:"total_arr"`
	CreatedAt     string  `json:"created_at"`
}

// UpdateSpecRequest is the body of PUT /specs/{id}. Nil fields are left unchanged.
type UpdateSpecRequest struct {
	Status       *string `json:"status,omitempty" validate:"omitempty,spec_status"`
	PRD          *string `json:"prd,omitempty"`
	Architecture *string `json:"architecture,omitempty"`
	Rules        *string `json:"rules,omitempty"`
	Plan         *string `json:"plan,omitempty"`
	Title        *string `json:"title,omitempty"`
}

// EditsContent reports whether the update touches document content or title.
func (u UpdateSpecRequest) EditsContent() bool {
	return u.PRD != nil || u.Architecture != nil || u.Rules != nil || u.Plan != nil || u.Title != nil
}

// SpecListParams are the query params of GET /specs.
type SpecListParams struct {
	Page        int
	PageSize    int
	ProductArea string
	Status      string
	DateFrom    string
	DateTo      string
	CustomerID  string
}
