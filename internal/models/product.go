package models

import "encoding/json"

// Wizard section names, in wizard order.
var WizardSections = []string{
	"basics",
	"areas",
	"goals",
	"segments",
	"competitors",
	"roadmap",
	"teams",
	"tech_stack",
}

// ValidWizardSection reports whether name is a known wizard section.
func ValidWizardSection(name string) bool {
	for _, s := range WizardSections {
		if s == name {
			return true
		}
	}
	return false
}

// OnboardingStatus is the body of GET /product/onboarding-status.
type OnboardingStatus struct {
	Completed         bool     `json:"completed"`
	CompletedSections []string `json:"completed_sections"`
	TotalSections     int      `json:"total_sections"`
}

// WizardAll is the data block of GET /product/wizard.
type WizardAll struct {
	Data              map[string]json.RawMessage `json:"data"`
	CompletedSections []string                   `json:"completed_sections"`
}

// AreaNames extracts the configured product area names from the "areas" section.
func (w *WizardAll) AreaNames() []string {
	raw, ok := w.Data["areas"]
	if !ok {
		return nil
	}
	var section ProductAreas
	if err := json.Unmarshal(raw, &section); err != nil {
		return nil
	}
	names := make([]string, 0, len(section.Areas))
	for _, a := range section.Areas {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// WizardSection is the data block of GET /product/wizard/{section}.
type WizardSection struct {
	Section string          `json:"section"`
	Data    json.RawMessage `json:"data"`
}

// ProductBasics is wizard step 1.
type ProductBasics struct {
	ProductName string `json:"product_name" validate:"required"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Stage       string `json:"stage,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty" validate:"omitempty,url"`
}

// ProductArea is one configured product area.
type ProductArea struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// ProductAreas is wizard step 2.
type ProductAreas struct {
	Areas []ProductArea `json:"areas" validate:"dive"`
}

// ProductContext is the flattened context handed to the agent.
type ProductContext struct {
	ProductName      string           `json:"product_name,omitempty"`
	Description      string           `json:"description,omitempty"`
	Industry         string           `json:"industry,omitempty"`
	Stage            string           `json:"stage,omitempty"`
	WebsiteURL       string           `json:"website_url,omitempty"`
	Areas            []map[string]any `json:"areas,omitempty"`
	Goals            []map[string]any `json:"goals,omitempty"`
	Segments         []map[string]any `json:"segments,omitempty"`
	PricingTiers     []map[string]any `json:"pricing_tiers,omitempty"`
	Competitors      []map[string]any `json:"competitors,omitempty"`
	ExistingFeatures []map[string]any `json:"existing_features,omitempty"`
	PlannedFeatures  []map[string]any `json:"planned_features,omitempty"`
	Teams            []map[string]any `json:"teams,omitempty"`
	Technologies     []map[string]any `json:"technologies,omitempty"`
}
