package widgets

import "fmt"

// Issue action ids.
const (
	ActionInvestigate = "investigate"
	ActionGenerate    = "generate_spec"
)

// Action is a chat preset launched from a widget. Navigate is empty when the
// action stays on the current page.
type Action struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Prompt   string `json:"prompt"`
	Navigate string `json:"navigate,omitempty"`
}

// InvestigateIssue opens chat asking about an area's issues.
func InvestigateIssue(area string) Action {
	return Action{
		ID:     ActionInvestigate,
		Label:  "Investigate",
		Prompt: fmt.Sprintf("Tell me more about %s issues", area),
	}
}

// GenerateSpecFor opens chat asking for specs and moves to the specs page.
func GenerateSpecFor(area string) Action {
	return Action{
		ID:       ActionGenerate,
		Label:    "Generate spec",
		Prompt:   fmt.Sprintf("Generate specs for fixing %s", area),
		Navigate: SpecsPath,
	}
}

// IssueActions returns both actions for a top issue.
func IssueActions(area string) []Action {
	return []Action{InvestigateIssue(area), GenerateSpecFor(area)}
}
