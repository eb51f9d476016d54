package chat

import "fmt"

// FeedbackExcerptLimit caps the feedback text quoted by FeedbackPrompt.
const FeedbackExcerptLimit = 200

// SuggestedPrompts are offered by an empty chat panel.
var SuggestedPrompts = []string{
	"What's happening with checkout this week?",
	"What should we prioritize this quarter?",
	"Show me feedback from enterprise customers",
	"Compare pricing sentiment: enterprise vs SMB",
	"Generate specs for the top issue",
	"Which customers are at risk?",
}

// DashboardPrompts are the quick actions of the dashboard header.
var DashboardPrompts = []string{
	"What should we prioritize?",
	"Investigate top issues",
	"Generate specs for the top issue",
}

// SpecsPrompt opens chat from the specs page.
const SpecsPrompt = "Help me generate specs from feedback"

// FeedbackPrompt asks the agent to analyze one feedback item.
func FeedbackPrompt(text string) string {
	r := []rune(text)
	if len(r) > FeedbackExcerptLimit {
		return "Analyze this feedback: " + string(r[:FeedbackExcerptLimit]) + "..."
	}
	return "Analyze this feedback: " + text
}

// CustomerPrompt asks the agent about one customer.
func CustomerPrompt(company string) string {
	return fmt.Sprintf("What's the situation with %s?", company)
}
