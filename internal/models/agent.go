package models

import "encoding/json"

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one transcript entry.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatRequest is the body of POST /agent/chat.
type ChatRequest struct {
	Message        string                     `json:"message"`
	ConversationID *string                    `json:"conversation_id"`
	Context        map[string]json.RawMessage `json:"context"`
}

// Citation references a feedback or customer record backing an answer.
type Citation struct {
	FeedbackID string `json:"feedback_id,omitempty"`
	Text       string `json:"text,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

// ChatResponse is the body returned by POST /agent/chat.
type ChatResponse struct {
	ConversationID string            `json:"conversation_id"`
	Response       string            `json:"response"`
	ToolsUsed      []json.RawMessage `json:"tools_used"`
	Citations      []Citation        `json:"citations"`
}

// Conversation is a stored agent conversation.
type Conversation struct {
	ID                   string        `json:"id"`
	OrgID                string        `json:"org_id,omitempty"`
	UserID               string        `json:"user_id,omitempty"`
	KibanaConversationID string        `json:"kibana_conversation_id,omitempty"`
	Title                string        `json:"title"`
	Messages             []ChatMessage `json:"messages"`
	CreatedAt            string        `json:"created_at"`
	UpdatedAt            string        `json:"updated_at"`
}
