package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// Chat sends one message to the agent. The reply is unwrapped.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	var out models.ChatResponse
	if err := c.send(ctx, http.MethodPost, "/agent/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Conversations lists the caller's stored conversations.
func (c *Client) Conversations(ctx context.Context) ([]models.Conversation, error) {
	var env models.Envelope[[]models.Conversation]
	if err := c.get(ctx, "/agent/conversations", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []models.Conversation{}, nil
	}
	return env.Data, nil
}

// Conversation loads one conversation with its messages. The body is unwrapped.
func (c *Client) Conversation(ctx context.Context, id string) (*models.Conversation, error) {
	var out models.Conversation
	if err := c.get(ctx, "/agent/conversations/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ interfaces.AgentAPI = (*Client)(nil)
