// Package chat holds the agent chat panel state: open/closed, the local
// transcript, the in-flight send and a single pending preset message.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// Panel states.
const (
	StateClosed  = "closed"
	StateOpen    = "open"
	StateSending = "sending"
)

// DefaultErrorMessage is shown when a failed send carries no server detail.
const DefaultErrorMessage = "Agent temporarily unavailable"

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrSendInFlight = errors.New("a message is already being sent")
	ErrNotOpen      = errors.New("chat panel is closed")
)

// Message is one transcript entry. Failed sends append an assistant message
// with Error set.
type Message struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp string            `json:"timestamp,omitempty"`
	Citations []models.Citation `json:"citations,omitempty"`
	Error     bool              `json:"error,omitempty"`
}

// Transcript is a point-in-time copy of the session.
type Transcript struct {
	State          string    `json:"state"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Messages       []Message `json:"messages"`
	Error          string    `json:"error,omitempty"`
	HasPending     bool      `json:"has_pending"`
}

// Session is one user's chat panel. All methods are safe for concurrent use.
type Session struct {
	api         interfaces.AgentAPI
	logger      *common.Logger
	now         func() time.Time
	unavailable string

	mu             sync.Mutex
	open           bool
	sending        bool
	gen            uint64
	conversationID string
	messages       []Message
	pending        string
	lastErr        string
}

// Option configures a Session.
type Option func(*Session)

// WithUnavailableMessage replaces the message shown for failures that carry
// no server detail.
func WithUnavailableMessage(msg string) Option {
	return func(s *Session) {
		if msg != "" {
			s.unavailable = msg
		}
	}
}

// NewSession creates a closed, empty session.
func NewSession(api interfaces.AgentAPI, logger *common.Logger, opts ...Option) *Session {
	s := &Session{
		api:         api,
		logger:      logger,
		now:         time.Now,
		unavailable: DefaultErrorMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsOpen reports whether the panel is open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// State returns the current panel state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() string {
	switch {
	case !s.open:
		return StateClosed
	case s.sending:
		return StateSending
	}
	return StateOpen
}

// OpenWithMessage queues message and opens the panel. Only one message is
// held: a second call before the panel consumes it replaces the first.
func (s *Session) OpenWithMessage(ctx context.Context, message string) (*Message, error) {
	if message = strings.TrimSpace(message); message != "" {
		s.mu.Lock()
		s.pending = message
		s.mu.Unlock()
	}
	return s.Open(ctx)
}

// Open opens the panel and sends any pending message. The returned message
// is the reply to that pending message, or nil when there was none. While a
// send is in flight the pending message stays queued and goes out as soon
// as that reply lands.
func (s *Session) Open(ctx context.Context) (*Message, error) {
	s.mu.Lock()
	s.open = true
	if s.pending == "" || s.sending {
		s.mu.Unlock()
		return nil, nil
	}
	req, gen, _ := s.takePendingLocked()
	s.mu.Unlock()
	return s.complete(ctx, req, gen)
}

// ConsumePendingMessage takes the queued message, leaving the queue empty.
func (s *Session) ConsumePendingMessage() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.pending
	s.pending = ""
	return m, m != ""
}

// Close hides the panel. The transcript and conversation id are kept.
func (s *Session) Close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// NewConversation clears the local transcript and conversation id. Server
// history is untouched. A reply still in flight is dropped.
func (s *Session) NewConversation() {
	s.mu.Lock()
	s.gen++
	s.conversationID = ""
	s.messages = nil
	s.lastErr = ""
	s.sending = false
	s.mu.Unlock()
}

// Send appends text as a user message and posts it to the agent. The reply,
// or a synthetic error message, is appended when the call returns. A preset
// queued meanwhile is sent before Send returns.
func (s *Session) Send(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	req, gen, err := s.beginLocked(text)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, req, gen)
}

// beginLocked moves the panel to sending and records the user message.
func (s *Session) beginLocked(text string) (models.ChatRequest, uint64, error) {
	if !s.open {
		return models.ChatRequest{}, 0, ErrNotOpen
	}
	if s.sending {
		return models.ChatRequest{}, 0, ErrSendInFlight
	}
	s.sending = true
	s.lastErr = ""
	s.messages = append(s.messages, s.message(models.RoleUser, text))
	req := models.ChatRequest{Message: text}
	if s.conversationID != "" {
		id := s.conversationID
		req.ConversationID = &id
	}
	return req, s.gen, nil
}

// takePendingLocked starts a send of the queued message, if there is one.
func (s *Session) takePendingLocked() (models.ChatRequest, uint64, bool) {
	if s.pending == "" || !s.open || s.sending {
		return models.ChatRequest{}, 0, false
	}
	text := s.pending
	s.pending = ""
	req, gen, err := s.beginLocked(text)
	return req, gen, err == nil
}

func (s *Session) complete(ctx context.Context, req models.ChatRequest, gen uint64) (*Message, error) {
	resp, err := s.api.Chat(ctx, req)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil, fmt.Errorf("conversation reset while sending")
	}
	s.sending = false

	var reply Message
	if err != nil {
		detail := errorDetail(err, s.unavailable)
		s.lastErr = detail
		reply = s.message(models.RoleAssistant, "Error: "+detail)
		reply.Error = true
	} else {
		if resp.ConversationID != "" {
			s.conversationID = resp.ConversationID
		}
		reply = s.message(models.RoleAssistant, resp.Response)
		reply.Citations = resp.Citations
	}
	s.messages = append(s.messages, reply)
	next, nextGen, queued := s.takePendingLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Msg("Agent chat failed")
	}
	if queued {
		// its reply lands in the transcript
		_, _ = s.complete(ctx, next, nextGen)
	}
	return &reply, err
}

// History lists the stored conversations.
func (s *Session) History(ctx context.Context) ([]models.Conversation, error) {
	convs, err := s.api.Conversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// LoadConversation replaces the local transcript and conversation id with a
// stored conversation.
func (s *Session) LoadConversation(ctx context.Context, id string) error {
	conv, err := s.api.Conversation(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.lastErr = "Could not load conversation"
		s.mu.Unlock()
		return fmt.Errorf("failed to load conversation %s: %w", id, err)
	}

	msgs := make([]Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		msgs = append(msgs, Message{
			ID:        uuid.NewString(),
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	s.mu.Lock()
	s.gen++
	s.sending = false
	s.conversationID = conv.ID
	s.messages = msgs
	s.lastErr = ""
	s.mu.Unlock()
	return nil
}

// Snapshot copies the session for rendering.
func (s *Session) Snapshot() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Transcript{
		State:          s.stateLocked(),
		ConversationID: s.conversationID,
		Messages:       msgs,
		Error:          s.lastErr,
		HasPending:     s.pending != "",
	}
}

func (s *Session) message(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
}

// errorDetail prefers the API's own message and falls back to a generic one
// for transport failures.
func errorDetail(err error, fallback string) string {
	var he *client.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return fallback
}
