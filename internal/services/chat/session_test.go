package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/models"
)

type fakeAgent struct {
	mu       sync.Mutex
	requests []models.ChatRequest
	err      error
	gate     chan struct{}
	convs    map[string]*models.Conversation
	calls    atomic.Int32
}

func (f *fakeAgent) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.gate
	err := f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &models.ChatResponse{ConversationID: "conv-1", Response: "reply to " + req.Message}, nil
}

func (f *fakeAgent) Conversations(ctx context.Context) ([]models.Conversation, error) {
	out := []models.Conversation{}
	for _, c := range f.convs {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeAgent) Conversation(ctx context.Context, id string) (*models.Conversation, error) {
	c, ok := f.convs[id]
	if !ok {
		return nil, &client.HTTPError{StatusCode: http.StatusNotFound, Message: "not found"}
	}
	return c, nil
}

func newTestSession(api *fakeAgent) *Session {
	return NewSession(api, common.NewSilentLogger())
}

func TestSession_StartsClosed(t *testing.T) {
	s := newTestSession(&fakeAgent{})
	assert.Equal(t, StateClosed, s.State())
	assert.False(t, s.IsOpen())

	_, err := s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestSession_SendAppendsReplyAndKeepsConversation(t *testing.T) {
	api := &fakeAgent{}
	s := newTestSession(api)
	ctx := context.Background()

	_, err := s.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateOpen, s.State())

	reply, err := s.Send(ctx, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "reply to first", reply.Content)

	_, err = s.Send(ctx, "second")
	require.NoError(t, err)

	require.Len(t, api.requests, 2)
	assert.Nil(t, api.requests[0].ConversationID)
	require.NotNil(t, api.requests[1].ConversationID)
	assert.Equal(t, "conv-1", *api.requests[1].ConversationID)

	tr := s.Snapshot()
	assert.Equal(t, "conv-1", tr.ConversationID)
	require.Len(t, tr.Messages, 4)
	assert.Equal(t, models.RoleUser, tr.Messages[0].Role)
	assert.Equal(t, "first", tr.Messages[0].Content)
	assert.NotEmpty(t, tr.Messages[0].ID)
	assert.Equal(t, models.RoleAssistant, tr.Messages[3].Role)
}

func TestSession_RejectsBlankInput(t *testing.T) {
	api := &fakeAgent{}
	s := newTestSession(api)
	_, _ = s.Open(context.Background())

	_, err := s.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, api.calls.Load())
}

func TestSession_RejectsSendWhileInFlight(t *testing.T) {
	api := &fakeAgent{gate: make(chan struct{})}
	s := newTestSession(api)
	ctx := context.Background()
	_, _ = s.Open(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Send(ctx, "slow")
	}()

	require.Eventually(t, func() bool { return s.State() == StateSending }, time.Second, time.Millisecond)
	_, err := s.Send(ctx, "again")
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(api.gate)
	<-done
	assert.Equal(t, StateOpen, s.State())
	assert.EqualValues(t, 1, api.calls.Load())
}

func TestSession_FailureAppendsErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api detail", &client.HTTPError{StatusCode: 500, Message: "quota exceeded"}, "Error: quota exceeded"},
		{"transport", errors.New("dial tcp: refused"), "Error: " + DefaultErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(&fakeAgent{err: tt.err})
			_, _ = s.Open(context.Background())

			reply, err := s.Send(context.Background(), "hi")
			require.Error(t, err)
			assert.True(t, reply.Error)
			assert.Equal(t, tt.want, reply.Content)

			tr := s.Snapshot()
			assert.Equal(t, StateOpen, tr.State)
			assert.Equal(t, strings.TrimPrefix(tt.want, "Error: "), tr.Error)
			assert.Len(t, tr.Messages, 2)
		})
	}
}

func TestSession_CloseKeepsTranscript(t *testing.T) {
	s := newTestSession(&fakeAgent{})
	ctx := context.Background()
	_, _ = s.Open(ctx)
	_, _ = s.Send(ctx, "hi")

	s.Close()
	assert.Equal(t, StateClosed, s.State())
	_, _ = s.Open(ctx)
	assert.Len(t, s.Snapshot().Messages, 2)
	assert.Equal(t, "conv-1", s.Snapshot().ConversationID)
}

func TestSession_NewConversationClearsLocalState(t *testing.T) {
	api := &fakeAgent{}
	s := newTestSession(api)
	ctx := context.Background()
	_, _ = s.Open(ctx)
	_, _ = s.Send(ctx, "hi")

	s.NewConversation()
	tr := s.Snapshot()
	assert.Empty(t, tr.Messages)
	assert.Empty(t, tr.ConversationID)

	_, _ = s.Send(ctx, "fresh")
	assert.Nil(t, api.requests[len(api.requests)-1].ConversationID)
}

func TestSession_PresetAutoSendsOnOpen(t *testing.T) {
	api := &fakeAgent{}
	s := newTestSession(api)

	reply, err := s.OpenWithMessage(context.Background(), "Tell me more about Checkout issues")
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "reply to Tell me more about Checkout issues", reply.Content)

	_, ok := s.ConsumePendingMessage()
	assert.False(t, ok, "pending message is consumed exactly once")
	assert.EqualValues(t, 1, api.calls.Load())
}

func TestSession_PresetWaitsForInFlightSend(t *testing.T) {
	api := &fakeAgent{gate: make(chan struct{})}
	s := newTestSession(api)
	ctx := context.Background()
	_, _ = s.Open(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Send(ctx, "slow")
	}()
	require.Eventually(t, func() bool { return s.State() == StateSending }, time.Second, time.Millisecond)

	reply, err := s.OpenWithMessage(ctx, "Tell me more about Billing issues")
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.True(t, s.Snapshot().HasPending)
	assert.EqualValues(t, 1, api.calls.Load())

	close(api.gate)
	<-done

	snap := s.Snapshot()
	assert.False(t, snap.HasPending)
	assert.Equal(t, StateOpen, snap.State)
	require.Len(t, snap.Messages, 4)
	assert.Equal(t, "Tell me more about Billing issues", snap.Messages[2].Content)
	assert.Equal(t, "reply to Tell me more about Billing issues", snap.Messages[3].Content)
	assert.EqualValues(t, 2, api.calls.Load())
}

func TestSession_PendingQueueHoldsOne(t *testing.T) {
	s := newTestSession(&fakeAgent{})
	s.mu.Lock()
	s.pending = "first"
	s.mu.Unlock()
	s.mu.Lock()
	s.pending = "second"
	s.mu.Unlock()

	m, ok := s.ConsumePendingMessage()
	assert.True(t, ok)
	assert.Equal(t, "second", m)
	_, ok = s.ConsumePendingMessage()
	assert.False(t, ok)
}

func TestSession_OpenWithoutPending(t *testing.T) {
	api := &fakeAgent{}
	s := newTestSession(api)
	reply, err := s.OpenWithMessage(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.True(t, s.IsOpen())
	assert.Zero(t, api.calls.Load())
}

func TestSession_LoadConversationReplacesTranscript(t *testing.T) {
	api := &fakeAgent{convs: map[string]*models.Conversation{
		"c9": {ID: "c9", Messages: []models.ChatMessage{
			{Role: "user", Content: "old q"},
			{Role: "assistant", Content: "old a"},
		}},
	}}
	s := newTestSession(api)
	ctx := context.Background()
	_, _ = s.Open(ctx)
	_, _ = s.Send(ctx, "current")

	require.NoError(t, s.LoadConversation(ctx, "c9"))
	tr := s.Snapshot()
	assert.Equal(t, "c9", tr.ConversationID)
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, "old a", tr.Messages[1].Content)

	err := s.LoadConversation(ctx, "missing")
	assert.Error(t, err)
	assert.Equal(t, "Could not load conversation", s.Snapshot().Error)
	assert.Equal(t, "c9", s.Snapshot().ConversationID)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, "Analyze this feedback: short", FeedbackPrompt("short"))
	long := strings.Repeat("a", 250)
	assert.Equal(t, "Analyze this feedback: "+strings.Repeat("a", 200)+"...", FeedbackPrompt(long))
	assert.Equal(t, "What's the situation with Acme?", CustomerPrompt("Acme"))
}

func TestRegistry_OneSessionPerKey(t *testing.T) {
	r := NewRegistry(&fakeAgent{}, common.NewSilentLogger())
	a := r.Get("k1")
	assert.Same(t, a, r.Get("k1"))
	assert.NotSame(t, a, r.Get("k2"))
	assert.Equal(t, 2, r.Len())
	r.Drop("k1")
	assert.NotSame(t, a, r.Get("k1"))
}

func TestSession_UnavailableMessageOption(t *testing.T) {
	s := NewSession(&fakeAgent{err: errors.New("offline")}, common.NewSilentLogger(), WithUnavailableMessage("Assistant offline"))
	_, _ = s.Open(context.Background())
	reply, _ := s.Send(context.Background(), "hi")
	assert.Equal(t, "Error: Assistant offline", reply.Content)
}
