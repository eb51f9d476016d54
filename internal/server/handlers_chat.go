package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
)

type chatView struct {
	chat.Transcript
	Suggestions []string      `json:"suggestions,omitempty"`
	Reply       *chat.Message `json:"reply,omitempty"`
}

func transcriptView(t chat.Transcript, reply *chat.Message) chatView {
	v := chatView{Transcript: t, Reply: reply}
	if v.Messages == nil {
		v.Messages = []chat.Message{}
	}
	if len(t.Messages) == 0 {
		v.Suggestions = chat.SuggestedPrompts
	}
	return v
}

// writeChatResult reports a send. A failed send that produced an error reply
// is still a 200: the failure is part of the transcript.
func (s *Server) writeChatResult(w http.ResponseWriter, r *http.Request, sess *chat.Session, reply *chat.Message, err error) {
	if err != nil && (reply == nil || errors.Is(err, client.ErrUnauthorized)) {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, transcriptView(sess.Snapshot(), reply))
}

// handleChat handles GET (transcript) and POST (send) on /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.chat(r.Context())
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, transcriptView(sess.Snapshot(), nil))
	case http.MethodPost:
		var body struct {
			Message string `json:"message"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		reply, err := sess.Send(r.Context(), body.Message)
		s.writeChatResult(w, r, sess, reply, err)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleChatOpen handles POST /api/chat/open with an optional message that
// is sent as soon as the panel opens.
func (s *Server) handleChatOpen(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if r.Body != nil {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body)
		if err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
			return
		}
	}
	sess := s.sessions.chat(r.Context())
	reply, err := sess.OpenWithMessage(r.Context(), body.Message)
	s.writeChatResult(w, r, sess, reply, err)
}

func (s *Server) handleChatClose(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess := s.sessions.chat(r.Context())
	sess.Close()
	WriteJSON(w, http.StatusOK, transcriptView(sess.Snapshot(), nil))
}

func (s *Server) handleChatNew(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess := s.sessions.chat(r.Context())
	sess.NewConversation()
	WriteJSON(w, http.StatusOK, transcriptView(sess.Snapshot(), nil))
}

// handleChatConversations handles GET /api/chat/conversations.
func (s *Server) handleChatConversations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	convs, err := s.sessions.chat(r.Context()).History(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

// handleChatConversationLoad handles POST /api/chat/conversations/{id},
// replacing the transcript with a stored conversation.
func (s *Server) handleChatConversationLoad(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	id := PathParam(r, "/api/chat/conversations/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "conversation id is required")
		return
	}
	sess := s.sessions.chat(r.Context())
	if err := sess.LoadConversation(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, transcriptView(sess.Snapshot(), nil))
}

// handleChatPending handles DELETE /api/chat/pending: a preset still waiting
// for an in-flight reply is dropped instead of sent.
func (s *Server) handleChatPending(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	sess := s.sessions.chat(r.Context())
	dropped, _ := sess.ConsumePendingMessage()
	WriteJSON(w, http.StatusOK, map[string]any{
		"dropped":    dropped,
		"transcript": transcriptView(sess.Snapshot(), nil),
	})
}
