package chat

import (
	"sync"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
)

// Registry keeps one Session per session key.
type Registry struct {
	api    interfaces.AgentAPI
	logger *common.Logger
	opts   []Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(api interfaces.AgentAPI, logger *common.Logger, opts ...Option) *Registry {
	return &Registry{
		api:      api,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for key, creating it on first use.
func (r *Registry) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		s = NewSession(r.api, r.logger, r.opts...)
		r.sessions[key] = s
	}
	return s
}

// Drop forgets the session for key.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	delete(r.sessions, key)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
