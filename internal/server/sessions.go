package server

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/bobmcallan/feedpulse/internal/app"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/querystate"
	"github.com/bobmcallan/feedpulse/internal/services/chat"
	"github.com/bobmcallan/feedpulse/internal/services/customers"
	"github.com/bobmcallan/feedpulse/internal/services/dashboard"
	"github.com/bobmcallan/feedpulse/internal/services/search"
	"github.com/bobmcallan/feedpulse/internal/storage"
)

// session is the per-user state the BFF keeps between requests: the list
// URL and its fetcher, the customer picker, the dashboard loader, and the
// persisted theme and starred set.
type session struct {
	key       string
	list      *querystate.Store
	fetcher   *search.Fetcher
	picker    *customers.Autocomplete
	dashboard *dashboard.Service
	starred   *storage.Starred
	theme     *storage.Theme

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// sessionStore maps session keys to their state. Chat sessions live in a
// chat.Registry under the same keys.
type sessionStore struct {
	app    *app.App
	chats  *chat.Registry
	idle   time.Duration
	now    func() time.Time
	logger *common.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(a *app.App, idle time.Duration) *sessionStore {
	return &sessionStore{
		app:      a,
		chats:    chat.NewRegistry(a.Client, a.Logger, chat.WithUnavailableMessage(a.Config.Chat.UnavailableMessage)),
		idle:     idle,
		now:      time.Now,
		logger:   a.Logger,
		sessions: make(map[string]*session),
	}
}

// get returns the state for the request's session, creating it on first use.
func (st *sessionStore) get(ctx context.Context) *session {
	key := common.ResolveSessionKey(ctx)
	now := st.now()

	st.mu.Lock()
	s, ok := st.sessions[key]
	if !ok {
		s = st.newSession(key)
		st.sessions[key] = s
	}
	st.mu.Unlock()

	s.touch(now)
	return s
}

func (st *sessionStore) newSession(key string) *session {
	a := st.app
	dash := dashboard.NewService(a.Client, a.Client, a.Client, a.Config.Dashboard, a.Logger)
	dash.Loader().SetObserver(a.Metrics.ObserveSlice)

	kv := storage.NewScoped(a.Store, key)
	return &session{
		key:       key,
		list:      querystate.FromValues(url.Values{}),
		fetcher:   search.NewFetcherFromConfig(a.Client, a.Logger, a.Config.Search),
		picker:    customers.NewAutocomplete(a.Client, a.Logger, a.Config.Search.GetDebounce(), nil),
		dashboard: dash,
		starred:   storage.NewStarred(kv, a.Logger),
		theme:     storage.NewTheme(kv),
	}
}

// chat returns the chat panel for the request's session.
func (st *sessionStore) chat(ctx context.Context) *chat.Session {
	return st.chats.Get(common.ResolveSessionKey(ctx))
}

// drop forgets everything held for key, e.g. on logout.
func (st *sessionStore) drop(key string) {
	st.mu.Lock()
	s, ok := st.sessions[key]
	delete(st.sessions, key)
	st.mu.Unlock()
	if ok {
		s.fetcher.Close()
		s.picker.Close()
	}
	st.chats.Drop(key)
}

// sweep drops sessions idle for longer than the timeout and returns how many.
func (st *sessionStore) sweep() int {
	cutoff := st.now().Add(-st.idle)

	st.mu.Lock()
	var stale []string
	for key, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, key)
		}
	}
	st.mu.Unlock()

	for _, key := range stale {
		st.drop(key)
	}
	return len(stale)
}

func (st *sessionStore) janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.sweep(); n > 0 {
				st.logger.Debug().Int("dropped", n).Msg("Idle sessions dropped")
			}
		}
	}
}

func (st *sessionStore) closeAll() {
	st.mu.Lock()
	keys := make([]string, 0, len(st.sessions))
	for key := range st.sessions {
		keys = append(keys, key)
	}
	st.mu.Unlock()
	for _, key := range keys {
		st.drop(key)
	}
}

func (st *sessionStore) count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
