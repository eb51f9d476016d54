package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/feedpulse/internal/app"
	"github.com/bobmcallan/feedpulse/internal/common"
)

// SessionIdleTimeout is how long per-session state lives without requests.
const SessionIdleTimeout = 30 * time.Minute

// Server wraps the HTTP server and application reference.
type Server struct {
	app          *app.App
	server       *http.Server
	logger       *common.Logger
	sessions     *sessionStore
	shutdownChan chan struct{}
	janitorCtx   context.Context
	stopJanitor  context.CancelFunc
}

// SetShutdownChannel sets the channel that will be signaled when HTTP shutdown is requested.
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

// NewServer creates the BFF HTTP server.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:      a,
		logger:   a.Logger,
		sessions: newSessionStore(a, SessionIdleTimeout),
	}
	s.janitorCtx, s.stopJanitor = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, a)

	host := a.Config.Server.Host
	port := a.Config.Server.Port

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	go s.sessions.janitor(s.janitorCtx, time.Minute)

	s.logger.Info().
		Str("addr", s.server.Addr).
		Str("api", s.app.Client.BaseURL()).
		Msg("Starting feedpulse server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopJanitor()
	s.sessions.closeAll()
	return s.server.Shutdown(ctx)
}
