package common

import (
	"context"
	"strings"
)

// SessionContext carries the caller's credentials through a request. The BFF
// builds one from the incoming Authorization header; the CLI builds one from the
// persisted token.
type SessionContext struct {
	Token      string
	SessionKey string
	RequestID  string
}

type contextKey int

const (
	sessionContextKey contextKey = iota
)

// WithSession stores a SessionContext in the request context.
func WithSession(ctx context.Context, sc *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey, sc)
}

// SessionFromContext retrieves the SessionContext from context, or nil if absent.
func SessionFromContext(ctx context.Context) *SessionContext {
	sc, _ := ctx.Value(sessionContextKey).(*SessionContext)
	return sc
}

// ResolveToken returns the bearer token from context, or "" when none is present.
func ResolveToken(ctx context.Context) string {
	if sc := SessionFromContext(ctx); sc != nil {
		return sc.Token
	}
	return ""
}

// ResolveSessionKey returns the session key used to scope per-user state,
// or "anonymous" when no session is present.
func ResolveSessionKey(ctx context.Context) string {
	if sc := SessionFromContext(ctx); sc != nil && sc.SessionKey != "" {
		return sc.SessionKey
	}
	return "anonymous"
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
