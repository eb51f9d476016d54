// Package auth keeps the bearer token for a local client (the CLI) in a
// key-value store and serves it to the API client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
)

// TokenKey is where the bearer token is stored.
const TokenKey = "ce_token"

// Session is a TokenProvider over a KeyValueStore. Tokens whose exp claim has
// passed are cleared instead of being sent.
type Session struct {
	kv     interfaces.KeyValueStore
	logger *common.Logger
	now    func() time.Time
	static string
}

var _ interfaces.TokenProvider = (*Session)(nil)

// NewSession creates a session over kv. A non-empty static token (from config
// or FEEDPULSE_TOKEN) is used whenever nothing is stored.
func NewSession(kv interfaces.KeyValueStore, static string, logger *common.Logger) *Session {
	return &Session{kv: kv, logger: logger, now: time.Now, static: static}
}

// Token returns the stored token, or "" when there is none or it has expired.
func (s *Session) Token(ctx context.Context) string {
	token, err := s.kv.Get(ctx, TokenKey)
	if errors.Is(err, interfaces.ErrKeyNotFound) || (err == nil && token == "") {
		return s.static
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read stored token")
		return ""
	}
	if exp, ok := Expiry(token); ok && !s.now().Before(exp) {
		s.logger.Info().Time("expired_at", exp).Msg("Stored token expired")
		if err := s.ClearToken(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear expired token")
		}
		return ""
	}
	return token
}

// SetToken stores a token after login or signup.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token.
func (s *Session) ClearToken(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a usable token is present.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// Expiry reads the exp claim without verifying the signature. The API is the
// only party that verifies; the client just avoids sending a dead token.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
