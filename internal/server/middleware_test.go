package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/common"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "anonymous", sessionKey(""))

	k := sessionKey("tok-123")
	assert.Len(t, k, 32)
	assert.NotContains(t, k, "tok-123")
	assert.Equal(t, k, sessionKey("tok-123"))
	assert.NotEqual(t, k, sessionKey("tok-124"))
}

func TestRequestToken_HeaderBeforeCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", requestToken(req))

	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "cookie-tok"})
	assert.Equal(t, "cookie-tok", requestToken(req))

	req.Header.Set("Authorization", "Bearer header-tok")
	assert.Equal(t, "header-tok", requestToken(req))
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/feedback/abc/similar", "/api/feedback"},
		{"/api/health", "/api/health"},
		{"/metrics", "/metrics"},
		{"/", "/"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		assert.Equal(t, tt.want, routeLabel(req), tt.path)
	}
}

func TestCorsMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		h := corsMiddleware([]string{"http://app.local"})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://app.local")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unlisted origin gets no allow header", func(t *testing.T) {
		h := corsMiddleware([]string{"http://app.local"})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://evil.local")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		h := corsMiddleware([]string{"*"})(next)
		req := httptest.NewRequest(http.MethodOptions, "/api/feedback", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCorrelationID_PreservedFromRequest(t *testing.T) {
	h := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get("X-Correlation-ID"), 8)
}

func TestSessionMiddleware_AttachesSessionContext(t *testing.T) {
	var got *common.SessionContext
	h := correlationIDMiddleware(sessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.SessionFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("X-Correlation-ID", "corr-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, sessionKey("tok"), got.SessionKey)
	assert.Equal(t, "corr-1", got.RequestID)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPathParts(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/specs/s1/download/", nil)
	assert.Equal(t, []string{"s1", "download"}, pathParts(req, "/api/specs/"))

	req = httptest.NewRequest(http.MethodGet, "/api/specs/", nil)
	assert.Nil(t, pathParts(req, "/api/specs/"))

}

func TestPathParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/customers/c9/trend.png", nil)
	assert.Equal(t, "c9", PathParam(req, "/api/customers/", "/trend.png"))
	assert.Equal(t, "c9", PathParam(req, "/api/customers/", ""))
	assert.Equal(t, "", PathParam(req, "/api/specs/", ""))
}

func TestWriteBytes_SetsDisposition(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteBytes(rec, "text/markdown", "prd.md", []byte("# PRD"))
	assert.Equal(t, "text/markdown", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="prd.md"`)
	assert.Equal(t, "# PRD", rec.Body.String())
}
