package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/models"
)

type memTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (m *memTokens) Token(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memTokens) ClearToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"user_id":"u1","email":"a@b.co"}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithTokenProvider(&memTokens{token: "tok-1"}))
	user, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "u1", user.UserID)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"kibana_url":""}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithTokenProvider(&memTokens{}))
	_, err := c.AppConfig(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestClient_ContextTokensFromSession(t *testing.T) {
	var gotAuth, gotCorrelation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCorrelation = r.Header.Get("X-Correlation-ID")
		w.Write([]byte(`{"kibana_url":"https://kb"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	ctx := common.WithSession(context.Background(), &common.SessionContext{Token: "sess", RequestID: "ab12cd34"})
	cfg, err := c.AppConfig(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Bearer sess", gotAuth)
	assert.Equal(t, "ab12cd34", gotCorrelation)
	assert.Equal(t, "https://kb", cfg.KibanaURL)
}

func TestClient_UnauthorizedClearsTokenOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid token"}`))
	}))
	defer srv.Close()

	tokens := &memTokens{token: "expired"}
	var redirects atomic.Int32
	var lastPath atomic.Value
	c := NewClient(
		WithBaseURL(srv.URL),
		WithTokenProvider(tokens),
		WithUnauthorizedHandler(func(ctx context.Context, loginPath string) {
			redirects.Add(1)
			lastPath.Store(loginPath)
		}),
	)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Summary(context.Background(), models.AnalyticsQuery{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnauthorized))
		assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	}
	assert.Equal(t, int32(1), redirects.Load())
	assert.Equal(t, "/login", lastPath.Load())
	assert.Equal(t, 1, tokens.cleared)
	assert.Empty(t, tokens.Token(context.Background()))
}

func TestClient_UnauthorizedRearmsAfterLogin(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Write([]byte(`{"data":{"access_token":"fresh","user":{"user_id":"u1"}}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &memTokens{token: "old"}
	c := NewClient(
		WithBaseURL(srv.URL),
		WithTokenProvider(tokens),
		WithUnauthorizedHandler(func(ctx context.Context, loginPath string) { calls.Add(1) }),
	)

	_, _ = c.Me(context.Background())
	_, _ = c.Me(context.Background())
	assert.Equal(t, int32(1), calls.Load())

	resp, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.AccessToken)

	tokens.token = "fresh"
	_, _ = c.Me(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RejectedTokensAreBounded(t *testing.T) {
	var calls atomic.Int32
	c := NewClient(
		WithTokenProvider(&memTokens{}),
		WithUnauthorizedHandler(func(ctx context.Context, loginPath string) { calls.Add(1) }),
	)
	ctx := context.Background()

	for i := 0; i < maxRejectedTokens+10; i++ {
		c.handleUnauthorized(ctx, fmt.Sprintf("tok-%d", i))
	}
	assert.Equal(t, int32(maxRejectedTokens+10), calls.Load())

	c.mu.Lock()
	assert.Len(t, c.rejectedOrder, maxRejectedTokens)
	assert.Len(t, c.rejected, maxRejectedTokens+1)
	_, oldest := c.rejected["tok-0"]
	c.mu.Unlock()
	assert.False(t, oldest)

	// Recent tokens stay quiet; a forgotten one fires again.
	c.handleUnauthorized(ctx, fmt.Sprintf("tok-%d", maxRejectedTokens+9))
	assert.Equal(t, int32(maxRejectedTokens+10), calls.Load())
	c.handleUnauthorized(ctx, "tok-0")
	assert.Equal(t, int32(maxRejectedTokens+11), calls.Load())
}

func TestClient_NonUnauthorizedErrorsLeaveToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"boom"}`))
	}))
	defer srv.Close()

	tokens := &memTokens{token: "keep"}
	c := NewClient(WithBaseURL(srv.URL), WithTokenProvider(tokens))
	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 500, StatusCode(err))
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 0, tokens.cleared)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"detail string", `{"detail":"Not found"}`, 404, "Not found"},
		{"error field", `{"error":"bad input"}`, 400, "bad input"},
		{"validation list", `{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, 422, "field required; too short"},
		{"plain text", "upstream exploded", 502, "upstream exploded"},
		{"empty body", "", 503, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body), tt.status))
		})
	}

	long := strings.Repeat("x", 500)
	assert.Len(t, errorMessage([]byte(long), 500), 200)
}

func TestClient_ObserverSeesRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"f1","text":"x"}}`))
	}))
	defer srv.Close()

	var route string
	var status int
	c := NewClient(WithBaseURL(srv.URL), WithObserver(func(method, path string, code int, elapsed time.Duration) {
		route = path
		status = code
	}))
	_, err := c.GetFeedback(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "/feedback/f1", route)
	assert.Equal(t, 200, status)

	assert.Equal(t, "/customers/c1", routeOf("/customers/c1/sentiment-trend?x=1"))
	assert.Equal(t, "/analytics/summary", routeOf("/analytics/summary?period=7d"))
}

func TestClient_RateLimitRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1))
	_, err := c.AppConfig(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.AppConfig(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestSearchFeedback_AppliesDefaults(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search/feedback", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.Write([]byte(`{"data":null,"pagination":{"page":1,"page_size":20,"total":0},"query":""}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	resp, err := c.SearchFeedback(context.Background(), models.SearchRequest{})
	require.NoError(t, err)

	assert.Equal(t, "", body["query"])
	assert.Nil(t, body["filters"])
	assert.Equal(t, "relevance", body["sort_by"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(20), body["page_size"])
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestSearchFeedback_SendsFilters(t *testing.T) {
	var req models.SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&req)
		w.Write([]byte(`{"data":[{"id":"f1","text":"slow"}],"pagination":{"page":2,"page_size":20,"total":21},"query":"slow"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	resp, err := c.SearchFeedback(context.Background(), models.SearchRequest{
		Query:   "slow",
		Filters: &models.SearchFilters{Sentiment: []string{"negative"}, DateFrom: "2024-01-01"},
		SortBy:  models.SortDate,
		Page:    2,
	})
	require.NoError(t, err)

	require.NotNil(t, req.Filters)
	assert.Equal(t, []string{"negative"}, req.Filters.Sentiment)
	assert.Equal(t, "2024-01-01", req.Filters.DateFrom)
	assert.Equal(t, "date", req.SortBy)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 2, resp.Pagination.Pages())
	assert.Len(t, resp.Data, 1)
}
