package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/models"
)

func TestAnalyticsParams(t *testing.T) {
	tests := []struct {
		name  string
		slice string
		q     models.AnalyticsQuery
		want  url.Values
	}{
		{
			name:  "default period",
			slice: models.SliceSummary,
			want:  url.Values{"period": {"30d"}},
		},
		{
			name:  "dates ignored without custom",
			slice: models.SliceSentiment,
			q:     models.AnalyticsQuery{Period: "7d", From: "2024-01-01", To: "2024-01-31"},
			want:  url.Values{"period": {"7d"}},
		},
		{
			name:  "custom with both dates",
			slice: models.SliceAreas,
			q:     models.AnalyticsQuery{Period: "custom", From: "2024-01-01", To: "2024-01-31"},
			want:  url.Values{"period": {"custom"}, "from": {"2024-01-01"}, "to": {"2024-01-31"}},
		},
		{
			name:  "custom missing to",
			slice: models.SliceSources,
			q:     models.AnalyticsQuery{Period: "custom", From: "2024-01-01"},
			want:  url.Values{"period": {"custom"}},
		},
		{
			name:  "top issues default limit",
			slice: models.SliceTopIssues,
			q:     models.AnalyticsQuery{Period: "90d"},
			want:  url.Values{"period": {"90d"}, "limit": {"5"}},
		},
		{
			name:  "at risk explicit limit",
			slice: models.SliceAtRisk,
			q:     models.AnalyticsQuery{Period: "1y", Limit: 10},
			want:  url.Values{"period": {"1y"}, "limit": {"10"}},
		},
		{
			name:  "volume areas",
			slice: models.SliceVolume,
			q:     models.AnalyticsQuery{Period: "30d", Areas: []string{"Checkout", "Search"}},
			want:  url.Values{"period": {"30d"}, "areas": {"Checkout,Search"}},
		},
		{
			name:  "areas ignored outside volume",
			slice: models.SliceSegments,
			q:     models.AnalyticsQuery{Period: "30d", Areas: []string{"Checkout"}},
			want:  url.Values{"period": {"30d"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyticsParams(tt.slice, tt.q))
		})
	}
}

func TestAnalytics_UnwrappedBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/summary":
			w.Write([]byte(`{"total_feedback":42,"total_feedback_trend":null,"avg_sentiment":0.2,"active_issues":3,"at_risk_customers":1}`))
		case "/analytics/top-issues":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			w.Write([]byte(`{"issues":[{"product_area":"Checkout","issue_name":"Checkout","feedback_count":9,"severity":"Critical"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	sum, err := c.Summary(context.Background(), models.AnalyticsQuery{Period: "7d"})
	require.NoError(t, err)
	assert.Equal(t, 42, sum.TotalFeedback)
	assert.Nil(t, sum.TotalFeedbackTrend)

	issues, err := c.TopIssues(context.Background(), models.AnalyticsQuery{})
	require.NoError(t, err)
	require.Len(t, issues.Issues, 1)
	assert.Equal(t, models.SeverityCritical, issues.Issues[0].Severity)

	_, err = c.Segments(context.Background(), models.AnalyticsQuery{})
	assert.Equal(t, 404, StatusCode(err))
}

func TestListCustomers_QueryParams(t *testing.T) {
	var q url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		w.Write([]byte(`{"data":[{"id":"c1","company_name":"Acme"}],"pagination":{"page":1,"page_size":20,"total":1}}`))
	}))
	defer srv.Close()

	healthMin := 40.0
	arrMax := 250000.5
	neg := false
	c := NewClient(WithBaseURL(srv.URL))
	list, err := c.ListCustomers(context.Background(), models.CustomerListParams{
		Page:                 2,
		Search:               "ac",
		HealthMin:            &healthMin,
		ARRMax:               &arrMax,
		HasNegativeFeedback:  &neg,
		IncludeFeedbackStats: true,
		SortBy:               models.CustomerSortARR,
		SortOrder:            "desc",
	})
	require.NoError(t, err)

	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "ac", q.Get("search"))
	assert.Equal(t, "40", q.Get("health_min"))
	assert.Equal(t, "250000.5", q.Get("arr_max"))
	assert.Equal(t, "false", q.Get("has_negative_feedback"))
	assert.Equal(t, "true", q.Get("include_feedback_stats"))
	assert.Equal(t, "arr", q.Get("sort_by"))
	assert.False(t, q.Has("health_max"))
	assert.False(t, q.Has("page_size"))
	assert.Equal(t, "Acme", list.Data[0].CompanyName)
}

func TestSearchCustomers_BlankSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "acme", r.URL.Query().Get("q"))
		w.Write([]byte(`{"data":[{"id":"c1","company_name":"Acme"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	matches, err := c.SearchCustomers(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.False(t, called)

	matches, err = c.SearchCustomers(context.Background(), " acme ")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, matches, 1)
}

func TestUploadCSV_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feedback/upload-csv", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "reviews.csv", hdr.Filename)
		assert.Equal(t, "text,date\nslow,2024-01-01\n", string(data))
		w.Write([]byte(`{"data":{"upload_id":"u1","columns":["text","date"],"suggested_mapping":{"text":"text","date":null},"total_rows":1}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	ui, err := c.UploadCSV(context.Background(), models.UploadFeedback, "reviews.csv", strings.NewReader("text,date\nslow,2024-01-01\n"))
	require.NoError(t, err)
	assert.Equal(t, "u1", ui.UploadID)
	require.NotNil(t, ui.SuggestedMapping["text"])
	assert.Equal(t, "text", *ui.SuggestedMapping["text"])
	assert.Nil(t, ui.SuggestedMapping["date"])
}

func TestUploadSteps_Paths(t *testing.T) {
	var paths []string
	var confirm models.UploadConfirm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/confirm") {
			json.NewDecoder(r.Body).Decode(&confirm)
			w.Write([]byte(`{"data":{"upload_id":"u9","status":"confirmed"}}`))
			return
		}
		w.Write([]byte(`{"data":{"upload_id":"u9","total_rows":3,"imported_rows":2,"failed_rows":1}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	name := "company"
	_, err := c.ConfirmUpload(context.Background(), models.UploadCustomers, "u9", models.UploadConfirm{
		ColumnMapping: map[string]*string{"company_name": &name},
	})
	require.NoError(t, err)
	res, err := c.ImportUpload(context.Background(), models.UploadCustomers, "u9")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /customers/upload-csv/u9/confirm",
		"POST /customers/upload-csv/u9/import",
	}, paths)
	assert.Equal(t, "company", *confirm.ColumnMapping["company_name"])
	assert.Equal(t, 1, res.FailedRows)

	_, err = c.ImportUpload(context.Background(), "invoices", "u9")
	assert.Error(t, err)
}

func TestWizardSection_NotFoundIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/product/wizard/goals" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Section not found"}`))
			return
		}
		w.Write([]byte(`{"data":{"section":"basics","data":{"product_name":"Pulse"}}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	sec, err := c.WizardSection(context.Background(), "goals")
	require.NoError(t, err)
	assert.Nil(t, sec)

	sec, err = c.WizardSection(context.Background(), "basics")
	require.NoError(t, err)
	require.NotNil(t, sec)
	assert.JSONEq(t, `{"product_name":"Pulse"}`, string(sec.Data))

	_, err = c.WizardSection(context.Background(), "pricing")
	assert.Error(t, err)
}

func TestAgent_ChatAndConversations(t *testing.T) {
	var chatBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/agent/chat":
			json.NewDecoder(r.Body).Decode(&chatBody)
			w.Write([]byte(`{"conversation_id":"cv1","response":"Hi","tools_used":[],"citations":[]}`))
		case "/agent/conversations":
			w.Write([]byte(`{"data":[{"id":"cv1","title":"First"}]}`))
		case "/agent/conversations/cv1":
			w.Write([]byte(`{"id":"cv1","title":"First","messages":[{"role":"user","content":"hello"}]}`))
		}
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	resp, err := c.Chat(context.Background(), models.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "cv1", resp.ConversationID)
	assert.Contains(t, chatBody, "conversation_id")
	assert.Nil(t, chatBody["conversation_id"])
	assert.Nil(t, chatBody["context"])

	convs, err := c.Conversations(context.Background())
	require.NoError(t, err)
	assert.Len(t, convs, 1)

	conv, err := c.Conversation(context.Background(), "cv1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, models.RoleUser, conv.Messages[0].Role)
}

func TestSpecs_UpdateAndDelete(t *testing.T) {
	var methods []string
	var update map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			json.NewDecoder(r.Body).Decode(&update)
			w.Write([]byte(`{"data":{"id":"s1","title":"T","status":"final"}}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	status := models.SpecStatusFinal
	spec, err := c.UpdateSpec(context.Background(), "s1", models.UpdateSpecRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "final", spec.Status)
	assert.Equal(t, map[string]any{"status": "final"}, update)

	require.NoError(t, c.DeleteSpec(context.Background(), "s1"))
	assert.Equal(t, []string{"PUT /specs/s1", "DELETE /specs/s1"}, methods)
}

func TestPreferences_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/preferences", r.URL.Path)
		if r.Method == http.MethodPut {
			io.Copy(w, r.Body)
			return
		}
		w.Write([]byte(`{"dashboard_preferences":{"visible_widgets":["summary"],"default_period":"7d"}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	prefs, err := c.GetPreferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"summary"}, prefs.DashboardPreferences.VisibleWidgets)

	prefs.DashboardPreferences.VisibleWidgets = models.DefaultWidgets()
	saved, err := c.PutPreferences(context.Background(), *prefs)
	require.NoError(t, err)
	assert.Len(t, saved.DashboardPreferences.VisibleWidgets, 9)
}
