package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records bearer tokens and serves the endpoints the CLI tests hit.
type fakeAPI struct {
	*httptest.Server
	mu    sync.Mutex
	auths []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auths = append(f.auths, r.Header.Get("Authorization"))
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch strings.TrimPrefix(r.URL.Path, "/api/v1") {
		case "/auth/login":
			io.WriteString(w, `{"data":{"user":{"email":"pm@example.com","full_name":"Pat Morgan","org_name":"Acme"},"access_token":"tok-123"}}`)
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok-123" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"detail":"Not authenticated"}`)
				return
			}
			io.WriteString(w, `{"data":{"email":"pm@example.com","full_name":"Pat Morgan","org_name":"Acme"}}`)
		case "/search/feedback":
			io.WriteString(w, `{"data":[{"id":"f1","text":"Checkout is slow","sentiment":"negative","source":"support_ticket"}],"pagination":{"page":1,"page_size":20,"total":1}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.auths) == 0 {
		return ""
	}
	return f.auths[len(f.auths)-1]
}

func writeCLIConfig(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()
	config := `
[api]
base_url = "` + apiURL + `/api/v1"
rate_limit = 0

[storage]
backend = "sqlite"

[storage.sqlite]
path = "` + filepath.Join(dir, "cli.db") + `"

[logging]
level = "error"
outputs = ["console"]
`
	path := filepath.Join(dir, "feedpulse.toml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))
	return path
}

func runCLI(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_LoginPersistsToken(t *testing.T) {
	api := newFakeAPI(t)
	config := writeCLIConfig(t, api.URL)

	_, err := runCLI(t, config, "whoami")
	assert.Error(t, err)

	out, err := runCLI(t, config, "login", "--email", "pm@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as **Pat Morgan**")

	out, err = runCLI(t, config, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "pm@example.com")
	assert.Equal(t, "Bearer tok-123", api.lastAuth())

	_, err = runCLI(t, config, "logout")
	require.NoError(t, err)
	_, err = runCLI(t, config, "whoami")
	assert.Error(t, err)
}

func TestCLI_SearchMarksStarred(t *testing.T) {
	api := newFakeAPI(t)
	config := writeCLIConfig(t, api.URL)

	out, err := runCLI(t, config, "star", "f1")
	require.NoError(t, err)
	assert.Equal(t, "Starred f1\n", out)

	out, err = runCLI(t, config, "search", "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "# Feedback matching \"checkout\"")
	assert.Contains(t, out, "| ★ | f1 | Checkout is slow |")

	out, err = runCLI(t, config, "--json", "star", "list")
	require.NoError(t, err)
	assert.JSONEq(t, `["f1"]`, out)
}

func TestCLI_ThemeDefaultsAndToggles(t *testing.T) {
	api := newFakeAPI(t)
	config := writeCLIConfig(t, api.URL)

	out, err := runCLI(t, config, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = runCLI(t, config, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = runCLI(t, config, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)
}

func TestCLI_StarAddRemove(t *testing.T) {
	api := newFakeAPI(t)
	config := writeCLIConfig(t, api.URL)

	_, err := runCLI(t, config, "star", "add", "f1")
	require.NoError(t, err)
	out, err := runCLI(t, config, "star", "add", "f2")
	require.NoError(t, err)
	assert.Equal(t, "- ★ f1\n- ★ f2\n", out)

	out, err = runCLI(t, config, "star", "remove", "f1")
	require.NoError(t, err)
	assert.Equal(t, "- ★ f2\n", out)
}

func TestSearchFlags_URLThenFlags(t *testing.T) {
	f := &searchFlags{
		link:      "/feedback?sentiment=negative&area=Checkout&page=4",
		areas:     []string{"Search", "Billing"},
		dateRange: "7",
	}
	v, err := f.values()
	require.NoError(t, err)
	assert.Equal(t, "negative", v.Get("sentiment"))
	assert.Equal(t, "Search,Billing", v.Get("area"))
	assert.Equal(t, "7", v.Get("range"))
	assert.Equal(t, "4", v.Get("page"))

	f = &searchFlags{link: "sentiment=positive"}
	v, err = f.values()
	require.NoError(t, err)
	assert.Equal(t, "positive", v.Get("sentiment"))

	f = &searchFlags{link: "/feedback?q=%zz"}
	_, err = f.values()
	assert.Error(t, err)
}

func TestSearchFlags_HasCustomer(t *testing.T) {
	f := &searchFlags{link: "/feedback?has_customer=1", linked: "no"}
	v, err := f.values()
	require.NoError(t, err)
	assert.Equal(t, "0", v.Get("has_customer"))

	f = &searchFlags{linked: "sometimes"}
	_, err = f.values()
	assert.Error(t, err)
}
