package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// remote fakes the posts service.
type remote struct {
	*httptest.Server

	published atomic.Int32
}

func newRemote(t *testing.T, titles ...string) *remote {
	t.Helper()

	r := &remote{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, _ *http.Request) {
		posts := make([]map[string]any, len(titles))
		for i, title := range titles {
			posts[i] = map[string]any{"id": i + 1, "userId": 1, "title": title, "body": ""}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(posts)
	})
	mux.HandleFunc("GET /posts/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"title":"x"}`)
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, _ *http.Request) {
		r.published.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":101}`)
	})

	r.Server = httptest.NewServer(mux)
	t.Cleanup(r.Close)

	return r
}

// workspace is a config dir whose test profile stores slots under dataDir.
type workspace struct {
	configDir string
	dataDir   string
}

func newWorkspace(t *testing.T, baseURL string) *workspace {
	t.Helper()

	root := t.TempDir()
	ws := &workspace{configDir: filepath.Join(root, "configs"), dataDir: filepath.Join(root, "data")}

	if baseURL == "" {
		baseURL = "http://127.0.0.1:1"
	}

	profile := fmt.Sprintf(`app:
  environment: test
log:
  level: error
  format: text
client:
  timeout: 2s
  retry:
    max_attempts: 1
services:
  quote:
    base_url: %s
    name: posts-service
storage:
  driver: file
  file:
    dir: %s
sync:
  enabled: false
`, baseURL, ws.dataDir)

	require.NoError(t, os.MkdirAll(ws.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.configDir, "test.yaml"), []byte(profile), 0o600))

	return ws
}

// run executes the CLI with args and returns stdout.
func (ws *workspace) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := newRootCommand(BuildInfo{Version: "test"})

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--profile", "test", "--config-dir", ws.configDir}, args...))

	err := root.ExecuteContext(t.Context())

	return stdout.String(), err
}

func (ws *workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := ws.run(t, "", args...)
	require.NoError(t, err, out)

	return out
}

func decodeQuotes(t *testing.T, out string) []domain.Quote {
	t.Helper()

	var quotes []domain.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &quotes), out)

	return quotes
}

func TestResolveProfile(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "")
	assert.Equal(t, "local", (&options{}).resolveProfile())

	t.Setenv("APP_ENVIRONMENT", "qa")
	assert.Equal(t, "qa", (&options{}).resolveProfile())
	assert.Equal(t, "prod", (&options{profile: "prod"}).resolveProfile())
}

func TestList_SeedsOnFirstRun(t *testing.T) {
	ws := newWorkspace(t, "")

	got := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list"))

	assert.Equal(t, domain.SeedQuotes(), got)
	assert.NoFileExists(t, filepath.Join(ws.dataDir, "quotes"), "loading never writes")
}

func TestAdd_PersistsAcrossRuns(t *testing.T) {
	ws := newWorkspace(t, "")

	out := ws.mustRun(t, "--offline", "add", "--text", "Ship it.", "--category", "Work")
	assert.Contains(t, out, `added "Ship it." to Work`)

	got := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list", "--category", "Work"))
	assert.Equal(t, []domain.Quote{{Text: "Ship it.", Category: "Work"}}, got)

	all := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list", "--category", domain.AllCategories))
	assert.Len(t, all, len(domain.SeedQuotes())+1)
}

func TestAdd_Rejects(t *testing.T) {
	ws := newWorkspace(t, "")

	_, err := ws.run(t, "", "--offline", "add", "--text", "No category")
	require.Error(t, err)

	_, err = ws.run(t, "", "--offline", "add", "--text", "   ", "--category", "Work")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	all := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list", "--category", domain.AllCategories))
	assert.Equal(t, domain.SeedQuotes(), all)
}

func TestAdd_Publishes(t *testing.T) {
	r := newRemote(t)
	ws := newWorkspace(t, r.URL)

	ws.mustRun(t, "add", "--text", "Published.", "--category", "Net")

	assert.Equal(t, int32(1), r.published.Load())
}

func TestAdd_PublishFailureKeepsQuote(t *testing.T) {
	ws := newWorkspace(t, "")

	ws.mustRun(t, "add", "--text", "Unreachable remote.", "--category", "Net")

	got := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list", "--category", "Net"))
	assert.Equal(t, []domain.Quote{{Text: "Unreachable remote.", Category: "Net"}}, got)
}

func TestRandom(t *testing.T) {
	ws := newWorkspace(t, "")
	ws.mustRun(t, "--offline", "add", "--text", "Only one.", "--category", "Solo")

	out := ws.mustRun(t, "--offline", "random", "--category", "Solo")
	assert.Equal(t, "\"Only one.\" (Solo)\n", out)

	_, err := ws.run(t, "", "--offline", "random", "--category", "Missing")
	assert.ErrorIs(t, err, errNoQuotes)
}

func TestListRememberAndCategories(t *testing.T) {
	ws := newWorkspace(t, "")
	ws.mustRun(t, "--offline", "add", "--text", "Ship it.", "--category", "Work")
	ws.mustRun(t, "--offline", "list", "--category", "Work", "--remember")

	got := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list"))
	assert.Equal(t, []domain.Quote{{Text: "Ship it.", Category: "Work"}}, got)

	out := ws.mustRun(t, "--offline", "categories")
	assert.Contains(t, out, "  all\n")
	assert.Contains(t, out, "* Work\n")

	var cats struct {
		Categories []string `json:"categories"`
		Selected   string   `json:"selected"`
	}
	require.NoError(t, json.Unmarshal([]byte(ws.mustRun(t, "--offline", "--json", "categories")), &cats))
	assert.Equal(t, domain.AllCategories, cats.Categories[0])
	assert.Equal(t, "Work", cats.Selected)
}

func TestExportImport(t *testing.T) {
	src := newWorkspace(t, "")
	src.mustRun(t, "--offline", "add", "--text", "Carried over.", "--category", "Move")

	file := filepath.Join(t.TempDir(), "quotes.json")
	src.mustRun(t, "--offline", "export", "--out", file)

	exported, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(exported), "\n  {")

	dst := newWorkspace(t, "")
	out := dst.mustRun(t, "--offline", "import", file)
	assert.Contains(t, out, fmt.Sprintf("imported %d quotes", len(domain.SeedQuotes())+1))

	got := decodeQuotes(t, dst.mustRun(t, "--offline", "--json", "list", "--category", "Move"))
	assert.Equal(t, []domain.Quote{{Text: "Carried over.", Category: "Move"}}, got)
}

func TestImport_Stdin(t *testing.T) {
	ws := newWorkspace(t, "")

	out, err := ws.run(t, `[{"text":"From stdin.","category":"Pipe"}]`, "--offline", "--json", "import", "-")
	require.NoError(t, err)

	var resp map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp["imported"])
	assert.Equal(t, len(domain.SeedQuotes())+1, resp["total"])
}

func TestImport_MalformedLeavesCollection(t *testing.T) {
	ws := newWorkspace(t, "")
	ws.mustRun(t, "--offline", "add", "--text", "Keep me.", "--category", "Safe")

	_, err := ws.run(t, `{"quotes":"nope"}`, "--offline", "import", "-")
	require.Error(t, err)
	assert.True(t, domain.IsMalformedDocument(err))

	all := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list", "--category", domain.AllCategories))
	assert.Len(t, all, len(domain.SeedQuotes())+1)
}

func TestSync(t *testing.T) {
	r := newRemote(t, "Remote wisdom.", "  ", "Ship it.")
	ws := newWorkspace(t, r.URL)
	ws.mustRun(t, "--offline", "add", "--text", "Ship it.", "--category", "Work")

	out := ws.mustRun(t, "--json", "sync")

	var report struct {
		Fetched int `json:"fetched"`
		Added   int `json:"added"`
		Total   int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, len(domain.SeedQuotes())+2, report.Total)

	got := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list", "--category", domain.AllCategories))
	assert.Contains(t, got, domain.Quote{Text: "Ship it.", Category: "Work"}, "local copy wins")
	assert.Contains(t, got, domain.Quote{Text: "Remote wisdom.", Category: domain.ServerCategory})
	assert.NotContains(t, got, domain.Quote{Text: "Ship it.", Category: domain.ServerCategory})
}

func TestSync_Offline(t *testing.T) {
	ws := newWorkspace(t, "")

	_, err := ws.run(t, "", "--offline", "sync")
	assert.ErrorIs(t, err, errOffline)
}

func TestSync_RemoteDown(t *testing.T) {
	ws := newWorkspace(t, "")

	_, err := ws.run(t, "", "sync")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	all := decodeQuotes(t, ws.mustRun(t, "--offline", "--json", "list", "--category", domain.AllCategories))
	assert.Equal(t, domain.SeedQuotes(), all)
}

func TestInvalidConfig(t *testing.T) {
	ws := newWorkspace(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(ws.configDir, "broken.yaml"), []byte("storage:\n  driver: floppy\n"), 0o600))

	root := newRootCommand(BuildInfo{})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--profile", "broken", "--config-dir", ws.configDir, "--offline", "list"})

	err := root.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestServe(t *testing.T) {
	r := newRemote(t, "Served remotely.")
	ws := newWorkspace(t, r.URL)

	// The profile disables the scheduler. The first run starts immediately.
	t.Setenv("APP_SYNC_ENABLED", "true")
	t.Setenv("APP_SYNC_INTERVAL", "1h")

	opts := &options{profile: "test", configDir: ws.configDir}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	s, err := bootstrap(ctx, opts, io.Discard)
	require.NoError(t, err)
	defer s.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- serve(ctx, s, BuildInfo{Version: "test"}, ln) }()

	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		for _, q := range s.store.All() {
			if q.Text == "Served remotely." {
				return true
			}
		}

		return false
	}, 5*time.Second, 20*time.Millisecond, "scheduler runs once at start")

	resp, err := http.Get(base + "/api/v1/quotes?category=Server")
	require.NoError(t, err)

	var page struct {
		Quotes []domain.Quote `json:"quotes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	_ = resp.Body.Close()
	assert.Equal(t, []domain.Quote{{Text: "Served remotely.", Category: domain.ServerCategory}}, page.Quotes)

	resp, err = http.Get(base + "/-/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), "quotekeeper_sync_skipped_total")

	resp, err = http.Post(base+"/api/v1/sync", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_ReloadsExternalEdits(t *testing.T) {
	ws := newWorkspace(t, "")
	t.Setenv("APP_STORAGE_FILE_WATCH", "true")

	opts := &options{profile: "test", configDir: ws.configDir, offline: true}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	s, err := bootstrap(ctx, opts, io.Discard)
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.cfg.Storage.File.Watch)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- serve(ctx, s, BuildInfo{}, ln) }()

	// Wait for the server so the watcher is running too.
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/-/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	edit := []byte(`[{"text":"Edited elsewhere.","category":"Disk"}]`)

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(ws.dataDir, "quotes"), edit, 0o600)
		return s.store.Len() == 1
	}, 5*time.Second, 300*time.Millisecond)

	assert.Equal(t, []domain.Quote{{Text: "Edited elsewhere.", Category: "Disk"}}, s.store.All())

	cancel()
	require.NoError(t, <-done)
}

func TestReloadQuotes_LogsOnce(t *testing.T) {
	ws := newWorkspace(t, "")
	t.Setenv("APP_LOG_LEVEL", "info")

	var logs bytes.Buffer

	s, err := bootstrap(t.Context(), &options{profile: "test", configDir: ws.configDir, offline: true}, &logs)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.MkdirAll(ws.dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.dataDir, "quotes"),
		[]byte(`[{"text":"Edited elsewhere.","category":"Disk"}]`), 0o600))

	logs.Reset()
	s.reloadQuotes(t.Context())

	assert.Equal(t, 1, s.store.Len())
	assert.Equal(t, 1, strings.Count(logs.String(), "quotes reloaded"), logs.String())

	require.NoError(t, os.WriteFile(filepath.Join(ws.dataDir, "quotes"), []byte(`[{"text":`), 0o600))

	logs.Reset()
	s.reloadQuotes(t.Context())

	assert.Equal(t, 1, s.store.Len(), "unreadable edit keeps the current quotes")
	assert.Contains(t, logs.String(), "keeping current quotes")
	assert.NotContains(t, logs.String(), "quotes reloaded")
}

func TestServe_OfflineLogsWhySyncIsOff(t *testing.T) {
	ws := newWorkspace(t, "")
	t.Setenv("APP_LOG_LEVEL", "info")
	t.Setenv("APP_SYNC_ENABLED", "true")

	var logs bytes.Buffer

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	s, err := bootstrap(ctx, &options{profile: "test", configDir: ws.configDir, offline: true}, &logs)
	require.NoError(t, err)
	defer s.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- serve(ctx, s, BuildInfo{}, ln) }()

	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/-/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/v1/sync", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no sync route while offline")

	cancel()
	require.NoError(t, <-done)

	out := logs.String()
	assert.Contains(t, out, "remote sync disabled")
	assert.Contains(t, out, errOffline.Error())
}
