package control

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gallerydl/internal/bandwidth"
	"gallerydl/internal/config"
	"gallerydl/internal/crawler"
	"gallerydl/internal/history"
	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
	"gallerydl/internal/scheduler"
	"gallerydl/internal/security"
	"gallerydl/internal/task"
)

func newTestServer(t *testing.T, authToken string) (*httptest.Server, *task.Store) {
	t.Helper()

	store := task.NewStore()
	cfgRepo := config.NewFileConfigRepository(filepath.Join(t.TempDir(), "config.json"))
	cfgMgr, err := config.NewManager(cfgRepo)
	require.NoError(t, err)
	require.NoError(t, cfgMgr.SetOutputDir(t.TempDir()))

	historySink, err := history.NewSink(t.TempDir(), nil)
	require.NoError(t, err)

	parsers := parser.NewRegistry()
	crawlers := crawler.NewRegistry()
	client, err := httpclient.New("")
	require.NoError(t, err)
	bw := bandwidth.NewBandwidthManager()

	sched := scheduler.New(store, cfgMgr, historySink, nil, parsers, crawlers, client, bw, nil, nil)
	srv := New(sched, store, cfgMgr, historySink, nil, authToken)

	return httptest.NewServer(srv.router), store
}

func TestControlServerRejectsMissingToken(t *testing.T) {
	ts, _ := newTestServer(t, "secret")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tasks/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestControlServerAllTasksEmpty(t *testing.T) {
	ts, _ := newTestServer(t, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tasks/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []*task.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	require.Empty(t, tasks)
}

func TestControlServerStartTaskNoParser(t *testing.T) {
	ts, store := newTestServer(t, "")
	defer ts.Close()

	body, _ := json.Marshal(startTaskRequest{URL: "http://unknown.test/gallery/1"})
	resp, err := http.Post(ts.URL+"/tasks/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	id := out["taskId"]
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		tk, err := store.ByID(id)
		return err == nil && tk.Status == task.StatusFailed
	}, time.Second, 10*time.Millisecond)
}

func TestControlServerGetConfig(t *testing.T) {
	ts, _ := newTestServer(t, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/config/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	require.Contains(t, cfg, "output_dir")
}

func TestControlServerHistoryCheckURL(t *testing.T) {
	store := task.NewStore()
	cfgRepo := config.NewFileConfigRepository(filepath.Join(t.TempDir(), "config.json"))
	cfgMgr, err := config.NewManager(cfgRepo)
	require.NoError(t, err)
	require.NoError(t, cfgMgr.SetOutputDir(t.TempDir()))

	idx, err := history.OpenIndex(filepath.Join(t.TempDir(), "idx"))
	require.NoError(t, err)
	defer idx.Close()
	historySink, err := history.NewSink(t.TempDir(), idx)
	require.NoError(t, err)
	require.NoError(t, historySink.AddRecord(history.Record{
		ID: "a", URL: "https://e-hentai.org/g/1/1", Status: task.StatusCompleted,
	}))

	sched := scheduler.New(store, cfgMgr, historySink, idx, parser.NewRegistry(), crawler.NewRegistry(), nil, nil, nil, nil)
	srv := New(sched, store, cfgMgr, historySink, nil, "")
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/history/check_url?url=https://e-hentai.org/g/1/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, true, out["found"])
	require.Equal(t, string(task.StatusCompleted), out["status"])

	resp2, err := http.Get(ts.URL + "/history/check_url?url=https://e-hentai.org/g/2/2")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var out2 map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&out2))
	require.Equal(t, false, out2["found"])
}

func TestControlServerAuditsRequests(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store := task.NewStore()
	cfgRepo := config.NewFileConfigRepository(filepath.Join(t.TempDir(), "config.json"))
	cfgMgr, err := config.NewManager(cfgRepo)
	require.NoError(t, err)
	require.NoError(t, cfgMgr.SetOutputDir(t.TempDir()))

	historySink, err := history.NewSink(t.TempDir(), nil)
	require.NoError(t, err)

	sched := scheduler.New(store, cfgMgr, historySink, nil, parser.NewRegistry(), crawler.NewRegistry(), nil, nil, nil, nil)
	audit := security.NewAuditLogger(slog.New(slog.DiscardHandler))
	defer audit.Close()

	srv := New(sched, store, cfgMgr, historySink, audit, "")
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tasks/")
	require.NoError(t, err)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		return len(audit.GetRecentLogs(10)) > 0
	}, time.Second, 10*time.Millisecond)
}
