package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"gallerydl/internal/bandwidth"
	"gallerydl/internal/httpclient"
)

func newTestDownloader(t *testing.T, cfg Config) (*Downloader, *httpclient.Client) {
	t.Helper()
	c, err := httpclient.New("")
	require.NoError(t, err)
	return New(c, bandwidth.NewBandwidthManager(), cfg), c
}

func TestDownloadFileSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello gallery"))
	}))
	defer srv.Close()

	dl, _ := newTestDownloader(t, DefaultConfig())
	dest := filepath.Join(t.TempDir(), "0001.jpg")

	err := dl.DownloadFile(context.Background(), srv.URL, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "hello gallery", string(data))
}

func TestDownloadFileRetriesThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.RetryCount = 3
	cfg.RetryDelay = 0
	dl, _ := newTestDownloader(t, cfg)
	dest := filepath.Join(t.TempDir(), "img.jpg")

	err := dl.DownloadFile(context.Background(), srv.URL, dest)
	require.NoError(t, err)
	require.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestDownloadFileExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.RetryCount = 1
	cfg.RetryDelay = 0
	dl, _ := newTestDownloader(t, cfg)
	dest := filepath.Join(t.TempDir(), "img.jpg")

	err := dl.DownloadFile(context.Background(), srv.URL, dest)
	require.Error(t, err)
}

func TestBuildDownloadPlan(t *testing.T) {
	urls := []string{
		"https://cdn.example/a.webp?x=1",
		"https://cdn.example/b",
	}
	gotURLs, paths := BuildDownloadPlan(urls, "/out/gallery")
	require.Equal(t, urls, gotURLs)
	require.Equal(t, filepath.Join("/out/gallery", "0001.webp"), paths[0])
	require.Equal(t, filepath.Join("/out/gallery", "0002.jpg"), paths[1])
}

func TestInferExtFromURL(t *testing.T) {
	require.Equal(t, "png", inferExtFromURL("https://x.test/a/b.PNG?v=2"))
	require.Equal(t, "", inferExtFromURL("https://x.test/a/b"))
}
