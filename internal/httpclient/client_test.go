package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientMergesDefaultAndExtraHeaders(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New("")
	require.NoError(t, err)

	extra := http.Header{}
	extra.Set("Referer", "https://example.test/")

	resp, err := c.GetWithHeadersRateLimited(context.Background(), srv.URL, extra)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotEmpty(t, gotUA)
	require.Equal(t, "https://example.test/", gotReferer)
}

func TestClientExtraHeaderOverridesDefault(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New("")
	require.NoError(t, err)

	extra := http.Header{}
	extra.Set("User-Agent", "custom-agent/1.0")

	resp, err := c.GetWithHeadersRateLimited(context.Background(), srv.URL, extra)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "custom-agent/1.0", gotUA)
}

func TestWithLimitBoundsConcurrency(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	limited := c.WithLimit(1)
	require.NotSame(t, c, limited)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, limited.acquire(context.Background()))
	err = limited.acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	limited.release()
}

func TestGetIsUnthrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New("")
	require.NoError(t, err)
	limited := c.WithLimit(1)
	require.NoError(t, limited.acquire(context.Background()))
	defer limited.release()

	resp, err := limited.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
