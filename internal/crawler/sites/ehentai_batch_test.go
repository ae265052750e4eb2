package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

func TestEHentaiBatchCrawlerSinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`
<html><body>
<table class="gltc">
<tr><td class="gl3c glname"><a href="https://e-hentai.org/g/1/aaa/">one</a></td></tr>
<tr><td class="gl3c glname"><a href="https://e-hentai.org/g/2/bbb/">two</a></td></tr>
</table>
</body></html>`))
	}))
	defer srv.Close()

	client, err := httpclient.New("")
	require.NoError(t, err)

	c := &EHentaiBatchCrawler{}
	links, err := c.ExtractGalleryLinks(context.Background(), client, srv.URL, parser.NoopReporter{})
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://e-hentai.org/g/1/aaa/",
		"https://e-hentai.org/g/2/bbb/",
	}, links)
}

func TestEHentaiBatchCrawlerNoLinksErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table class="gltc"></table></body></html>`))
	}))
	defer srv.Close()

	client, err := httpclient.New("")
	require.NoError(t, err)

	c := &EHentaiBatchCrawler{}
	_, err = c.ExtractGalleryLinks(context.Background(), client, srv.URL, parser.NoopReporter{})
	require.Error(t, err)
}

func TestDedupePreserveOrder(t *testing.T) {
	in := []string{"a", "b", "a", "", "c", "b"}
	require.Equal(t, []string{"a", "b", "c"}, dedupePreserveOrder(in))
}
