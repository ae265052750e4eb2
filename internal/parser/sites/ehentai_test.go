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

func TestEHentaiParserParsesGallery(t *testing.T) {
	mux := http.NewServeMux()
	var galleryPath string

	mux.HandleFunc("/g/1/abc/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`
<html><body>
<h1 id="gn">Sample Doujin</h1>
<div class="gtb"><table><tr>
  <td><a href="` + galleryPath + `/page2">2</a></td>
</tr></table></div>
</body></html>`))
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="gdt"><a href="` + galleryPath + `/s/thumb1/1"></a></div></body></html>`))
	})
	mux.HandleFunc("/s/thumb1/1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("nl") == "abcdef" {
			w.Write([]byte(`<html><body><img id="img" src="https://img.example/full1.jpg"></body></html>`))
			return
		}
		w.Write([]byte(`<html><body><img id="img" onerror="nl('abcdef')"></body></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	galleryPath = srv.URL

	client, err := httpclient.New("")
	require.NoError(t, err)

	p := &EHentaiParser{}
	result, err := p.Parse(context.Background(), client, srv.URL+"/g/1/abc/", parser.NoopReporter{}, nil)
	require.NoError(t, err)
	require.Equal(t, "Sample Doujin", result.Title)
	require.Equal(t, []string{"https://img.example/full1.jpg"}, result.ImageURLs)
}
