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

const nhentaiFixture = `
<html><body>
<div class="gallery_top"><div class="info"><h1>Sample Gallery</h1></div></div>
<div id="thumbs_append">
  <div><a><img data-src="https://t.example/galleries/1/1t.jpg"></a></div>
  <div><a><img data-src="https://t.example/galleries/1/2t.jpg"></a></div>
</div>
</body></html>`

func TestNhentaiParserParsesGallery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(nhentaiFixture))
	}))
	defer srv.Close()

	client, err := httpclient.New("")
	require.NoError(t, err)

	p := &NhentaiParser{}
	result, err := p.Parse(context.Background(), client, srv.URL, parser.NoopReporter{}, nil)
	require.NoError(t, err)
	require.Equal(t, "Sample Gallery", result.Title)
	require.Equal(t, []string{
		"https://t.example/galleries/1/1.jpg",
		"https://t.example/galleries/1/2.jpg",
	}, result.ImageURLs)
}

func TestNhentaiParserNoImagesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="gallery_top"><div class="info"><h1>Empty</h1></div></div></body></html>`))
	}))
	defer srv.Close()

	client, err := httpclient.New("")
	require.NoError(t, err)

	p := &NhentaiParser{}
	_, err = p.Parse(context.Background(), client, srv.URL, parser.NoopReporter{}, nil)
	require.Error(t, err)
}

func TestConvertNhentaiThumb(t *testing.T) {
	require.Equal(t, "https://t.example/5.webp", convertNhentaiThumb("https://t.example/5t.jpg", true))
	require.Equal(t, "https://t.example/5.jpg", convertNhentaiThumb("https://t.example/5t.jpg", false))
}
