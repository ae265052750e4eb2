package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

type fakeCrawler struct{ tag string }

func (f *fakeCrawler) Name() string      { return f.tag }
func (f *fakeCrawler) Domains() []string { return nil }
func (f *fakeCrawler) ExtractGalleryLinks(ctx context.Context, client *httpclient.Client, listingURL string, reporter parser.Reporter) ([]string, error) {
	return []string{listingURL}, nil
}

func TestCrawlerRegistryDetectAndCreate(t *testing.T) {
	r := NewRegistry()
	r.Register("ehentai_batch", func() Crawler { return &fakeCrawler{tag: "ehentai_batch"} })
	r.RegisterHostContains("ehentai_batch", "e-hentai.org")

	c, err := r.DetectAndCreate("https://e-hentai.org/tag/foo")
	require.NoError(t, err)
	require.Equal(t, "ehentai_batch", c.Name())
}

func TestCrawlerRegistryUnknownHost(t *testing.T) {
	r := NewRegistry()
	_, err := r.DetectAndCreate("https://unknown.example/x")
	require.Error(t, err)
}
