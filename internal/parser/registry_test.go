package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gallerydl/internal/httpclient"
)

type fakeParser struct{ tag string }

func (f *fakeParser) Name() string      { return f.tag }
func (f *fakeParser) Domains() []string { return nil }
func (f *fakeParser) Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter Reporter, cfg *Config) (ParsedGallery, error) {
	return ParsedGallery{Title: f.tag}, nil
}

func TestRegistryDetectAndCreate(t *testing.T) {
	r := NewRegistry()
	r.Register("ehentai", func() Parser { return &fakeParser{tag: "ehentai"} })
	r.RegisterHostContains("ehentai", "e-hentai.org", "exhentai.org")

	p, err := r.DetectAndCreate("https://exhentai.org/g/12345/abcdef/")
	require.NoError(t, err)
	require.Equal(t, "ehentai", p.Name())
}

func TestRegistryDetectAndCreateUnknownHost(t *testing.T) {
	r := NewRegistry()
	_, err := r.DetectAndCreate("https://unknown.example/x")
	require.Error(t, err)
}

func TestRegistryDetectUnknownHost(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Detect("unknown.example")
	require.False(t, ok)
}

func TestRegistryFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	r.RegisterHostContains("a", "example.com")
	r.RegisterHostContains("b", "sub.example.com")

	tag, ok := r.Detect("sub.example.com")
	require.True(t, ok)
	require.Equal(t, "a", tag)
}

func TestRegistryCreateUnknownTag(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Create("missing")
	require.False(t, ok)
}
