// Package parser defines the gallery-parser contract: given a URL, produce
// an ordered, de-duplicated list of image URLs plus optional per-gallery
// download headers and a recommended concurrency.
package parser

import (
	"context"
	"net/http"

	"gallerydl/internal/httpclient"
)

// ParsedGallery is the result of successfully parsing a gallery URL.
type ParsedGallery struct {
	Title                  string
	ImageURLs              []string
	DownloadHeaders        http.Header
	RecommendedConcurrency int
}

// Reporter receives progress updates while a parser (or a downstream
// downloader) is working. All methods must tolerate being called from
// multiple goroutines.
type Reporter interface {
	SetTotal(total int)
	Inc(delta int)
	SetTaskName(name string)
}

// NoopReporter discards every call; useful in tests and one-off parses.
type NoopReporter struct{}

func (NoopReporter) SetTotal(int)       {}
func (NoopReporter) Inc(int)            {}
func (NoopReporter) SetTaskName(string) {}

// Config carries per-site tuning pulled from the on-disk parser config.
type Config struct {
	Concurrency   int
	Timeout       int
	RetryCount    int
	UserAgent     string
	CustomHeaders map[string]string
	Auth          *AuthConfig
	SiteSpecific  map[string]interface{}
}

// AuthConfig holds optional site credentials.
type AuthConfig struct {
	Cookies  string
	Username string
	Password string
	APIKey   string
	Token    string
}

// Parser is implemented by every built-in and pluggable site parser.
type Parser interface {
	Name() string
	Domains() []string
	Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter Reporter, cfg *Config) (ParsedGallery, error)
}
