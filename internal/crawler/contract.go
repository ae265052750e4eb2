// Package crawler defines the listing-crawler contract: given a search or
// tag-listing URL, produce an ordered, de-duplicated list of gallery URLs
// ready to be handed to the parser registry.
package crawler

import (
	"context"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// Crawler turns a listing page into a flat list of gallery URLs.
type Crawler interface {
	Name() string
	Domains() []string
	ExtractGalleryLinks(ctx context.Context, client *httpclient.Client, listingURL string, reporter parser.Reporter) ([]string, error)
}
