package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// Comic18Parser extracts the per-page "scramble" image block. Descrambling
// the resulting image (the site applies a jigsaw swap keyed by page
// number) is a site-specific post-download concern left to the caller;
// this parser only extracts the scrambled image URLs in page order.
type Comic18Parser struct{}

func (p *Comic18Parser) Name() string      { return "18comic" }
func (p *Comic18Parser) Domains() []string { return []string{"18comic.vip", "18comic.org"} }

func (p *Comic18Parser) Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter parser.Reporter, cfg *parser.Config) (parser.ParsedGallery, error) {
	if reporter == nil {
		reporter = parser.NoopReporter{}
	}

	doc, err := fetchHTML(ctx, client, galleryURL)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("fetch 18comic page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())

	var raw []string
	doc.Find(".scramble-page > img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("data-original"); ok && src != "" {
			raw = append(raw, src)
			return
		}
		if src, ok := s.Attr("src"); ok && src != "" {
			raw = append(raw, src)
		}
	})

	if len(raw) == 0 {
		return parser.ParsedGallery{}, fmt.Errorf("no images found on 18comic page")
	}

	reporter.SetTotal(len(raw))
	images := dedupePreserveOrder(raw)
	reporter.Inc(len(images))

	return parser.ParsedGallery{Title: title, ImageURLs: images}, nil
}
