package sites

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// TelegraphParser scrapes a telegra.ph page's inline <img> tags.
type TelegraphParser struct{}

func (p *TelegraphParser) Name() string       { return "telegraph" }
func (p *TelegraphParser) Domains() []string  { return []string{"telegra.ph"} }

func (p *TelegraphParser) Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter parser.Reporter, cfg *parser.Config) (parser.ParsedGallery, error) {
	if reporter == nil {
		reporter = parser.NoopReporter{}
	}
	reporter.SetTaskName("telegraph - fetching page")

	resp, err := client.GetRateLimited(ctx, galleryURL)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("fetch telegraph page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("read telegraph page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("parse telegraph page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())

	var raw []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			raw = append(raw, normalizeTelegraphURL(src))
		} else if data, ok := s.Attr("data-src"); ok && data != "" {
			raw = append(raw, normalizeTelegraphURL(data))
		}
	})

	images := dedupePreserveOrder(raw)
	if len(images) == 0 {
		return parser.ParsedGallery{}, fmt.Errorf("no images found on telegraph page")
	}

	reporter.SetTotal(len(images))
	reporter.Inc(len(images))

	return parser.ParsedGallery{Title: title, ImageURLs: images}, nil
}

func normalizeTelegraphURL(src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return "https://telegra.ph" + src
}
