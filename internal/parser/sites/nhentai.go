package sites

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// NhentaiParser scrapes an nhentai gallery page, upgrading thumbnail URLs
// to full-resolution images and probing whether the WebP variant exists.
type NhentaiParser struct{}

func (p *NhentaiParser) Name() string      { return "nhentai" }
func (p *NhentaiParser) Domains() []string { return []string{"nhentai.net", "nhentai.xxx", "nhentai.to"} }

var nhentaiThumbRe = regexp.MustCompile(`(\d+)t\.jpg$`)

func convertNhentaiThumb(thumbURL string, useWebp bool) string {
	repl := "${1}.jpg"
	if useWebp {
		repl = "${1}.webp"
	}
	return nhentaiThumbRe.ReplaceAllString(thumbURL, repl)
}

func (p *NhentaiParser) Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter parser.Reporter, cfg *parser.Config) (parser.ParsedGallery, error) {
	if reporter == nil {
		reporter = parser.NoopReporter{}
	}

	resp, err := client.GetRateLimited(ctx, galleryURL)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("fetch nhentai gallery: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("read nhentai gallery: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("parse nhentai gallery: %w", err)
	}

	title := strings.TrimSpace(doc.Find("div.gallery_top div.info h1").First().Text())

	var thumbs []string
	doc.Find("#thumbs_append > div > a > img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("data-src"); ok && src != "" {
			thumbs = append(thumbs, src)
		}
	})

	if len(thumbs) == 0 {
		return parser.ParsedGallery{}, fmt.Errorf("no images found on nhentai gallery page")
	}

	reporter.SetTaskName(fmt.Sprintf("nhentai - resolving image links (0/%d)", len(thumbs)))
	reporter.SetTotal(len(thumbs))

	firstWebp := convertNhentaiThumb(thumbs[0], true)
	useWebp := false
	if headResp, err := client.Head(ctx, firstWebp); err == nil {
		useWebp = headResp.StatusCode >= 200 && headResp.StatusCode < 300
		headResp.Body.Close()
	}

	images := make([]string, 0, len(thumbs))
	for _, t := range thumbs {
		images = append(images, convertNhentaiThumb(t, useWebp))
		reporter.Inc(1)
	}

	return parser.ParsedGallery{Title: title, ImageURLs: dedupePreserveOrder(images)}, nil
}
