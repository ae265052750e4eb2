package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// PixivParser resolves a single artwork page into its page-array of
// "regular" resolution image URLs via Pixiv's AJAX endpoint. Pixiv
// requires an authenticated session cookie (supplied via cfg.Auth.Cookies)
// and a matching Referer on every request.
type PixivParser struct{}

func (p *PixivParser) Name() string      { return "pixiv" }
func (p *PixivParser) Domains() []string { return []string{"pixiv.net"} }

var pixivArtworkIDRe = regexp.MustCompile(`/artworks/(\d+)`)

func (p *PixivParser) Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter parser.Reporter, cfg *parser.Config) (parser.ParsedGallery, error) {
	if reporter == nil {
		reporter = parser.NoopReporter{}
	}

	match := pixivArtworkIDRe.FindStringSubmatch(galleryURL)
	if match == nil {
		return parser.ParsedGallery{}, fmt.Errorf("could not extract artwork id from %q", galleryURL)
	}
	artworkID := match[1]

	headers := http.Header{}
	headers.Set("Referer", "https://www.pixiv.net/")
	if cfg != nil && cfg.Auth != nil && cfg.Auth.Cookies != "" {
		headers.Set("Cookie", cfg.Auth.Cookies)
	}

	reporter.SetTaskName("pixiv - fetching artwork info")

	resp, err := client.GetWithHeadersRateLimited(ctx, galleryURL, headers)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("fetch pixiv artwork page: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("read pixiv artwork page: %w", err)
	}

	title := ""
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body))); err == nil {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	reporter.SetTaskName("pixiv - fetching page list")

	ajaxURL := fmt.Sprintf("https://www.pixiv.net/ajax/illust/%s/pages?lang=zh", artworkID)
	ajaxResp, err := client.GetWithHeadersRateLimited(ctx, ajaxURL, headers)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("fetch pixiv pages ajax: %w", err)
	}
	defer ajaxResp.Body.Close()

	if ajaxResp.StatusCode < 200 || ajaxResp.StatusCode >= 300 {
		return parser.ParsedGallery{}, fmt.Errorf("pixiv pages ajax returned status %d", ajaxResp.StatusCode)
	}

	var payload struct {
		Body []struct {
			Urls struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"body"`
	}
	if err := json.NewDecoder(ajaxResp.Body).Decode(&payload); err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("decode pixiv pages ajax: %w", err)
	}

	var images []string
	for _, page := range payload.Body {
		if page.Urls.Regular != "" {
			images = append(images, page.Urls.Regular)
		}
	}
	images = dedupePreserveOrder(images)
	if len(images) == 0 {
		return parser.ParsedGallery{}, fmt.Errorf("no images found for pixiv artwork %s", artworkID)
	}

	reporter.SetTotal(len(images))
	reporter.Inc(len(images))

	downloadHeaders := http.Header{}
	downloadHeaders.Set("Referer", "https://www.pixiv.net/")

	return parser.ParsedGallery{
		Title:                  title,
		ImageURLs:              images,
		DownloadHeaders:        downloadHeaders,
		RecommendedConcurrency: 1,
	}, nil
}
