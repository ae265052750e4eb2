// Package sites implements built-in listing crawlers.
package sites

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gallerydl/internal/crawler"
	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// EHentaiBatchCrawler paginates an E-Hentai search/tag listing via its
// "next page" link, collecting every gallery link it finds along the way.
type EHentaiBatchCrawler struct{}

func (c *EHentaiBatchCrawler) Name() string      { return "ehentai_batch" }
func (c *EHentaiBatchCrawler) Domains() []string { return []string{"e-hentai.org", "exhentai.org"} }

const ehentaiBatchConcurrency = 3

func (c *EHentaiBatchCrawler) ExtractGalleryLinks(ctx context.Context, client *httpclient.Client, listingURL string, reporter parser.Reporter) ([]string, error) {
	if reporter == nil {
		reporter = parser.NoopReporter{}
	}

	limited := client.WithLimit(ehentaiBatchConcurrency)
	headers := http.Header{}
	headers.Set("Cookie", "nw=1")

	var allLinks []string
	currentURL := listingURL

	for {
		links, nextURL, err := c.extractLinksFromPage(ctx, limited, currentURL, headers)
		if err != nil {
			return nil, err
		}
		allLinks = append(allLinks, links...)
		reporter.SetTaskName(fmt.Sprintf("ehentai listing - %d galleries found", len(allLinks)))
		reporter.Inc(len(links))

		if nextURL == "" {
			break
		}
		currentURL = nextURL

		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	allLinks = dedupePreserveOrder(allLinks)
	if len(allLinks) == 0 {
		return nil, fmt.Errorf("no gallery links found in listing")
	}
	return allLinks, nil
}

func (c *EHentaiBatchCrawler) extractLinksFromPage(ctx context.Context, client *httpclient.Client, pageURL string, headers http.Header) (links []string, nextURL string, err error) {
	resp, err := client.GetWithHeadersRateLimited(ctx, pageURL, headers)
	if err != nil {
		return nil, "", fmt.Errorf("fetch listing page: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("parse listing page: %w", err)
	}

	doc.Find("table.gltc tr td.gl3c.glname a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})

	if next, ok := doc.Find("#dnext a").First().Attr("href"); ok {
		nextURL = next
	}

	return links, nextURL, nil
}

func dedupePreserveOrder(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// RegisterAll wires every built-in listing crawler into r.
func RegisterAll(r *crawler.Registry) {
	r.Register("ehentai_batch", func() crawler.Crawler { return &EHentaiBatchCrawler{} })
	r.RegisterHostContains("ehentai_batch", "e-hentai.org", "exhentai.org")
}
