package sites

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// EHentaiParser is a three-phase gallery parser: discover the gallery's
// paginated page list, fan out to extract each page's thumbnail links
// (order preserved by index, not completion order), then fan out again
// resolving each thumbnail to its full-resolution image URL via the
// site's "nl" reload-token mechanism.
type EHentaiParser struct{}

func (p *EHentaiParser) Name() string      { return "ehentai" }
func (p *EHentaiParser) Domains() []string { return []string{"e-hentai.org", "exhentai.org"} }

const defaultEhentaiConcurrency = 10

var ehentaiNLRe = regexp.MustCompile(`nl\('(.+?)'\)`)

func (p *EHentaiParser) Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter parser.Reporter, cfg *parser.Config) (parser.ParsedGallery, error) {
	if reporter == nil {
		reporter = parser.NoopReporter{}
	}

	concurrency := defaultEhentaiConcurrency
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	limited := client.WithLimit(concurrency)

	headers := http.Header{}
	headers.Set("Cookie", "nw=1")

	reporter.SetTaskName("ehentai - fetching gallery info")

	title, pageURLs, err := p.discoverPages(ctx, limited, galleryURL, headers)
	if err != nil {
		return parser.ParsedGallery{}, err
	}

	reporter.SetTaskName(fmt.Sprintf("ehentai - fetching gallery pages (0/%d)", len(pageURLs)))
	reporter.SetTotal(len(pageURLs))
	thumbURLs, err := p.extractThumbnailURLs(ctx, limited, pageURLs, headers, concurrency, reporter)
	if err != nil {
		return parser.ParsedGallery{}, err
	}

	reporter.SetTaskName(fmt.Sprintf("ehentai - resolving image links (0/%d)", len(thumbURLs)))
	reporter.SetTotal(len(thumbURLs))
	images, err := p.resolveImageURLs(ctx, limited, thumbURLs, headers, concurrency, reporter)
	if err != nil {
		return parser.ParsedGallery{}, err
	}

	return parser.ParsedGallery{Title: title, ImageURLs: images}, nil
}

func (p *EHentaiParser) discoverPages(ctx context.Context, client *httpclient.Client, galleryURL string, headers http.Header) (string, []string, error) {
	resp, err := client.GetWithHeadersRateLimited(ctx, galleryURL, headers)
	if err != nil {
		return "", nil, fmt.Errorf("fetch ehentai gallery page: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("parse ehentai gallery page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("#gn").First().Text())

	pageURLs := []string{galleryURL}
	doc.Find("body > .gtb td a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			pageURLs = append(pageURLs, href)
		}
	})

	return title, dedupePreserveOrder(pageURLs), nil
}

// orderedFanOut runs fetch against each input concurrently (bounded by
// width goroutines), preserving input order in the output slice.
func orderedFanOut(ctx context.Context, inputs []string, width int, onDone func(), fetch func(ctx context.Context, input string) []string) []string {
	results := make([][]string, len(inputs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, width)

	for i, in := range inputs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, in string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = fetch(ctx, in)
			if onDone != nil {
				onDone()
			}
		}(i, in)
	}
	wg.Wait()

	var flat []string
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat
}

func (p *EHentaiParser) extractThumbnailURLs(ctx context.Context, client *httpclient.Client, pageURLs []string, headers http.Header, concurrency int, reporter parser.Reporter) ([]string, error) {
	flattened := orderedFanOut(ctx, pageURLs, concurrency, func() { reporter.Inc(1) }, func(ctx context.Context, pageURL string) []string {
		resp, err := client.GetWithHeadersRateLimited(ctx, pageURL, headers)
		if err != nil {
			return nil
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil
		}
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil
		}
		var local []string
		doc.Find("#gdt > a").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				local = append(local, href)
			}
		})
		return local
	})

	flattened = dedupePreserveOrder(flattened)
	if len(flattened) == 0 {
		return nil, fmt.Errorf("no thumbnail links found")
	}
	return flattened, nil
}

func (p *EHentaiParser) resolveImageURLs(ctx context.Context, client *httpclient.Client, thumbURLs []string, headers http.Header, concurrency int, reporter parser.Reporter) ([]string, error) {
	images := orderedFanOut(ctx, thumbURLs, concurrency, func() { reporter.Inc(1) }, func(ctx context.Context, thumbURL string) []string {
		resp, err := client.GetWithHeadersRateLimited(ctx, thumbURL, headers)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if resp != nil {
				resp.Body.Close()
			}
			return nil
		}
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil
		}

		img := doc.Find("#img").First()
		onerror, _ := img.Attr("onerror")
		match := ehentaiNLRe.FindStringSubmatch(onerror)
		if match == nil {
			return nil
		}
		nl := match[1]

		realURL := thumbURL + "?nl=" + nl
		resp2, err := client.GetWithHeadersRateLimited(ctx, realURL, headers)
		if err != nil {
			return nil
		}
		defer resp2.Body.Close()
		if resp2.StatusCode < 200 || resp2.StatusCode >= 300 {
			return nil
		}
		doc2, err := goquery.NewDocumentFromReader(resp2.Body)
		if err != nil {
			return nil
		}
		if src, ok := doc2.Find("#img").First().Attr("src"); ok {
			return []string{src}
		}
		return nil
	})

	images = dedupePreserveOrder(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("no full-resolution image links resolved")
	}
	return images, nil
}
