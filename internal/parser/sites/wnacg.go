package sites

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
)

// WnacgParser is a three-level gallery: the listing page links to a
// paginator of listing pages, each listing page links to per-photo pages,
// and each photo page's #picarea holds the final image URL. The last two
// levels fan out through an 8-wide WithLimit clone of the client.
type WnacgParser struct{}

func (p *WnacgParser) Name() string      { return "wnacg" }
func (p *WnacgParser) Domains() []string { return []string{"wnacg.com", "www.wnacg.com"} }

func toAbsWnacg(u string) string {
	switch {
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		return u
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "/"):
		return "https://www.wnacg.com" + u
	default:
		return "https://www.wnacg.com/" + strings.TrimPrefix(u, "./")
	}
}

func fetchHTML(ctx context.Context, client *httpclient.Client, target string) (*goquery.Document, error) {
	resp, err := client.GetRateLimited(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, target)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// fanOutScrape runs extract against each input URL using up to width
// concurrent workers and returns the flattened, concatenated results.
func fanOutScrape(ctx context.Context, client *httpclient.Client, urls []string, width int, onDone func(), extract func(*goquery.Document) []string) []string {
	limited := client.WithLimit(width)
	results := make([][]string, len(urls))
	var wg sync.WaitGroup
	sem := make(chan struct{}, width)

	for i, u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()
			doc, err := fetchHTML(ctx, limited, u)
			if err == nil {
				results[i] = extract(doc)
			}
			if onDone != nil {
				onDone()
			}
		}(i, u)
	}
	wg.Wait()

	var flat []string
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat
}

func (p *WnacgParser) Parse(ctx context.Context, client *httpclient.Client, galleryURL string, reporter parser.Reporter, cfg *parser.Config) (parser.ParsedGallery, error) {
	if reporter == nil {
		reporter = parser.NoopReporter{}
	}

	doc, err := fetchHTML(ctx, client, galleryURL)
	if err != nil {
		return parser.ParsedGallery{}, fmt.Errorf("fetch wnacg listing page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("#bodywrap > h2").First().Text())

	pageURLs := []string{galleryURL}
	doc.Find(".paginator a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			pageURLs = append(pageURLs, toAbsWnacg(href))
		}
	})
	pageURLs = dedupePreserveOrder(pageURLs)

	reporter.SetTaskName(fmt.Sprintf("wnacg - fetching listing pages (0/%d)", len(pageURLs)))
	reporter.SetTotal(len(pageURLs))

	mangaPages := dedupePreserveOrder(fanOutScrape(ctx, client, pageURLs, 8, func() { reporter.Inc(1) }, func(d *goquery.Document) []string {
		var local []string
		d.Find("#bodywrap ul li a").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				local = append(local, toAbsWnacg(href))
			}
		})
		return local
	}))
	if len(mangaPages) == 0 {
		return parser.ParsedGallery{}, fmt.Errorf("no manga pages found")
	}

	reporter.SetTaskName(fmt.Sprintf("wnacg - resolving image links (0/%d)", len(mangaPages)))
	reporter.SetTotal(len(mangaPages))

	images := dedupePreserveOrder(fanOutScrape(ctx, client, mangaPages, 8, func() { reporter.Inc(1) }, func(d *goquery.Document) []string {
		var local []string
		d.Find("#picarea").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				local = append(local, toAbsWnacg(src))
			}
		})
		return local
	}))
	if len(images) == 0 {
		return parser.ParsedGallery{}, fmt.Errorf("no images resolved")
	}

	return parser.ParsedGallery{Title: title, ImageURLs: images}, nil
}

func sortedDedupe(urls []string) []string {
	sort.Strings(urls)
	out := urls[:0:0]
	var last string
	for i, u := range urls {
		if i == 0 || u != last {
			out = append(out, u)
			last = u
		}
	}
	return out
}
