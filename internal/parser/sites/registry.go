// Package sites implements the built-in gallery site parsers and a helper
// to wire them into a parser.Registry.
package sites

import "gallerydl/internal/parser"

// RegisterAll registers every built-in site parser, both by tag and by
// hostname substring. Called once by app.NewApp before the registry is
// handed to the scheduler.
func RegisterAll(r *parser.Registry) {
	r.Register("ehentai", func() parser.Parser { return &EHentaiParser{} })
	r.RegisterHostContains("ehentai", "e-hentai.org", "exhentai.org")

	r.Register("hitomi", func() parser.Parser { return &HitomiParser{} })
	r.RegisterHostContains("hitomi", "hitomi.la")

	r.Register("nhentai", func() parser.Parser { return &NhentaiParser{} })
	r.RegisterHostContains("nhentai", "nhentai.net", "nhentai.xxx", "nhentai.to")

	r.Register("wnacg", func() parser.Parser { return &WnacgParser{} })
	r.RegisterHostContains("wnacg", "wnacg.com", "wn01.uk")

	r.Register("comic18", func() parser.Parser { return &Comic18Parser{} })
	r.RegisterHostContains("comic18", "18comic.vip", "jmcomic")

	r.Register("pixiv", func() parser.Parser { return &PixivParser{} })
	r.RegisterHostContains("pixiv", "pixiv.net")

	r.Register("telegraph", func() parser.Parser { return &TelegraphParser{} })
	r.RegisterHostContains("telegraph", "telegra.ph")
}

// dedupePreserveOrder removes duplicate URLs while keeping first-seen order.
func dedupePreserveOrder(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
