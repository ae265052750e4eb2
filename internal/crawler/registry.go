package crawler

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

type Constructor func() Crawler

type hostMatcher struct {
	tag        string
	substrings []string
}

// Registry maps site tags to listing-crawler constructors, mirroring
// parser.Registry's shape but kept separate since a site can have a
// gallery parser without a listing crawler (and vice versa).
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	matchers     []hostMatcher
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

func (r *Registry) Register(tag string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[tag] = ctor
}

func (r *Registry) RegisterHostContains(tag string, substrings ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, hostMatcher{tag: tag, substrings: substrings})
}

func (r *Registry) Detect(host string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lowerHost := strings.ToLower(host)
	for _, m := range r.matchers {
		for _, sub := range m.substrings {
			if strings.Contains(lowerHost, strings.ToLower(sub)) {
				return m.tag, true
			}
		}
	}
	return "", false
}

func (r *Registry) Create(tag string) (Crawler, bool) {
	r.mu.RLock()
	ctor, ok := r.constructors[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// DetectAndCreate extracts the host from listingURL and builds the
// matching crawler in one step.
func (r *Registry) DetectAndCreate(listingURL string) (Crawler, error) {
	parsed, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}
	tag, ok := r.Detect(parsed.Host)
	if !ok {
		return nil, fmt.Errorf("no batch crawler registered for host %q", parsed.Host)
	}
	c, ok := r.Create(tag)
	if !ok {
		return nil, fmt.Errorf("site tag %q has no batch crawler constructor", tag)
	}
	return c, nil
}
