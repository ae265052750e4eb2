package parser

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Constructor builds a fresh Parser instance for a site tag.
type Constructor func() Parser

type hostMatcher struct {
	tag        string
	substrings []string
}

// Registry maps site tags to constructors and hostnames to site tags via
// first-match-wins, case-insensitive substring matching.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	matchers     []hostMatcher
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register associates a site tag with a constructor.
func (r *Registry) Register(tag string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[tag] = ctor
}

// RegisterHostContains associates a site tag with one or more
// case-insensitive hostname substrings, checked in registration order.
func (r *Registry) RegisterHostContains(tag string, substrings ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, hostMatcher{tag: tag, substrings: substrings})
}

// Detect returns the site tag whose registered substrings first match
// host, case-insensitively.
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

// Create instantiates the parser registered for tag.
func (r *Registry) Create(tag string) (Parser, bool) {
	r.mu.RLock()
	ctor, ok := r.constructors[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// DetectAndCreate extracts the host from galleryURL, detects its site tag,
// and creates the matching parser in one step.
func (r *Registry) DetectAndCreate(galleryURL string) (Parser, error) {
	parsed, err := url.Parse(galleryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gallery URL: %w", err)
	}
	tag, ok := r.Detect(parsed.Host)
	if !ok {
		return nil, fmt.Errorf("no parser registered for host %q", parsed.Host)
	}
	p, ok := r.Create(tag)
	if !ok {
		return nil, fmt.Errorf("site tag %q has no constructor", tag)
	}
	return p, nil
}

