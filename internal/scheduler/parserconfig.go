package scheduler

import (
	"gallerydl/internal/parser"
)

// toParserConfig adapts the persisted per-site configuration into the
// shape site parsers expect, filling in reasonable defaults for
// anything left unset.
func (s *Scheduler) toParserConfig(tag string) *parser.Config {
	pc := s.cfg.ParserConfig(tag)

	concurrency := pc.Base.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	retryCount := pc.Base.RetryCount
	if retryCount <= 0 {
		retryCount = 3
	}
	timeoutMillis := pc.Base.TimeoutMillis
	if timeoutMillis <= 0 {
		timeoutMillis = 30000
	}

	cfg := &parser.Config{
		Concurrency:   concurrency,
		Timeout:       timeoutMillis,
		RetryCount:    retryCount,
		UserAgent:     pc.Base.UserAgent,
		CustomHeaders: pc.Base.CustomHeaders,
	}
	if pc.Auth != nil {
		cfg.Auth = &parser.AuthConfig{
			Cookies:  pc.Auth.Cookies,
			Username: pc.Auth.Username,
			Password: pc.Auth.Password,
			APIKey:   pc.Auth.APIKey,
			Token:    pc.Auth.Token,
		}
	}
	if pc.SiteSpecific != nil {
		cfg.SiteSpecific = pc.SiteSpecific.Settings
	}
	return cfg
}
