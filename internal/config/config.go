// Package config persists application settings (libraries, output
// directory, proxy, per-parser overrides) to a single JSON file.
package config

// Config is the whole-file persisted application configuration.
type Config struct {
	Libraries          []string                `json:"libraries"`
	OutputDir          string                   `json:"output_dir"`
	ProxyURL           string                   `json:"proxy_url"`
	ActiveLibrary      string                   `json:"active_library"`
	MaxConcurrentTasks int                      `json:"max_concurrent_tasks"`
	ParserConfigs      map[string]*ParserConfig `json:"parser_configs,omitempty"`
}

// DefaultConfig is what a fresh install starts with.
func DefaultConfig() *Config {
	return &Config{
		Libraries:          []string{},
		MaxConcurrentTasks: 3,
		ParserConfigs:      make(map[string]*ParserConfig),
	}
}

// BaseParserConfig holds the knobs common to every site parser.
type BaseParserConfig struct {
	Concurrency     int               `json:"concurrency,omitempty"`
	TimeoutMillis   int               `json:"timeout,omitempty"`
	TaskConcurrency int               `json:"task_concurrency,omitempty"`
	RetryCount      int               `json:"retry_count,omitempty"`
	UserAgent       string            `json:"user_agent,omitempty"`
	CustomHeaders   map[string]string `json:"custom_headers,omitempty"`
	ProxyEnabled    bool              `json:"proxy_enabled"`
}

// AuthConfig holds credentials a parser may need to pass through to the
// target site. Never populated with a hardcoded secret; always sourced
// from what the user stores here.
type AuthConfig struct {
	Cookies  string `json:"cookies,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	Token    string `json:"token,omitempty"`
}

// SiteSpecificConfig is a free-form bag for settings a given parser
// cares about but the rest of the system doesn't need to know about.
type SiteSpecificConfig struct {
	Settings map[string]interface{} `json:"settings,omitempty"`
}

// ParserConfig is the full configuration for one registered parser tag.
type ParserConfig struct {
	Base         BaseParserConfig     `json:"base"`
	Auth         *AuthConfig          `json:"auth,omitempty"`
	SiteSpecific *SiteSpecificConfig  `json:"site_specific,omitempty"`
}

// defaultParserConfig mirrors ParserConfigManager's fallback: a
// moderate default concurrency for parsers with no stored override.
func defaultParserConfig() *ParserConfig {
	return &ParserConfig{
		Base: BaseParserConfig{
			Concurrency:     3,
			TaskConcurrency: 3,
		},
	}
}
