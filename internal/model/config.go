package model

import "time"

// Config holds the full runtime configuration
type Config struct {
	Reason    ReasonConfig    `yaml:"reason"`
	Documents DocumentsConfig `yaml:"documents"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Batch     BatchConfig     `yaml:"batch"`
	Output    OutputConfig    `yaml:"output"`
}

// ReasonConfig configures the reasoning backend
type ReasonConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // from env only, never persisted
	BaseURL   string `yaml:"base_url"` // custom endpoint (OpenAI-compatible servers)
	Timeout   int    `yaml:"timeout"`  // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// DocumentsConfig configures the document-store client
type DocumentsConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Token      string        `yaml:"-"` // from env only
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`
	StatusTTL  time.Duration `yaml:"status_ttl"` // connection-probe cache TTL
}

// CalendarConfig configures the calendar client
type CalendarConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Token      string        `yaml:"-"` // from env only
	CalendarID string        `yaml:"calendar_id"`
	Timeout    time.Duration `yaml:"timeout"`
}

// BatchConfig configures batch capture processing
type BatchConfig struct {
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reason: ReasonConfig{
			Provider:  "", // disabled by default
			Model:     "",
			Timeout:   30,
			MaxTokens: 2000,
		},
		Documents: DocumentsConfig{
			BaseURL:    "https://api.notion.com/v1",
			APIVersion: "2022-06-28",
			Timeout:    30 * time.Second,
			StatusTTL:  time.Minute,
		},
		Calendar: CalendarConfig{
			BaseURL:    "https://www.googleapis.com/calendar/v3",
			CalendarID: "primary",
			Timeout:    30 * time.Second,
		},
		Batch: BatchConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Output: OutputConfig{},
	}
}
