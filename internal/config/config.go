// Package config loads the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for scout.
type Config struct {
	JobIDs          []string
	PollingInterval time.Duration
	Identity        IdentityConfig
	Search          SearchConfig
	Enrichment      EnrichmentConfig
	Retry           RetryConfig
	Store           StoreConfig
	Notification    NotificationConfig
	Server          ServerConfig
}

// IdentityConfig configures the person-data API client.
type IdentityConfig struct {
	BaseURL           string
	APIKey            string // expanded from env var by Load
	Country           string
	MatchRequirements string
	Timeout           time.Duration // per-request timeout
	RequestsPerSecond float64       // client-side ceiling, 0 disables it
	Burst             int
}

// SearchConfig configures the candidate-name search index.
type SearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	Size     int    `yaml:"size"`
}

// EnrichmentConfig tunes chunking, throttling and refresh concurrency.
type EnrichmentConfig struct {
	ChunkSize        int
	ThrottleInterval time.Duration // pause between chunks, measured from chunk completion
	MaxConcurrency   int
	TitleOverride    string // replaces the job title when selecting profiles to refresh
}

// RetryConfig controls retries of failed identity lookups.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// StoreConfig selects the profile store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`    // file path for sqlite, connection string for postgres
}

// NotificationConfig controls which reporter is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const (
	defaultPollingInterval   = 24 * time.Hour
	defaultCountry           = "US"
	defaultMatchRequirements = "(emails and jobs)"
	defaultIdentityTimeout   = 30 * time.Second
	defaultRequestsPerSecond = 20
	defaultSearchSize        = 100
	defaultChunkSize         = 20
	defaultThrottleInterval  = time.Second
	defaultMaxConcurrency    = 20
	defaultMaxRetries        = 2
	defaultRetryBaseDelay    = 5 * time.Second
	defaultStoreDriver       = "sqlite"
	defaultSQLiteDSN         = "scout.db"
	defaultServerAddr        = ":8080"

	slackWebhookPrefix = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	JobIDs          []string            `yaml:"job_ids"`
	PollingInterval string              `yaml:"polling_interval"`
	Identity        rawIdentityConfig   `yaml:"identity"`
	Search          SearchConfig        `yaml:"search"`
	Enrichment      rawEnrichmentConfig `yaml:"enrichment"`
	Retry           rawRetryConfig      `yaml:"retry"`
	Store           StoreConfig         `yaml:"store"`
	Notification    NotificationConfig  `yaml:"notification"`
	Server          ServerConfig        `yaml:"server"`
}

type rawIdentityConfig struct {
	BaseURL           string   `yaml:"base_url"`
	APIKey            string   `yaml:"api_key"`
	Country           string   `yaml:"country"`
	MatchRequirements string   `yaml:"match_requirements"`
	Timeout           string   `yaml:"timeout"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
}

type rawEnrichmentConfig struct {
	ChunkSize        int    `yaml:"chunk_size"`
	ThrottleInterval string `yaml:"throttle_interval"`
	MaxConcurrency   int    `yaml:"max_concurrency"`
	TitleOverride    string `yaml:"title_override"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval, err := parseDuration("polling_interval", raw.PollingInterval, defaultPollingInterval)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration("identity.timeout", raw.Identity.Timeout, defaultIdentityTimeout)
	if err != nil {
		return nil, err
	}
	throttle, err := parseDuration("enrichment.throttle_interval", raw.Enrichment.ThrottleInterval, defaultThrottleInterval)
	if err != nil {
		return nil, err
	}
	baseDelay, err := parseDuration("retry.base_delay", raw.Retry.BaseDelay, defaultRetryBaseDelay)
	if err != nil {
		return nil, err
	}

	rps := float64(defaultRequestsPerSecond)
	if raw.Identity.RequestsPerSecond != nil {
		rps = *raw.Identity.RequestsPerSecond
	}
	maxRetries := defaultMaxRetries
	if raw.Retry.MaxRetries != nil {
		maxRetries = *raw.Retry.MaxRetries
	}

	cfg := &Config{
		JobIDs:          raw.JobIDs,
		PollingInterval: interval,
		Identity: IdentityConfig{
			BaseURL:           raw.Identity.BaseURL,
			APIKey:            raw.Identity.APIKey,
			Country:           orDefault(raw.Identity.Country, defaultCountry),
			MatchRequirements: orDefault(raw.Identity.MatchRequirements, defaultMatchRequirements),
			Timeout:           timeout,
			RequestsPerSecond: rps,
			Burst:             raw.Identity.Burst,
		},
		Search: raw.Search,
		Enrichment: EnrichmentConfig{
			ChunkSize:        raw.Enrichment.ChunkSize,
			ThrottleInterval: throttle,
			MaxConcurrency:   raw.Enrichment.MaxConcurrency,
			TitleOverride:    raw.Enrichment.TitleOverride,
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		},
		Store:        raw.Store,
		Notification: raw.Notification,
		Server:       raw.Server,
	}

	if cfg.Identity.Burst == 0 {
		cfg.Identity.Burst = max(int(rps), 1)
	}
	if cfg.Search.Size == 0 {
		cfg.Search.Size = defaultSearchSize
	}
	if cfg.Enrichment.ChunkSize == 0 {
		cfg.Enrichment.ChunkSize = defaultChunkSize
	}
	if cfg.Enrichment.MaxConcurrency == 0 {
		cfg.Enrichment.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = defaultStoreDriver
	}
	if cfg.Store.Driver == "sqlite" && cfg.Store.DSN == "" {
		cfg.Store.DSN = defaultSQLiteDSN
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireSearch reports whether the settings needed to run a people search
// are present. Commands that only read the store do not need them.
func (c *Config) RequireSearch() error {
	if c.Identity.APIKey == "" {
		return fmt.Errorf("identity.api_key is required")
	}
	if c.Search.Endpoint == "" {
		return fmt.Errorf("search.endpoint is required")
	}
	return nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func validate(cfg *Config) error {
	if cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.Identity.Timeout <= 0 {
		return fmt.Errorf("identity.timeout must be positive, got %v", cfg.Identity.Timeout)
	}
	if cfg.Identity.RequestsPerSecond < 0 {
		return fmt.Errorf("identity.requests_per_second must not be negative, got %v", cfg.Identity.RequestsPerSecond)
	}
	if cfg.Search.Size < 0 {
		return fmt.Errorf("search.size must be positive, got %d", cfg.Search.Size)
	}
	if cfg.Enrichment.ChunkSize < 0 {
		return fmt.Errorf("enrichment.chunk_size must be positive, got %d", cfg.Enrichment.ChunkSize)
	}
	if cfg.Enrichment.ThrottleInterval <= 0 {
		return fmt.Errorf("enrichment.throttle_interval must be positive, got %v", cfg.Enrichment.ThrottleInterval)
	}
	if cfg.Enrichment.MaxConcurrency < 0 {
		return fmt.Errorf("enrichment.max_concurrency must be positive, got %d", cfg.Enrichment.MaxConcurrency)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}

	switch cfg.Store.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required when driver is \"postgres\"")
		}
	default:
		return fmt.Errorf("store.driver must be \"sqlite\" or \"postgres\", got %q", cfg.Store.Driver)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}
