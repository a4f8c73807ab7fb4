package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv("SCOUT_TEST_API_KEY", "secret-key")
	path := writeConfig(t, `
job_ids: ["job-1", "job-2"]
polling_interval: 12h
identity:
  base_url: https://identity.example.com/search/
  api_key: ${SCOUT_TEST_API_KEY}
  timeout: 10s
  requests_per_second: 5
search:
  endpoint: https://search.example.com
  size: 50
enrichment:
  chunk_size: 10
  throttle_interval: 2s
  max_concurrency: 4
  title_override: Engineer
retry:
  max_retries: 0
  base_delay: 1s
store:
  driver: postgres
  dsn: postgres://localhost/scout
notification:
  type: slack
  webhook_url: https://hooks.slack.com/services/T000/B000/XXX
server:
  addr: ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.JobIDs) != 2 || cfg.JobIDs[0] != "job-1" {
		t.Errorf("JobIDs = %v", cfg.JobIDs)
	}
	if cfg.PollingInterval != 12*time.Hour {
		t.Errorf("PollingInterval = %v, want 12h", cfg.PollingInterval)
	}
	if cfg.Identity.APIKey != "secret-key" {
		t.Errorf("APIKey = %q, want expanded env var", cfg.Identity.APIKey)
	}
	if cfg.Identity.Timeout != 10*time.Second || cfg.Identity.RequestsPerSecond != 5 || cfg.Identity.Burst != 5 {
		t.Errorf("Identity = %+v", cfg.Identity)
	}
	if cfg.Search.Size != 50 {
		t.Errorf("Search.Size = %d, want 50", cfg.Search.Size)
	}
	want := EnrichmentConfig{ChunkSize: 10, ThrottleInterval: 2 * time.Second, MaxConcurrency: 4, TitleOverride: "Engineer"}
	if cfg.Enrichment != want {
		t.Errorf("Enrichment = %+v, want %+v", cfg.Enrichment, want)
	}
	if cfg.Retry.MaxRetries != 0 || cfg.Retry.BaseDelay != time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.DSN != "postgres://localhost/scout" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.RequireSearch(); err != nil {
		t.Errorf("RequireSearch: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "job_ids: [job-1]\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PollingInterval != 24*time.Hour {
		t.Errorf("PollingInterval = %v, want 24h", cfg.PollingInterval)
	}
	if cfg.Identity.Country != "US" || cfg.Identity.MatchRequirements != "(emails and jobs)" {
		t.Errorf("Identity = %+v", cfg.Identity)
	}
	if cfg.Identity.Timeout != 30*time.Second || cfg.Identity.RequestsPerSecond != 20 || cfg.Identity.Burst != 20 {
		t.Errorf("Identity limits = %+v", cfg.Identity)
	}
	if cfg.Search.Size != 100 {
		t.Errorf("Search.Size = %d, want 100", cfg.Search.Size)
	}
	want := EnrichmentConfig{ChunkSize: 20, ThrottleInterval: time.Second, MaxConcurrency: 20}
	if cfg.Enrichment != want {
		t.Errorf("Enrichment = %+v, want %+v", cfg.Enrichment, want)
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseDelay != 5*time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "scout.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Notification.Type != "log" {
		t.Errorf("Notification.Type = %q, want log", cfg.Notification.Type)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.RequireSearch(); err == nil {
		t.Error("RequireSearch: expected error without api key and endpoint")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "polling_interval: [broken"))
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero polling interval", "polling_interval: 0\n"},
		{"bad duration", "enrichment:\n  throttle_interval: soon\n"},
		{"zero throttle interval", "enrichment:\n  throttle_interval: 0s\n"},
		{"negative throttle interval", "enrichment:\n  throttle_interval: -1s\n"},
		{"negative chunk size", "enrichment:\n  chunk_size: -1\n"},
		{"negative concurrency", "enrichment:\n  max_concurrency: -2\n"},
		{"negative retries", "retry:\n  max_retries: -1\n"},
		{"unknown driver", "store:\n  driver: mongo\n"},
		{"postgres without dsn", "store:\n  driver: postgres\n"},
		{"slack without webhook", "notification:\n  type: slack\n"},
		{"slack bad webhook", "notification:\n  type: slack\n  webhook_url: https://example.com/hook\n"},
		{"unknown notifier", "notification:\n  type: email\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("Load: expected validation error")
			}
		})
	}
}
