package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliro/scout/internal/adapter"
	"github.com/aliro/scout/internal/config"
	"github.com/aliro/scout/internal/enrich"
	"github.com/aliro/scout/internal/metrics"
	"github.com/aliro/scout/internal/model"
	"github.com/aliro/scout/internal/notifier"
	"github.com/aliro/scout/internal/poller"
	"github.com/aliro/scout/internal/ratelimit"
	"github.com/aliro/scout/internal/retry"
	"github.com/aliro/scout/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "scout",
	Short:        "Candidate sourcing for job postings",
	Long:         "Scout finds candidate names for a job posting, enriches them through an identity API and stores the resulting profiles.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: SCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > SCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("SCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// openStore opens the configured store. Callers own the returned store and
// must Close it.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.OpenPostgres(ctx, cfg.Store.DSN)
	default:
		return store.NewSQLiteStore(cfg.Store.DSN)
	}
}

func setupReporter(cfg *config.Config, logger *slog.Logger) model.Reporter {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack reporter")
		return notifier.NewSlackReporter(cfg.Notification.WebhookURL, &http.Client{Timeout: 30 * time.Second}, logger)
	default:
		return notifier.NewLogReporter(logger)
	}
}

// buildIdentityClient returns the identity client decorated with a client
// side rate limit and retries. The returned func releases its connections.
func buildIdentityClient(cfg *config.Config, logger *slog.Logger) (model.IdentityClient, func()) {
	pipl := adapter.NewPiplAdapter(
		cfg.Identity.BaseURL,
		cfg.Identity.APIKey,
		cfg.Identity.Country,
		cfg.Identity.MatchRequirements,
		&http.Client{Timeout: cfg.Identity.Timeout},
	)
	limited := ratelimit.NewLimitedClient(pipl, cfg.Identity.RequestsPerSecond, cfg.Identity.Burst)
	return retry.NewRetryClient(limited, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger), pipl.Close
}

func buildPipeline(cfg *config.Config, client model.IdentityClient, profiles model.ProfileStore, m *metrics.Metrics, logger *slog.Logger) (*enrich.Pipeline, error) {
	p, err := enrich.New(client, profiles, enrich.Config{
		ChunkSize:        cfg.Enrichment.ChunkSize,
		ThrottleInterval: cfg.Enrichment.ThrottleInterval,
		MaxConcurrency:   cfg.Enrichment.MaxConcurrency,
	}, m, logger)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	return p, nil
}

// buildSearcher wires the full people search on top of st.
func buildSearcher(cfg *config.Config, st store.Store, m *metrics.Metrics, logger *slog.Logger) (*poller.Searcher, func(), error) {
	if err := cfg.RequireSearch(); err != nil {
		return nil, nil, err
	}

	client, closeClient := buildIdentityClient(cfg, logger)
	pipeline, err := buildPipeline(cfg, client, st, m, logger)
	if err != nil {
		closeClient()
		return nil, nil, err
	}

	names := adapter.NewCloudSearchAdapter(cfg.Search.Endpoint, cfg.Search.Size, &http.Client{Timeout: 30 * time.Second})
	searcher := poller.NewSearcher(st, names, pipeline, setupReporter(cfg, logger), cfg.Enrichment.TitleOverride, m, logger)
	return searcher, closeClient, nil
}
