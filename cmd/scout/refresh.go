package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var refreshTitle string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Resolve stored partial profiles matching a job title",
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&refreshTitle, "title", "", "job title substring to match (required)")
	_ = refreshCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Identity.APIKey == "" {
		return fmt.Errorf("identity.api_key is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	client, closeClient := buildIdentityClient(cfg, logger)
	defer closeClient()

	pipeline, err := buildPipeline(cfg, client, st, nil, logger)
	if err != nil {
		return err
	}

	profiles, err := pipeline.RefreshByTitle(ctx, refreshTitle)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(profiles)
}
