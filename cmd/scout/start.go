package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aliro/scout/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the search daemon",
	Long:  "Re-runs the people search for every configured job on the polling interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.JobIDs) == 0 {
		return fmt.Errorf("job_ids is empty: nothing to search")
	}

	logger.Info("config loaded",
		"interval", cfg.PollingInterval.String(),
		"jobs", len(cfg.JobIDs),
		"store", cfg.Store.Driver,
		"chunk_size", cfg.Enrichment.ChunkSize,
		"throttle_interval", cfg.Enrichment.ThrottleInterval.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	searcher, closeClient, err := buildSearcher(cfg, st, nil, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	sched := scheduler.NewScheduler(searcher, cfg.JobIDs, cfg.PollingInterval, logger)
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("goodbye")
	return nil
}
