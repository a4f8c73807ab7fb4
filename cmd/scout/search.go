package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aliro/scout/internal/store"
)

var dryRun bool

var searchCmd = &cobra.Command{
	Use:   "search <job-id>",
	Short: "Run one people search for a job and print the result",
	Long:  "Searches candidate names for the job, enriches them and refreshes stored partial profiles. With --dry-run nothing is written to the configured store.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "keep profiles in memory instead of the configured store")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	target := st
	if dryRun {
		logger.Info("dry run: profiles are kept in memory")
		job, err := st.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		mem := store.NewMemoryStore()
		if err := mem.SaveJob(ctx, job); err != nil {
			return err
		}
		target = mem
	}

	searcher, closeClient, err := buildSearcher(cfg, target, nil, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	result, err := searcher.Run(ctx, args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
