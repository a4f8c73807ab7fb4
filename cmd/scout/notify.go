package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aliro/scout/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test report",
	Long:  "Sends a canned search result through the configured reporter.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := notifier.SendTestReport(setupReporter(cfg, logger)); err != nil {
		return fmt.Errorf("test report failed: %w", err)
	}
	logger.Info("test report sent successfully")
	return nil
}
