package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aliro/scout/internal/model"
)

var (
	jobID       string
	jobTitle    string
	jobFunction string
	jobRequired []string
	jobDesired  []string
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage job postings",
}

var jobAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a job posting",
	RunE:  runJobAdd,
}

var jobShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Print a stored job posting",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobShow,
}

func init() {
	jobAddCmd.Flags().StringVar(&jobID, "id", "", "job id (generated when empty)")
	jobAddCmd.Flags().StringVar(&jobTitle, "title", "", "job title (required)")
	jobAddCmd.Flags().StringVar(&jobFunction, "function", "", "job function")
	jobAddCmd.Flags().StringSliceVar(&jobRequired, "required", nil, "required skills")
	jobAddCmd.Flags().StringSliceVar(&jobDesired, "desired", nil, "desired skills")
	_ = jobAddCmd.MarkFlagRequired("title")

	jobCmd.AddCommand(jobAddCmd, jobShowCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if jobID == "" {
		jobID = uuid.NewString()
	}
	job := model.JobDetails{
		ID:             jobID,
		Title:          jobTitle,
		JobFunction:    jobFunction,
		RequiredSkills: jobRequired,
		DesiredSkills:  jobDesired,
	}
	if err := st.SaveJob(ctx, job); err != nil {
		return err
	}
	fmt.Println(job.ID)
	return nil
}

func runJobShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	job, err := st.GetJob(ctx, args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(job)
}
