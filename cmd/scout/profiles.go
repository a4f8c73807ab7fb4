package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aliro/scout/internal/model"
)

var (
	profilesTitle string
	profilesLimit int
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List stored profiles",
	RunE:  runProfiles,
}

func init() {
	profilesCmd.Flags().StringVar(&profilesTitle, "title", "", "only profiles whose job titles contain this text")
	profilesCmd.Flags().IntVar(&profilesLimit, "limit", 50, "maximum number of profiles to list")
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	if profilesLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", profilesLimit)
	}

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

	profiles, err := listProfiles(ctx, st, profilesTitle, profilesLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFULL\tNAME\tJOB\tUPDATED")
	for _, p := range profiles {
		job := ""
		if len(p.Person.Jobs) > 0 {
			job = p.Person.Jobs[0].Title
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%s\n",
			p.ID, p.FullPerson, p.Person.DisplayName(), job, p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// listProfiles returns up to limit profiles, filtered by title when it is set.
func listProfiles(ctx context.Context, st model.ProfileStore, title string, limit int) ([]model.Profile, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if title == "" {
		return st.ListProfiles(ctx, limit)
	}
	profiles, err := st.FindProfilesByJobTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}
