// Package poller runs a complete people search for one job posting.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aliro/scout/internal/metrics"
	"github.com/aliro/scout/internal/model"
)

// Enricher is the part of enrich.Pipeline the searcher drives.
type Enricher interface {
	Enrich(ctx context.Context, names []string) (model.BatchStats, error)
	RefreshByTitle(ctx context.Context, title string) ([]model.Profile, error)
}

// Searcher owns the full search pipeline for a job:
// job → names → enrich + refresh → report.
type Searcher struct {
	jobs          model.JobRepository
	names         model.NameSearcher
	enricher      Enricher
	reporter      model.Reporter
	titleOverride string
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewSearcher creates a searcher wired with all its dependencies.
// titleOverride, when non-empty, replaces the job title used to select
// profiles for refresh. m may be nil.
func NewSearcher(
	jobs model.JobRepository,
	names model.NameSearcher,
	enricher Enricher,
	reporter model.Reporter,
	titleOverride string,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Searcher {
	return &Searcher{
		jobs:          jobs,
		names:         names,
		enricher:      enricher,
		reporter:      reporter,
		titleOverride: titleOverride,
		metrics:       m,
		logger:        logger,
	}
}

// Run performs one people search for jobID. Unknown jobs yield an error
// wrapping model.ErrNotFound. Enrichment and refresh run concurrently; a
// refresh failure is recorded in the result and does not fail the run.
func (s *Searcher) Run(ctx context.Context, jobID string) (*model.SearchResult, error) {
	start := time.Now()

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("people search %s: %w", jobID, err)
	}

	names, err := s.names.SearchNames(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("people search %s: searching names: %w", jobID, err)
	}
	s.logger.Info("found candidate names", "job", jobID, "title", job.Title, "names", len(names))

	title := job.Title
	if s.titleOverride != "" {
		title = s.titleOverride
	}

	result := &model.SearchResult{Job: job, Names: names}

	var g errgroup.Group
	g.Go(func() error {
		stats, err := s.enricher.Enrich(ctx, names)
		result.Stats = stats
		return err
	})
	g.Go(func() error {
		matches, err := s.enricher.RefreshByTitle(ctx, title)
		if err != nil {
			s.logger.Error("refresh failed", "job", jobID, "title", title, "error", err)
			result.RefreshError = err.Error()
			return nil
		}
		result.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("people search %s: %w", jobID, err)
	}

	if err := s.reporter.Report(result); err != nil {
		s.logger.Error("reporting search result", "job", jobID, "error", err)
	}

	elapsed := time.Since(start)
	s.metrics.ObserveSearch(elapsed.Seconds())
	s.logger.Info("people search complete",
		"job", jobID,
		"names", len(names),
		"single_person", result.Stats.SinglePerson,
		"possible_persons", result.Stats.PossiblePersons,
		"non_match", result.Stats.NonMatch,
		"matches", len(result.Matches),
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return result, nil
}
