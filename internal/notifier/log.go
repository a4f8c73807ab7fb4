package notifier

import (
	"log/slog"

	"github.com/aliro/scout/internal/model"
)

var _ model.Reporter = (*LogReporter)(nil)

// LogReporter writes search results to the given logger.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs a summary line plus one line per matched profile. It never fails.
func (r *LogReporter) Report(result *model.SearchResult) error {
	r.logger.Info("people search result",
		"job", result.Job.ID,
		"title", result.Job.Title,
		"names", len(result.Names),
		"single_person", result.Stats.SinglePerson,
		"possible_persons", result.Stats.PossiblePersons,
		"non_match", result.Stats.NonMatch,
		"failed_lookups", result.Stats.FailedLookups,
		"failed_chunks", result.Stats.FailedChunks,
		"matches", len(result.Matches),
	)
	if result.RefreshError != "" {
		r.logger.Warn("refresh incomplete", "job", result.Job.ID, "error", result.RefreshError)
	}
	for _, p := range result.Matches {
		r.logger.Info("matched profile",
			"id", p.ID,
			"name", p.Person.DisplayName(),
			"titles", p.Person.JobTitles(),
		)
	}
	return nil
}
