package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aliro/scout/internal/model"
)

var _ model.Reporter = (*SlackReporter)(nil)

// maxListedMatches caps how many profiles one Slack message lists.
const maxListedMatches = 10

// SlackReporter posts a search summary to a Slack channel via Incoming Webhooks.
type SlackReporter struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSlackReporter(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackReporter {
	return &SlackReporter{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Report sends one Block Kit message for the result. A 429 is retried once
// after the Retry-After delay.
func (s *SlackReporter) Report(result *model.SearchResult) error {
	body, err := json.Marshal(buildPayload(result))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		status, _, err = s.post(body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack report sent", "job", result.Job.ID, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack report sent", "job", result.Job.ID)
	return nil
}

func (s *SlackReporter) post(body []byte) (int, string, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestReport sends a canned result to verify the integration works.
func SendTestReport(r model.Reporter) error {
	test := &model.SearchResult{
		Job:   model.JobDetails{ID: "test-001", Title: "Integration Check"},
		Names: []string{"Jane Doe", "John Smith"},
		Stats: model.BatchStats{SinglePerson: 1, NonMatch: 1},
		Matches: []model.Profile{{
			ID:         "test-profile",
			FullPerson: true,
			Person: model.Person{
				Names: []model.PersonName{{First: "Jane", Last: "Doe"}},
				Jobs:  []model.PersonJob{{Title: "Software Engineer", Organization: "Scout"}},
			},
		}},
	}
	return r.Report(test)
}

func buildPayload(result *model.SearchResult) slackPayload {
	st := result.Stats
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "People search: " + result.Job.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Names searched:*\n%d", len(result.Names))},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Single matches:*\n%d", st.SinglePerson)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Possible matches:*\n%d (%d records)", st.PossiblePersons, st.PossibleRecords)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*No match:*\n%d", st.NonMatch)},
			},
		},
	}

	if st.FailedLookups > 0 || st.FailedChunks > 0 || result.RefreshError != "" {
		text := fmt.Sprintf("*Failed lookups:* %d   *Failed chunks:* %d", st.FailedLookups, st.FailedChunks)
		if result.RefreshError != "" {
			text += "\n*Refresh error:* " + result.RefreshError
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
	}

	if len(result.Matches) > 0 {
		var lines []string
		for i, p := range result.Matches {
			if i == maxListedMatches {
				lines = append(lines, fmt.Sprintf("_and %d more_", len(result.Matches)-maxListedMatches))
				break
			}
			lines = append(lines, "• "+describe(p.Person))
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*Matched profiles (%d):*\n%s", len(result.Matches), strings.Join(lines, "\n"))},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}

func describe(p model.Person) string {
	name := p.DisplayName()
	if name == "" {
		name = "(unnamed)"
	}
	if len(p.Jobs) == 0 {
		return name
	}
	job := p.Jobs[0]
	switch {
	case job.Title != "" && job.Organization != "":
		return fmt.Sprintf("%s, %s at %s", name, job.Title, job.Organization)
	case job.Title != "":
		return name + ", " + job.Title
	case job.Display != "":
		return name + ", " + job.Display
	}
	return name
}
