package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aliro/scout/internal/filter"
	"github.com/aliro/scout/internal/model"
)

const (
	cloudSearchPath   = "/2013-01-01/search"
	cloudSearchField  = "person_e"
	DefaultSearchSize = 100

	maxSearchResponseBytes = 4 << 20
)

type cloudSearchResponse struct {
	Hits struct {
		Found int `json:"found"`
		Hit   []struct {
			ID     string              `json:"id"`
			Fields map[string][]string `json:"fields"`
		} `json:"hit"`
	} `json:"hits"`
}

// CloudSearchAdapter finds candidate names in a CloudSearch domain whose
// documents carry extracted person entities.
type CloudSearchAdapter struct {
	endpoint string
	size     int
	client   *http.Client
}

// NewCloudSearchAdapter creates a name searcher for the given search
// endpoint (e.g. https://search-people-xyz.us-east-1.cloudsearch.amazonaws.com).
func NewCloudSearchAdapter(endpoint string, size int, client *http.Client) *CloudSearchAdapter {
	if size <= 0 {
		size = DefaultSearchSize
	}
	return &CloudSearchAdapter{
		endpoint: strings.TrimRight(endpoint, "/"),
		size:     size,
		client:   client,
	}
}

// SearchNames queries the index with the job's title, function and skills
// and returns up to size distinct, valid person names in first-seen order.
func (a *CloudSearchAdapter) SearchNames(ctx context.Context, job model.JobDetails) ([]string, error) {
	q := url.Values{}
	q.Set("q", BuildJobQuery(job))
	q.Set("q.parser", "lucene")
	q.Set("return", cloudSearchField)
	q.Set("size", strconv.Itoa(a.size))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+cloudSearchPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("cloudsearch query for job %s: %w", job.ID, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudsearch query for job %s: %w", job.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("cloudsearch query for job %s", job.ID),
		}
	}

	var csResp cloudSearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSearchResponseBytes)).Decode(&csResp); err != nil {
		return nil, fmt.Errorf("cloudsearch query for job %s: %w", job.ID, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, hit := range csResp.Hits.Hit {
		for _, name := range hit.Fields[cloudSearchField] {
			if !filter.IsValidName(name) || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) > a.size {
		names = names[:a.size]
	}
	return names, nil
}

// BuildJobQuery ORs together the quoted title, job function and skills.
// Embedded double quotes are stripped and empty terms skipped.
func BuildJobQuery(job model.JobDetails) string {
	terms := []string{job.Title, job.JobFunction}
	terms = append(terms, job.DesiredSkills...)
	terms = append(terms, job.RequiredSkills...)

	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(strings.ReplaceAll(t, `"`, ""))
		if t == "" {
			continue
		}
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}
