package model

import (
	"context"
)

// JobDetails is the subset of a job posting used to search for candidates.
type JobDetails struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	JobFunction    string   `json:"job_function"`
	RequiredSkills []string `json:"required_skills"`
	DesiredSkills  []string `json:"desired_skills"`
}

// SearchResult is the outcome of one people search for a job.
type SearchResult struct {
	Job          JobDetails `json:"job"`
	Names        []string   `json:"names"`
	Stats        BatchStats `json:"stats"`
	Matches      []Profile  `json:"matches"`
	RefreshError string     `json:"refresh_error,omitempty"`
}

// IdentityClient queries the person-data API.
type IdentityClient interface {
	SearchByName(ctx context.Context, name string) (*IdentityResponse, error)
	SearchByPointer(ctx context.Context, pointer string) (*IdentityResponse, error)
}

// NameSearcher finds candidate names for a job in the search index.
type NameSearcher interface {
	SearchNames(ctx context.Context, job JobDetails) ([]string, error)
}

// ProfileStore persists enriched person profiles.
type ProfileStore interface {
	InsertProfile(ctx context.Context, p Profile) (Profile, error)
	FindProfilesByJobTitle(ctx context.Context, title string) ([]Profile, error)
	// ResolveProfile replaces the profile's data, marks it a full person and
	// returns the updated document. Returns ErrNotFound for unknown ids.
	ResolveProfile(ctx context.Context, id string, person Person) (Profile, error)
	// ListProfiles returns up to limit profiles, most recently updated
	// first. A non-positive limit yields no profiles.
	ListProfiles(ctx context.Context, limit int) ([]Profile, error)
}

// JobRepository looks up job postings.
type JobRepository interface {
	GetJob(ctx context.Context, id string) (JobDetails, error)
	SaveJob(ctx context.Context, job JobDetails) error
}

// Reporter publishes the result of a people search.
type Reporter interface {
	Report(result *SearchResult) error
}
