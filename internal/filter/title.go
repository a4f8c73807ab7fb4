// Package filter holds the predicates used to pick candidates and profiles.
package filter

import (
	"strings"

	"github.com/aliro/scout/internal/model"
)

// TitleFilter matches profiles that held a job whose title contains the
// keyword. Matching is case-insensitive. An empty keyword matches all.
type TitleFilter struct {
	keyword string
}

// NewTitleFilter returns a case-insensitive substring filter on job titles.
func NewTitleFilter(keyword string) *TitleFilter {
	return &TitleFilter{keyword: strings.ToLower(strings.TrimSpace(keyword))}
}

// Match returns true if any of the profile's job titles contains the keyword.
func (f *TitleFilter) Match(p model.Profile) bool {
	if f.keyword == "" {
		return true
	}
	return strings.Contains(p.Person.JobTitles(), f.keyword)
}
