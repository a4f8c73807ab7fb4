package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Person is a person object returned by the identity API. Only the fields
// this system reads are typed; the full payload is kept in Raw and is what
// gets persisted.
type Person struct {
	SearchPointer string        `json:"@search_pointer,omitempty"`
	Match         float64       `json:"@match,omitempty"`
	Names         []PersonName  `json:"names,omitempty"`
	Jobs          []PersonJob   `json:"jobs,omitempty"`
	Emails        []PersonEmail `json:"emails,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type PersonName struct {
	First   string `json:"first,omitempty"`
	Last    string `json:"last,omitempty"`
	Display string `json:"display,omitempty"`
}

type PersonJob struct {
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization,omitempty"`
	Display      string `json:"display,omitempty"`
}

type PersonEmail struct {
	Address string `json:"address,omitempty"`
	Type    string `json:"@type,omitempty"`
}

// personFields breaks the UnmarshalJSON/MarshalJSON recursion.
type personFields Person

// UnmarshalJSON decodes the typed fields and keeps a copy of the raw payload.
func (p *Person) UnmarshalJSON(b []byte) error {
	var f personFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*p = Person(f)
	p.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON returns the raw payload when present so unknown API fields
// survive a round trip through the store.
func (p Person) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(personFields(p))
}

// DisplayName returns the first display name, or first+last, or "".
func (p Person) DisplayName() string {
	for _, n := range p.Names {
		if n.Display != "" {
			return n.Display
		}
		if full := strings.TrimSpace(n.First + " " + n.Last); full != "" {
			return full
		}
	}
	return ""
}

// JobTitles returns the lower-cased job titles joined by newlines. Stores
// keep this next to the document so title lookups are a substring match.
func (p Person) JobTitles() string {
	titles := make([]string, 0, len(p.Jobs))
	for _, j := range p.Jobs {
		t := j.Title
		if t == "" {
			t = j.Display
		}
		if t != "" {
			titles = append(titles, strings.ToLower(t))
		}
	}
	return strings.Join(titles, "\n")
}

// IdentityResponse is the body of an identity API search. At most one of
// Person and PossiblePersons is expected to be set.
type IdentityResponse struct {
	Person          *Person  `json:"person,omitempty"`
	PossiblePersons []Person `json:"possible_persons,omitempty"`
}

// MatchKind classifies an IdentityResponse.
type MatchKind int

const (
	NoMatch MatchKind = iota
	SingleMatch
	MultipleMatches
)

func (k MatchKind) String() string {
	switch k {
	case SingleMatch:
		return "single_person"
	case MultipleMatches:
		return "possible_persons"
	default:
		return "non_match"
	}
}

// Classify reports whether the response resolved to one person, a set of
// candidates, or nothing. An empty possible_persons list counts as no match.
func (r IdentityResponse) Classify() MatchKind {
	switch {
	case r.Person != nil:
		return SingleMatch
	case len(r.PossiblePersons) > 0:
		return MultipleMatches
	default:
		return NoMatch
	}
}

// Profile is a persisted person document.
type Profile struct {
	ID         string    `json:"id"`
	FullPerson bool      `json:"full_person"`
	Person     Person    `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BatchStats aggregates the outcome of one Enrich call. Exactly one of
// SinglePerson, PossiblePersons and NonMatch is incremented per name that was
// looked up and persisted successfully.
type BatchStats struct {
	SinglePerson    int `json:"single_person"`
	PossiblePersons int `json:"possible_persons"`
	NonMatch        int `json:"non_match"`

	PossibleRecords int `json:"possible_records"` // candidate profiles inserted
	FailedLookups   int `json:"failed_lookups"`
	FailedChunks    int `json:"failed_chunks"`
}

// Add increments the counter for kind.
func (s *BatchStats) Add(kind MatchKind) {
	switch kind {
	case SingleMatch:
		s.SinglePerson++
	case MultipleMatches:
		s.PossiblePersons++
	default:
		s.NonMatch++
	}
}

// Merge adds o's counters to s.
func (s *BatchStats) Merge(o BatchStats) {
	s.SinglePerson += o.SinglePerson
	s.PossiblePersons += o.PossiblePersons
	s.NonMatch += o.NonMatch
	s.PossibleRecords += o.PossibleRecords
	s.FailedLookups += o.FailedLookups
	s.FailedChunks += o.FailedChunks
}

// Processed returns the number of names that produced a class increment.
func (s BatchStats) Processed() int {
	return s.SinglePerson + s.PossiblePersons + s.NonMatch
}
