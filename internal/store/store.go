// Package store persists enriched person profiles and job postings.
package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aliro/scout/internal/model"
)

// Store is everything the CLI needs from a backend.
type Store interface {
	model.ProfileStore
	model.JobRepository
	Close() error
}

// Compile-time checks.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

func encodePerson(p model.Person) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding person: %w", err)
	}
	return data, nil
}

func decodeProfile(id string, full bool, data []byte, createdAt, updatedAt time.Time) (model.Profile, error) {
	p := model.Profile{
		ID:         id,
		FullPerson: full,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
	if err := json.Unmarshal(data, &p.Person); err != nil {
		return model.Profile{}, fmt.Errorf("decoding profile %s: %w", id, err)
	}
	return p, nil
}

// likePattern builds a case-insensitive substring pattern for LIKE/ILIKE
// with backslash as the escape character.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
