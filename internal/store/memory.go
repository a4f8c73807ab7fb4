package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliro/scout/internal/filter"
	"github.com/aliro/scout/internal/model"
)

// MemoryStore is an in-process store used for dry runs and tests. Nothing
// survives the process.
type MemoryStore struct {
	mu       sync.Mutex
	profiles []model.Profile
	jobs     map[string]model.JobDetails
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.JobDetails)}
}

func (s *MemoryStore) InsertProfile(_ context.Context, p model.Profile) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	s.profiles = append(s.profiles, p)
	return p, nil
}

func (s *MemoryStore) FindProfilesByJobTitle(_ context.Context, title string) ([]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := filter.NewTitleFilter(title)
	var out []model.Profile
	for _, p := range s.profiles {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) ResolveProfile(_ context.Context, id string, person model.Person) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.profiles, func(p model.Profile) bool { return p.ID == id })
	if i < 0 {
		return model.Profile{}, fmt.Errorf("resolving profile %s: %w", id, model.ErrNotFound)
	}
	s.profiles[i].Person = person
	s.profiles[i].FullPerson = true
	s.profiles[i].UpdatedAt = time.Now().UTC()
	return s.profiles[i], nil
}

func (s *MemoryStore) ListProfiles(_ context.Context, limit int) ([]model.Profile, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(s.profiles)
	slices.SortStableFunc(out, func(a, b model.Profile) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (model.JobDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return model.JobDetails{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	return job, nil
}

func (s *MemoryStore) SaveJob(_ context.Context, job model.JobDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job
	return nil
}

// Profiles returns a snapshot of every stored profile in insertion order.
func (s *MemoryStore) Profiles() []model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.profiles)
}

func (s *MemoryStore) Close() error { return nil }
