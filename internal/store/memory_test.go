package store

import (
	"context"
	"errors"
	"testing"

	"github.com/aliro/scout/internal/model"
)

func TestMemoryStore_InsertFindResolve(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	partial, err := s.InsertProfile(ctx, model.Profile{Person: model.Person{
		SearchPointer: "ptr-1",
		Jobs:          []model.PersonJob{{Title: "Software Engineer"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertProfile(ctx, model.Profile{Person: model.Person{
		Jobs: []model.PersonJob{{Title: "Designer"}},
	}}); err != nil {
		t.Fatal(err)
	}

	found, err := s.FindProfilesByJobTitle(ctx, "engineer")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != partial.ID {
		t.Fatalf("found = %+v", found)
	}

	updated, err := s.ResolveProfile(ctx, partial.ID, model.Person{Names: []model.PersonName{{Display: "Jane Doe"}}})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.FullPerson {
		t.Error("expected resolved profile to be a full person")
	}
	if !s.Profiles()[0].FullPerson {
		t.Error("store does not reflect the update")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.ResolveProfile(ctx, "nope", model.Person{}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ResolveProfile: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetJob(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("GetJob: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListProfilesNonPositiveLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.InsertProfile(ctx, model.Profile{}); err != nil {
		t.Fatal(err)
	}

	for _, limit := range []int{0, -1} {
		got, err := s.ListProfiles(ctx, limit)
		if err != nil {
			t.Fatalf("ListProfiles(%d): %v", limit, err)
		}
		if len(got) != 0 {
			t.Errorf("ListProfiles(%d) returned %d profiles, want 0", limit, len(got))
		}
	}
}
