package enrich

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aliro/scout/internal/model"
	"github.com/aliro/scout/internal/store"
)

// --- Fakes ---

type call struct {
	name       string
	start, end time.Time
}

// fakeIdentity serves canned responses by name and by pointer, records call
// timing and tracks the peak number of concurrent calls.
type fakeIdentity struct {
	byName    map[string]*model.IdentityResponse
	byPointer map[string]*model.IdentityResponse
	nameErr   map[string]error
	delay     time.Duration

	mu       sync.Mutex
	calls    []call
	inFlight int
	peak     int
}

func (f *fakeIdentity) enter() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	return time.Now()
}

func (f *fakeIdentity) leave(name string, start time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	f.calls = append(f.calls, call{name: name, start: start, end: time.Now()})
}

func (f *fakeIdentity) sleep(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeIdentity) SearchByName(ctx context.Context, name string) (*model.IdentityResponse, error) {
	start := f.enter()
	defer f.leave(name, start)

	if err := f.sleep(ctx); err != nil {
		return nil, err
	}
	if err, ok := f.nameErr[name]; ok {
		return nil, err
	}
	if resp, ok := f.byName[name]; ok {
		return resp, nil
	}
	return &model.IdentityResponse{}, nil
}

func (f *fakeIdentity) SearchByPointer(ctx context.Context, pointer string) (*model.IdentityResponse, error) {
	start := f.enter()
	defer f.leave(pointer, start)

	if err := f.sleep(ctx); err != nil {
		return nil, err
	}
	if resp, ok := f.byPointer[pointer]; ok {
		return resp, nil
	}
	return nil, errors.New("unknown pointer")
}

func (f *fakeIdentity) callsFor(name string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// failingStore wraps a MemoryStore and fails inserts of persons whose search
// pointer is listed in failPointers.
type failingStore struct {
	*store.MemoryStore
	failPointers map[string]bool
	findErr      error
}

func (s *failingStore) InsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	if s.failPointers[p.Person.SearchPointer] {
		return model.Profile{}, errors.New("disk full")
	}
	return s.MemoryStore.InsertProfile(ctx, p)
}

func (s *failingStore) FindProfilesByJobTitle(ctx context.Context, title string) ([]model.Profile, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.MemoryStore.FindProfilesByJobTitle(ctx, title)
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func person(pointer, first, last, title string) model.Person {
	p := model.Person{
		SearchPointer: pointer,
		Names:         []model.PersonName{{First: first, Last: last}},
	}
	if title != "" {
		p.Jobs = []model.PersonJob{{Title: title}}
	}
	return p
}

func single(p model.Person) *model.IdentityResponse {
	return &model.IdentityResponse{Person: &p}
}

func possible(ps ...model.Person) *model.IdentityResponse {
	return &model.IdentityResponse{PossiblePersons: ps}
}
