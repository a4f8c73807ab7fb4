package enrich

import (
	"context"
	"fmt"
	"sync"

	"github.com/aliro/scout/internal/model"
)

// RefreshByTitle re-queries every partial profile whose job titles contain
// title (case-insensitive) by its search pointer, and upgrades it in place
// when the identity API now returns a full person.
//
// The result holds the full profiles that were already resolved plus the ones
// upgraded by this pass, in store order. Profiles that could not be upgraded
// are logged and left out. At most MaxConcurrency pointer lookups are in
// flight at once. A failure to list profiles, or cancellation of ctx before
// the pass completes, is returned as an error.
func (p *Pipeline) RefreshByTitle(ctx context.Context, title string) ([]model.Profile, error) {
	profiles, err := p.store.FindProfilesByJobTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("refresh by title %q: %w", title, err)
	}

	results := make([]*model.Profile, len(profiles))
	var (
		wg         sync.WaitGroup
		acquireErr error
	)
	for i := range profiles {
		prof := profiles[i]

		if prof.FullPerson {
			results[i] = &profiles[i]
			p.metrics.ObserveRefresh("unchanged")
			continue
		}
		if prof.Person.SearchPointer == "" {
			p.logger.Warn("partial profile has no search pointer", "profile_id", prof.ID)
			p.metrics.ObserveRefresh("dropped")
			continue
		}

		if err := p.gate.Acquire(ctx); err != nil {
			acquireErr = err
			break
		}
		p.metrics.SetInFlight(p.gate.InFlight())

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = p.resolve(ctx, prof)
		}()
	}
	wg.Wait()

	if acquireErr != nil {
		return nil, fmt.Errorf("refresh by title %q: %w", title, acquireErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh by title %q: %w", title, err)
	}

	out := make([]model.Profile, 0, len(profiles))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	p.logger.Info("refresh complete",
		"title", title,
		"matched", len(profiles),
		"returned", len(out),
	)
	return out, nil
}

// resolve runs one pointer lookup while holding a gate slot and releases it
// before touching the store.
func (p *Pipeline) resolve(ctx context.Context, prof model.Profile) *model.Profile {
	resp, err := p.client.SearchByPointer(ctx, prof.Person.SearchPointer)
	p.gate.Release()
	p.metrics.SetInFlight(p.gate.InFlight())

	if err != nil {
		p.logger.Warn("pointer lookup failed", "profile_id", prof.ID, "error", err)
		p.metrics.ObserveRefresh("dropped")
		return nil
	}
	if resp.Person == nil {
		p.logger.Error("no person found for pointer search",
			"profile_id", prof.ID,
			"possible_persons", len(resp.PossiblePersons),
		)
		p.metrics.ObserveRefresh("dropped")
		return nil
	}

	updated, err := p.store.ResolveProfile(ctx, prof.ID, *resp.Person)
	if err != nil {
		p.logger.Error("updating resolved profile failed", "profile_id", prof.ID, "error", err)
		p.metrics.ObserveRefresh("dropped")
		return nil
	}
	p.metrics.ObserveRefresh("resolved")
	return &updated
}
