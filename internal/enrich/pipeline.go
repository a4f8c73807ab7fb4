// Package enrich resolves candidate names against the identity API and
// persists the resulting profiles.
//
// Enrich works through names in fixed-size chunks: every lookup in a chunk
// runs concurrently, and the next chunk starts only after the previous one
// has finished and the throttle interval has passed. With the defaults (20
// names per chunk, 1s interval) that keeps the pipeline under the identity
// provider's 20 requests/second ceiling.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aliro/scout/internal/chunk"
	"github.com/aliro/scout/internal/gate"
	"github.com/aliro/scout/internal/metrics"
	"github.com/aliro/scout/internal/model"
	"github.com/aliro/scout/internal/ratelimit"
)

const (
	DefaultChunkSize        = 20
	DefaultThrottleInterval = time.Second
	DefaultMaxConcurrency   = 20
)

// Config tunes the pipeline. Zero values take the defaults above.
type Config struct {
	ChunkSize        int
	ThrottleInterval time.Duration
	MaxConcurrency   int
}

// Pipeline drives identity lookups for a batch of names and the refresh of
// partial profiles.
type Pipeline struct {
	client    model.IdentityClient
	store     model.ProfileStore
	chunkSize int
	throttle  *ratelimit.Throttle
	gate      *gate.Gate
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a pipeline wired with its dependencies. m may be nil.
func New(client model.IdentityClient, store model.ProfileStore, cfg Config, m *metrics.Metrics, logger *slog.Logger) (*Pipeline, error) {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ThrottleInterval == 0 {
		cfg.ThrottleInterval = DefaultThrottleInterval
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("chunk size %d: %w", cfg.ChunkSize, chunk.ErrInvalidArgument)
	}

	g, err := gate.New(cfg.MaxConcurrency)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		client:    client,
		store:     store,
		chunkSize: cfg.ChunkSize,
		throttle:  ratelimit.NewThrottle(cfg.ThrottleInterval),
		gate:      g,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Enrich looks up every name, persists what the identity API returns and
// returns the aggregated statistics.
//
// A failed lookup is logged and counted in FailedLookups; it does not stop
// its chunk. A failed insert fails its whole chunk: the chunk contributes no
// class increments, FailedChunks is incremented and the next chunk runs.
// The returned error is non-nil only when ctx is cancelled, in which case
// the statistics gathered so far are returned with it.
func (p *Pipeline) Enrich(ctx context.Context, names []string) (model.BatchStats, error) {
	var stats model.BatchStats

	chunks, err := chunk.Split(names, p.chunkSize)
	if err != nil {
		return stats, fmt.Errorf("enrich: %w", err)
	}
	total := chunk.Count(len(names), p.chunkSize)

	i := 0
	for batch := range chunks {
		i++
		if err := p.throttle.Wait(ctx); err != nil {
			return stats, fmt.Errorf("enrich: chunk %d/%d: %w", i, total, err)
		}

		cs, err := p.processChunk(ctx, batch)
		p.throttle.Done()

		if ctx.Err() != nil {
			return stats, fmt.Errorf("enrich: chunk %d/%d: %w", i, total, ctx.Err())
		}
		if err != nil {
			p.logger.Error("chunk failed, discarding its results",
				"chunk", i,
				"chunks", total,
				"names", len(batch),
				"error", err,
			)
			stats.FailedChunks++
			p.metrics.ObserveChunk(false)
			continue
		}

		stats.Merge(cs)
		p.metrics.ObserveChunk(true)
		p.logger.Debug("chunk enriched",
			"chunk", i,
			"chunks", total,
			"names", len(batch),
			"failed_lookups", cs.FailedLookups,
		)
	}

	p.logger.Info("enrichment complete",
		"names", len(names),
		"single_person", stats.SinglePerson,
		"possible_persons", stats.PossiblePersons,
		"non_match", stats.NonMatch,
		"failed_lookups", stats.FailedLookups,
		"failed_chunks", stats.FailedChunks,
	)
	return stats, nil
}

// processChunk looks up every name in the chunk concurrently and returns the
// chunk's statistics, or the first persistence error.
func (p *Pipeline) processChunk(ctx context.Context, names []string) (model.BatchStats, error) {
	var (
		mu    sync.Mutex
		stats model.BatchStats
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			resp, err := p.client.SearchByName(gctx, name)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("identity lookup failed", "name", name, "error", err)
				p.metrics.ObserveLookup("failed")
				mu.Lock()
				stats.FailedLookups++
				mu.Unlock()
				return nil
			}

			kind, inserted, err := p.persist(gctx, resp)
			if err != nil {
				return fmt.Errorf("persisting result for %q: %w", name, err)
			}
			p.metrics.ObserveLookup(kind.String())

			mu.Lock()
			stats.Add(kind)
			if kind == model.MultipleMatches {
				stats.PossibleRecords += inserted
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.BatchStats{}, err
	}
	return stats, nil
}

// persist inserts one full profile for a single match and one partial
// profile per candidate for multiple matches. It returns the classification
// and the number of profiles inserted.
func (p *Pipeline) persist(ctx context.Context, resp *model.IdentityResponse) (model.MatchKind, int, error) {
	kind := resp.Classify()
	switch kind {
	case model.SingleMatch:
		if _, err := p.store.InsertProfile(ctx, model.Profile{FullPerson: true, Person: *resp.Person}); err != nil {
			return kind, 0, err
		}
		p.metrics.ObserveInsert(true)
		return kind, 1, nil

	case model.MultipleMatches:
		for n, person := range resp.PossiblePersons {
			if _, err := p.store.InsertProfile(ctx, model.Profile{FullPerson: false, Person: person}); err != nil {
				return kind, n, err
			}
			p.metrics.ObserveInsert(false)
		}
		return kind, len(resp.PossiblePersons), nil
	}
	return kind, 0, nil
}
