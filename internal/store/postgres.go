package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliro/scout/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock's pool
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id          UUID PRIMARY KEY,
	full_person BOOLEAN NOT NULL DEFAULT FALSE,
	data        JSONB NOT NULL,
	job_titles  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles (updated_at);
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	job_function    TEXT NOT NULL DEFAULT '',
	required_skills TEXT[] NOT NULL DEFAULT '{}',
	desired_skills  TEXT[] NOT NULL DEFAULT '{}'
)`

const pgProfileColumns = `id::text, full_person, data, created_at, updated_at`

// PostgresStore keeps profiles and jobs in PostgreSQL.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgresStore creates a store over an existing pool. The caller owns
// the pool's lifecycle.
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres connects to dsn, ensures the schema exists and returns a store
// that closes the pool on Close.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &PostgresStore{pool: pool, closeFn: pool.Close}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// InsertProfile stores a new profile and returns it with its id and
// timestamps set.
func (s *PostgresStore) InsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	data, err := encodePerson(p.Person)
	if err != nil {
		return model.Profile{}, err
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (id, full_person, data, job_titles, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`,
		p.ID, p.FullPerson, data, p.Person.JobTitles(), now,
	)
	if err != nil {
		return model.Profile{}, fmt.Errorf("postgres: insert profile: %w", err)
	}
	return p, nil
}

// FindProfilesByJobTitle returns profiles with a job title containing title,
// case-insensitively, oldest first.
func (s *PostgresStore) FindProfilesByJobTitle(ctx context.Context, title string) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgProfileColumns+` FROM profiles WHERE job_titles ILIKE $1 ESCAPE '\' ORDER BY created_at, id`,
		likePattern(title),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: find profiles by title %q: %w", title, err)
	}
	return scanPgProfiles(rows)
}

// ResolveProfile replaces a profile's data and marks it a full person.
func (s *PostgresStore) ResolveProfile(ctx context.Context, id string, person model.Person) (model.Profile, error) {
	data, err := encodePerson(person)
	if err != nil {
		return model.Profile{}, err
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE profiles SET data = $2, job_titles = $3, full_person = TRUE, updated_at = $4 WHERE id = $1 RETURNING `+pgProfileColumns,
		id, data, person.JobTitles(), time.Now().UTC(),
	)
	p, err := scanPgProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("postgres: resolve profile %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("postgres: resolve profile %s: %w", id, err)
	}
	return p, nil
}

// ListProfiles returns up to limit of the most recently updated profiles.
// A non-positive limit yields no profiles.
func (s *PostgresStore) ListProfiles(ctx context.Context, limit int) ([]model.Profile, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgProfileColumns+` FROM profiles ORDER BY updated_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list profiles: %w", err)
	}
	return scanPgProfiles(rows)
}

// GetJob returns the job posting with the given id.
func (s *PostgresStore) GetJob(ctx context.Context, id string) (model.JobDetails, error) {
	var job model.JobDetails
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, job_function, required_skills, desired_skills FROM jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.Title, &job.JobFunction, &job.RequiredSkills, &job.DesiredSkills)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.JobDetails{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.JobDetails{}, fmt.Errorf("postgres: get job %s: %w", id, err)
	}
	return job, nil
}

// SaveJob inserts or replaces a job posting.
func (s *PostgresStore) SaveJob(ctx context.Context, job model.JobDetails) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, job_function, required_skills, desired_skills) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, job_function = EXCLUDED.job_function,
		 required_skills = EXCLUDED.required_skills, desired_skills = EXCLUDED.desired_skills`,
		job.ID, job.Title, job.JobFunction, nonNil(job.RequiredSkills), nonNil(job.DesiredSkills),
	)
	if err != nil {
		return fmt.Errorf("postgres: save job %s: %w", job.ID, err)
	}
	return nil
}

// Close closes the pool if this store opened it.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func scanPgProfile(row pgx.Row) (model.Profile, error) {
	var (
		id               string
		full             bool
		data             []byte
		created, updated time.Time
	)
	if err := row.Scan(&id, &full, &data, &created, &updated); err != nil {
		return model.Profile{}, err
	}
	return decodeProfile(id, full, data, created, updated)
}

func scanPgProfiles(rows pgx.Rows) ([]model.Profile, error) {
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanPgProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate profiles: %w", err)
	}
	return profiles, nil
}
