package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aliro/scout/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id          TEXT PRIMARY KEY,
	full_person INTEGER NOT NULL DEFAULT 0,
	data        TEXT NOT NULL,
	job_titles  TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles (updated_at);
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	job_function    TEXT NOT NULL DEFAULT '',
	required_skills TEXT NOT NULL DEFAULT '[]',
	desired_skills  TEXT NOT NULL DEFAULT '[]'
);`

const profileColumns = `id, full_person, data, created_at, updated_at`

// SQLiteStore keeps profiles and jobs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// Enrichment writes from many goroutines; a single connection avoids
	// SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// InsertProfile stores a new profile and returns it with its id and
// timestamps set.
func (s *SQLiteStore) InsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	data, err := encodePerson(p.Person)
	if err != nil {
		return model.Profile{}, err
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_person, data, job_titles, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.FullPerson, string(data), p.Person.JobTitles(), now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return model.Profile{}, fmt.Errorf("inserting profile: %w", err)
	}
	return p, nil
}

// FindProfilesByJobTitle returns profiles with a job title containing title,
// case-insensitively, oldest first.
func (s *SQLiteStore) FindProfilesByJobTitle(ctx context.Context, title string) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE job_titles LIKE ? ESCAPE '\' ORDER BY created_at, id`,
		likePattern(title),
	)
	if err != nil {
		return nil, fmt.Errorf("finding profiles by title %q: %w", title, err)
	}
	return scanSQLiteProfiles(rows)
}

// ResolveProfile replaces a profile's data and marks it a full person.
func (s *SQLiteStore) ResolveProfile(ctx context.Context, id string, person model.Person) (model.Profile, error) {
	data, err := encodePerson(person)
	if err != nil {
		return model.Profile{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`UPDATE profiles SET data = ?, job_titles = ?, full_person = 1, updated_at = ? WHERE id = ? RETURNING `+profileColumns,
		string(data), person.JobTitles(), time.Now().UTC().UnixMilli(), id,
	)
	p, err := scanSQLiteProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("resolving profile %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("resolving profile %s: %w", id, err)
	}
	return p, nil
}

// ListProfiles returns up to limit of the most recently updated profiles.
// A non-positive limit yields no profiles.
func (s *SQLiteStore) ListProfiles(ctx context.Context, limit int) ([]model.Profile, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY updated_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return scanSQLiteProfiles(rows)
}

// GetJob returns the job posting with the given id.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (model.JobDetails, error) {
	var (
		job               model.JobDetails
		required, desired string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, job_function, required_skills, desired_skills FROM jobs WHERE id = ?`, id,
	).Scan(&job.ID, &job.Title, &job.JobFunction, &required, &desired)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JobDetails{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.JobDetails{}, fmt.Errorf("getting job %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(required), &job.RequiredSkills); err != nil {
		return model.JobDetails{}, fmt.Errorf("decoding required skills for job %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(desired), &job.DesiredSkills); err != nil {
		return model.JobDetails{}, fmt.Errorf("decoding desired skills for job %s: %w", id, err)
	}
	return job, nil
}

// SaveJob inserts or replaces a job posting.
func (s *SQLiteStore) SaveJob(ctx context.Context, job model.JobDetails) error {
	required, err := json.Marshal(nonNil(job.RequiredSkills))
	if err != nil {
		return fmt.Errorf("encoding required skills: %w", err)
	}
	desired, err := json.Marshal(nonNil(job.DesiredSkills))
	if err != nil {
		return fmt.Errorf("encoding desired skills: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, job_function, required_skills, desired_skills) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title, job_function = excluded.job_function,
		 required_skills = excluded.required_skills, desired_skills = excluded.desired_skills`,
		job.ID, job.Title, job.JobFunction, string(required), string(desired),
	)
	if err != nil {
		return fmt.Errorf("saving job %s: %w", job.ID, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProfile(row rowScanner) (model.Profile, error) {
	var (
		id               string
		full             bool
		data             string
		created, updated int64
	)
	if err := row.Scan(&id, &full, &data, &created, &updated); err != nil {
		return model.Profile{}, err
	}
	return decodeProfile(id, full, []byte(data), time.UnixMilli(created).UTC(), time.UnixMilli(updated).UTC())
}

func scanSQLiteProfiles(rows *sql.Rows) ([]model.Profile, error) {
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanSQLiteProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}
	return profiles, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
