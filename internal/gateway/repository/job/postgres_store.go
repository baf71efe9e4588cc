package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS conversion_jobs (
  id TEXT PRIMARY KEY,
  family TEXT NOT NULL,
  status TEXT NOT NULL,
  input_files INTEGER NOT NULL DEFAULT 0,
  output_files INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT '',
  artifact TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  finished_at TIMESTAMP WITH TIME ZONE
);
CREATE INDEX IF NOT EXISTS idx_conversion_jobs_created_at ON conversion_jobs (created_at);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Put(ctx context.Context, rec Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return fmt.Errorf("job id is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO conversion_jobs (
  id, family, status, input_files, output_files, error, artifact, created_at, finished_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id)
DO UPDATE SET status=EXCLUDED.status,
  input_files=EXCLUDED.input_files,
  output_files=EXCLUDED.output_files,
  error=EXCLUDED.error,
  artifact=EXCLUDED.artifact,
  finished_at=EXCLUDED.finished_at`,
		id, rec.Family, string(rec.Status), rec.InputFiles, rec.OutputFiles,
		rec.Error, rec.Artifact, rec.CreatedAt, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("upsert job %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Record{}, fmt.Errorf("ensure schema: %w", err)
	}
	var (
		rec      Record
		status   string
		finished sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, family, status, input_files, output_files, error, artifact, created_at, finished_at
FROM conversion_jobs WHERE id = $1`, strings.TrimSpace(id)).Scan(
		&rec.ID, &rec.Family, &status, &rec.InputFiles, &rec.OutputFiles,
		&rec.Error, &rec.Artifact, &rec.CreatedAt, &finished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get job %s: %w", id, err)
	}
	rec.Status = Status(status)
	if finished.Valid {
		t := finished.Time
		rec.FinishedAt = &t
	}
	return rec, nil
}
