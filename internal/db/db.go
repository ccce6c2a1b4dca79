// Package db provides PostgreSQL persistence for tailoring runs and their
// artifacts. Persistence is optional: the pipeline runs without a database
// when no DATABASE_URL is configured.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRunNotFound reports that no tailoring run exists for the given ID.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables this application needs if they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS tailoring_runs (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	job_source   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	page_count   INT NOT NULL DEFAULT 0,
	iterations   INT NOT NULL DEFAULT 0,
	succeeded    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS artifacts (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	run_id       UUID NOT NULL REFERENCES tailoring_runs(id) ON DELETE CASCADE,
	step         TEXT NOT NULL,
	category     TEXT,
	content      JSONB,
	text_content TEXT,
	data_content BYTEA,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (run_id, step)
);`

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun creates a new tailoring run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, jobSource string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO tailoring_runs (job_source, status)
		 VALUES ($1, $2)
		 RETURNING id`,
		jobSource, StatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a tailoring run as finished and records its outcome
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, pageCount, iterations int, succeeded bool) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE tailoring_runs
		 SET status = $1, page_count = $2, iterations = $3, succeeded = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, pageCount, iterations, succeeded, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveArtifact stores a JSON artifact for a run
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, category, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step) DO UPDATE SET category = $3, content = $4, created_at = NOW()`,
		runID, step, category, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	return nil
}

// SaveTextArtifact stores a text artifact (like the .tex source) for a run
func (db *DB) SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, category, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, category, text_content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step) DO UPDATE SET category = $3, text_content = $4, created_at = NOW()`,
		runID, step, category, text,
	)
	if err != nil {
		return fmt.Errorf("failed to save text artifact %s: %w", step, err)
	}
	return nil
}

// SaveBinaryArtifact stores a binary artifact (like the finished PDF) for a run
func (db *DB) SaveBinaryArtifact(ctx context.Context, runID uuid.UUID, step, category string, data []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, category, data_content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step) DO UPDATE SET category = $3, data_content = $4, created_at = NOW()`,
		runID, step, category, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save binary artifact %s: %w", step, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and step.
// Returns nil without error when the artifact does not exist.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}

// GetTextArtifact retrieves a text artifact by run ID and step.
// Returns "" without error when the artifact does not exist.
func (db *DB) GetTextArtifact(ctx context.Context, runID uuid.UUID, step string) (string, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT text_content FROM artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get text artifact %s: %w", step, err)
	}
	return text, nil
}

// GetBinaryArtifact retrieves a binary artifact by run ID and step.
// Returns nil without error when the artifact does not exist.
func (db *DB) GetBinaryArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT data_content FROM artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get binary artifact %s: %w", step, err)
	}
	return data, nil
}

// GetRun retrieves a tailoring run by ID. Returns nil when not found.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, job_source, status, page_count, iterations, succeeded, created_at, completed_at
		 FROM tailoring_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.JobSource, &run.Status, &run.PageCount, &run.Iterations, &run.Succeeded, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent tailoring runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, job_source, status, page_count, iterations, succeeded, created_at, completed_at
		 FROM tailoring_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.JobSource, &run.Status, &run.PageCount, &run.Iterations, &run.Succeeded, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun deletes a tailoring run and all its artifacts (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM tailoring_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
