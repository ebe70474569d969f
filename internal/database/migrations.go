package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const reportRunsSchema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id UUID PRIMARY KEY,
	report_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	input_file TEXT NOT NULL DEFAULT '',
	output_file TEXT NOT NULL DEFAULT '',
	success BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_report_runs_report_id ON report_runs (report_id, created_at DESC);
`

// EnsureSchema creates the run-history table when it does not exist yet.
func EnsureSchema(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, reportRunsSchema); err != nil {
		return fmt.Errorf("failed to ensure report_runs schema: %w", err)
	}
	return nil
}
