package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"pbi_migration/internal/database"
	"pbi_migration/internal/models"
)

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("pbi_migration_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.EnsureSchema(pool))
	return pool
}

func TestReportRunRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	pool := setupTestPool(t)
	repo := NewReportRunRepository(pool)
	ctx := context.Background()

	run := &models.ReportRun{
		ReportID:   "Report1",
		Stage:      "parse",
		InputFile:  "sales.twbx",
		OutputFile: "Report1_parsed_meta.json",
		Success:    true,
	}
	require.NoError(t, repo.Create(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	later := &models.ReportRun{
		ReportID:  "Report1",
		Stage:     "artifacts",
		Success:   false,
		CreatedAt: run.CreatedAt.Add(time.Second),
	}
	require.NoError(t, repo.Create(ctx, later))

	require.NoError(t, repo.Create(ctx, &models.ReportRun{
		ReportID: "Other",
		Stage:    "parse",
	}))

	runs, err := repo.GetByReportID(ctx, "Report1", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "artifacts", runs[0].Stage)
	assert.Equal(t, "parse", runs[1].Stage)
	assert.Equal(t, run.ID, runs[1].ID)
	assert.True(t, runs[1].Success)

	limited, err := repo.GetByReportID(ctx, "Report1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "artifacts", limited[0].Stage)

	none, err := repo.GetByReportID(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
