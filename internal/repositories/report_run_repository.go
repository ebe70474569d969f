package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pbi_migration/internal/models"
)

type ReportRunRepository struct {
	pool *pgxpool.Pool
}

func NewReportRunRepository(pool *pgxpool.Pool) *ReportRunRepository {
	return &ReportRunRepository{pool: pool}
}

func (r *ReportRunRepository) Create(ctx context.Context, run *models.ReportRun) error {
	run.Prepare()

	query := `
		INSERT INTO report_runs (id, report_id, stage, input_file, output_file, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.ReportID,
		run.Stage,
		run.InputFile,
		run.OutputFile,
		run.Success,
		run.CreatedAt,
	)

	return err
}

func (r *ReportRunRepository) GetByReportID(ctx context.Context, reportID string, limit int) ([]models.ReportRun, error) {
	if limit <= 0 {
		limit = 100 // Default limit
	}

	query := `
		SELECT id, report_id, stage, input_file, output_file, success, created_at
		FROM report_runs WHERE report_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, reportID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ReportRun
	for rows.Next() {
		var run models.ReportRun
		err := rows.Scan(
			&run.ID,
			&run.ReportID,
			&run.Stage,
			&run.InputFile,
			&run.OutputFile,
			&run.Success,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
