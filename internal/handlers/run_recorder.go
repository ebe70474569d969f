package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
	"pbi_migration/internal/repositories"
)

// runRecorder is shared by the pipeline handlers to persist run history.
// Recording is best effort: a failed insert is logged, never surfaced.
type runRecorder struct {
	runRepo *repositories.ReportRunRepository
	logger  zerolog.Logger
}

func (r *runRecorder) recordRun(c *gin.Context, reportID, stage, input, output string, success bool) {
	run := &models.ReportRun{
		ReportID:   reportID,
		Stage:      stage,
		InputFile:  input,
		OutputFile: output,
		Success:    success,
	}
	if err := r.runRepo.Create(c.Request.Context(), run); err != nil {
		r.logger.Warn().Err(err).Str("report_id", reportID).Str("stage", stage).Msg("failed to record run")
	}
}
