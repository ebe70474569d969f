package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pbi_migration/internal/repositories"
	"pbi_migration/internal/responses"
	"pbi_migration/internal/services"
)

type TableauHandler struct {
	runRecorder
	parserService *services.ParserService
	uploadDir     string
}

func NewTableauHandler(parserService *services.ParserService, runRepo *repositories.ReportRunRepository, uploadDir string, logger zerolog.Logger) *TableauHandler {
	return &TableauHandler{
		runRecorder:   runRecorder{runRepo: runRepo, logger: logger},
		parserService: parserService,
		uploadDir:     uploadDir,
	}
}

// Parse accepts a multipart .twb/.twbx upload plus an optional report_id
// form value, saves the workbook and extracts its metadata.
func (h *TableauHandler) Parse(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Workbook file is required")
		return
	}

	reportID := c.PostForm("report_id")
	if reportID == "" {
		reportID = "Report1"
	}

	inputPath := filepath.Join(h.uploadDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to save uploaded workbook")
		return
	}

	meta, parsedPath, err := h.parserService.ParseWorkbook(c.Request.Context(), inputPath, reportID)
	if err != nil {
		h.recordRun(c, reportID, "parse", inputPath, "", false)
		responses.Fail(c, http.StatusUnprocessableEntity, err, "Failed to parse workbook")
		return
	}
	h.recordRun(c, reportID, "parse", inputPath, parsedPath, true)

	responses.Success(c, http.StatusOK, gin.H{
		"reportId":       reportID,
		"reportName":     meta.ReportName,
		"parsedMetaPath": parsedPath,
		"tables":         len(meta.Tables),
		"measures":       len(meta.Measures),
		"worksheets":     len(meta.Worksheets),
	}, "Workbook parsed successfully")
}

// Runs lists the run history for a report.
func (h *TableauHandler) Runs(c *gin.Context) {
	reportID := c.Param("id")
	if reportID == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "Report id is required")
		return
	}

	runs, err := h.runRepo.GetByReportID(c.Request.Context(), reportID, 100)
	if err != nil {
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to load run history")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"runs": runs}, "Run history loaded")
}
