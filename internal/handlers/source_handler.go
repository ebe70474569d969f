package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"pbi_migration/internal/responses"
	"pbi_migration/internal/services"
)

type SourceHandler struct {
	sourceService   *services.SourceService
	workbookService *services.WorkbookService
}

func NewSourceHandler(sourceService *services.SourceService, workbookService *services.WorkbookService) *SourceHandler {
	return &SourceHandler{
		sourceService:   sourceService,
		workbookService: workbookService,
	}
}

type ConfigureSourceRequest struct {
	ReportID     string            `json:"report_id" binding:"required"`
	SourceType   string            `json:"source_type" binding:"required"`
	SourceConfig map[string]string `json:"source_config" binding:"required"`
}

// Configure stores the data-source selection for a report.
func (h *SourceHandler) Configure(c *gin.Context) {
	var req ConfigureSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	path, err := h.sourceService.Save(c.Request.Context(), &services.SourceConfig{
		ReportID:     req.ReportID,
		SourceType:   req.SourceType,
		SourceConfig: req.SourceConfig,
	})
	if err != nil {
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to save source config")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"path": path}, "Source config saved")
}

// Worksheet fetches a hosted spreadsheet and returns Sheet1 with the first
// row promoted to column headers. The bearer token comes from
// WORKBOOK_TOKEN so credentials never travel in the query string.
func (h *SourceHandler) Worksheet(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "url query parameter is required")
		return
	}

	rows, err := h.workbookService.FetchWorksheet(c.Request.Context(), url, os.Getenv("WORKBOOK_TOKEN"))
	if err != nil {
		responses.Fail(c, http.StatusBadGateway, err, "Failed to fetch worksheet")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"rows": rows, "count": len(rows)}, "Worksheet fetched")
}
