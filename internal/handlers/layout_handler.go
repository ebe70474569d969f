package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pbi_migration/internal/repositories"
	"pbi_migration/internal/responses"
	"pbi_migration/internal/services"
)

type LayoutHandler struct {
	runRecorder
	layoutService   *services.LayoutService
	artifactService *services.ArtifactService
}

func NewLayoutHandler(
	layoutService *services.LayoutService,
	artifactService *services.ArtifactService,
	runRepo *repositories.ReportRunRepository,
	logger zerolog.Logger,
) *LayoutHandler {
	return &LayoutHandler{
		runRecorder:     runRecorder{runRepo: runRepo, logger: logger},
		layoutService:   layoutService,
		artifactService: artifactService,
	}
}

type GenerateLayoutRequest struct {
	ReportID       string `json:"report_id" binding:"required"`
	DatasetName    string `json:"dataset_name" binding:"required"`
	VisualSpecPath string `json:"visual_spec_path"`
}

// Generate converts a report's visual spec into Power BI layout JSON.
func (h *LayoutHandler) Generate(c *gin.Context) {
	var req GenerateLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	specPath := req.VisualSpecPath
	if specPath == "" {
		specPath = h.artifactService.VisualSpecPath(req.ReportID)
	}

	layoutPath, err := h.layoutService.GenerateReportLayout(specPath, req.DatasetName, req.ReportID)
	if err != nil {
		h.recordRun(c, req.ReportID, "layout", specPath, "", false)
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to generate report layout")
		return
	}
	h.recordRun(c, req.ReportID, "layout", specPath, layoutPath, true)

	responses.Success(c, http.StatusOK, gin.H{"layoutPath": layoutPath}, "Report layout generated")
}
