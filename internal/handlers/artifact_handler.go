package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pbi_migration/internal/repositories"
	"pbi_migration/internal/responses"
	"pbi_migration/internal/services"
)

type ArtifactHandler struct {
	runRecorder
	parserService   *services.ParserService
	sourceService   *services.SourceService
	artifactService *services.ArtifactService
}

func NewArtifactHandler(
	parserService *services.ParserService,
	sourceService *services.SourceService,
	artifactService *services.ArtifactService,
	runRepo *repositories.ReportRunRepository,
	logger zerolog.Logger,
) *ArtifactHandler {
	return &ArtifactHandler{
		runRecorder:     runRecorder{runRepo: runRepo, logger: logger},
		parserService:   parserService,
		sourceService:   sourceService,
		artifactService: artifactService,
	}
}

type GenerateArtifactsRequest struct {
	ReportID string `json:"report_id" binding:"required"`
}

// Generate produces the full artifact tree for a report. Both the parse
// and source-configure stages must have run first.
func (h *ArtifactHandler) Generate(c *gin.Context) {
	var req GenerateArtifactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	meta, err := h.parserService.LoadParsedMeta(c.Request.Context(), req.ReportID)
	if err != nil {
		responses.Fail(c, http.StatusNotFound, err, "Parsed metadata not found. Run /tableau/parse first")
		return
	}

	source, err := h.sourceService.Load(c.Request.Context(), req.ReportID)
	if err != nil {
		responses.Fail(c, http.StatusNotFound, err, "Source configuration not found. Run /source/configure first")
		return
	}

	manifest, err := h.artifactService.Generate(meta, req.ReportID, source.SourceType, source.SourceConfig)
	if err != nil {
		h.recordRun(c, req.ReportID, "artifacts", "", "", false)
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to generate artifacts")
		return
	}
	h.recordRun(c, req.ReportID, "artifacts", "", manifest.ModelSpec, true)

	responses.Success(c, http.StatusOK, gin.H{"artifacts": manifest}, "Artifacts generated")
}
