package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
	"pbi_migration/internal/repositories"
	"pbi_migration/internal/responses"
	"pbi_migration/internal/services"
)

type ScriptHandler struct {
	runRecorder
	scriptService   *services.ScriptService
	artifactService *services.ArtifactService
}

func NewScriptHandler(
	scriptService *services.ScriptService,
	artifactService *services.ArtifactService,
	runRepo *repositories.ReportRunRepository,
	logger zerolog.Logger,
) *ScriptHandler {
	return &ScriptHandler{
		runRecorder:     runRecorder{runRepo: runRepo, logger: logger},
		scriptService:   scriptService,
		artifactService: artifactService,
	}
}

type GenerateScriptRequest struct {
	ReportID string `json:"report_id"`
	// ModelSpecPath overrides the generated artifact location; with it set
	// the handler works without a prior artifacts run.
	ModelSpecPath string `json:"model_spec_path"`
	DaxDir        string `json:"dax_dir"`
}

// Generate renders the Tabular Editor apply script for a model spec.
func (h *ScriptHandler) Generate(c *gin.Context) {
	var req GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.ReportID == "" && req.ModelSpecPath == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "report_id or model_spec_path is required")
		return
	}

	specPath := req.ModelSpecPath
	if specPath == "" {
		specPath = h.artifactService.ModelSpecPath(req.ReportID)
	}
	daxDir := req.DaxDir
	if daxDir == "" {
		daxDir = h.artifactService.DaxDir()
	}

	spec, err := models.LoadModelSpec(specPath)
	if err != nil {
		responses.Fail(c, http.StatusNotFound, err, "Model spec not found or invalid")
		return
	}

	scriptPath, err := h.scriptService.GenerateApplyScript(spec, daxDir)
	if err != nil {
		h.recordRun(c, req.ReportID, "script", specPath, "", false)
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to generate apply script")
		return
	}
	h.recordRun(c, req.ReportID, "script", specPath, scriptPath, true)

	responses.Success(c, http.StatusOK, gin.H{"scriptPath": scriptPath}, "Apply script generated")
}
