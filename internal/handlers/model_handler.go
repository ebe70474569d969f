package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
	"pbi_migration/internal/repositories"
	"pbi_migration/internal/responses"
	"pbi_migration/internal/services"
	"pbi_migration/internal/tabular"
)

type ModelHandler struct {
	runRecorder
	applyService    *services.ApplyService
	artifactService *services.ArtifactService
}

func NewModelHandler(
	applyService *services.ApplyService,
	artifactService *services.ArtifactService,
	runRepo *repositories.ReportRunRepository,
	logger zerolog.Logger,
) *ModelHandler {
	return &ModelHandler{
		runRecorder:     runRecorder{runRepo: runRepo, logger: logger},
		applyService:    applyService,
		artifactService: artifactService,
	}
}

type ApplyModelRequest struct {
	ReportID      string `json:"report_id"`
	ModelSpecPath string `json:"model_spec_path"`
	DaxDir        string `json:"dax_dir"`
}

type tableSummary struct {
	Name     string   `json:"name"`
	Columns  int      `json:"columns"`
	Measures []string `json:"measures,omitempty"`
}

// Apply materializes a model spec plus its DAX measure files into a fresh
// in-memory tabular model and reports what was built.
func (h *ModelHandler) Apply(c *gin.Context) {
	var req ApplyModelRequest
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

	model := tabular.NewModel()
	result, err := h.applyService.Apply(model, spec, daxDir)
	if err != nil {
		h.recordRun(c, req.ReportID, "apply", specPath, "", false)
		responses.Fail(c, http.StatusUnprocessableEntity, err, "Failed to apply model spec")
		return
	}
	h.recordRun(c, req.ReportID, "apply", specPath, "", true)

	tables := make([]tableSummary, 0, len(model.Tables))
	for _, t := range model.Tables {
		summary := tableSummary{Name: t.Name, Columns: len(t.Columns)}
		for _, m := range t.Measures {
			summary.Measures = append(summary.Measures, m.Name)
		}
		tables = append(tables, summary)
	}

	responses.Success(c, http.StatusOK, gin.H{
		"result":        result,
		"tables":        tables,
		"relationships": model.Relationships,
	}, "Model spec applied successfully")
}
