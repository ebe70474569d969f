package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
	"pbi_migration/internal/utils"
)

// ArtifactService turns parsed workbook metadata into the Power BI artifact
// tree: model spec JSON, one .dax file per measure, a Power Query source
// script, a visual spec, and a manifest tying them together.
type ArtifactService struct {
	logger       zerolog.Logger
	artifactsDir string
}

func NewArtifactService(logger zerolog.Logger, artifactsDir string) *ArtifactService {
	return &ArtifactService{logger: logger, artifactsDir: artifactsDir}
}

// ArtifactManifest lists every file one generation run produced.
type ArtifactManifest struct {
	ReportID        string   `json:"reportId"`
	GeneratedAt     string   `json:"generatedAt"`
	ModelSpec       string   `json:"modelSpec"`
	DaxFiles        []string `json:"daxFiles"`
	VisualSpec      string   `json:"visualSpec"`
	PowerQueryFiles []string `json:"powerQueryFiles"`
}

// VisualSpec is the page-level description handed to layout generation.
type VisualSpec struct {
	ReportID    string             `json:"reportId"`
	GeneratedAt string             `json:"generatedAt"`
	Pages       []models.Worksheet `json:"pages"`
}

// Generate writes the full artifact tree for a report and returns the
// manifest. sourceType selects the Power Query template (excel, sharepoint,
// sql, fabric).
func (s *ArtifactService) Generate(meta *models.ParsedMeta, reportID, sourceType string, sourceConfig map[string]string) (*ArtifactManifest, error) {
	reportID = utils.SafeID(reportID)
	generatedAt := time.Now().UTC().Format(time.RFC3339)

	modelDir := filepath.Join(s.artifactsDir, "model")
	daxDir := filepath.Join(s.artifactsDir, "dax")
	visualsDir := filepath.Join(s.artifactsDir, "visuals")
	pqDir := filepath.Join(s.artifactsDir, "powerquery")
	for _, dir := range []string{modelDir, daxDir, visualsDir, pqDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create artifact directory %q: %w", dir, err)
		}
	}

	// Model spec: normalized column types, identifier-safe table names.
	tables := make([]models.TableSpec, 0, len(meta.Tables))
	for _, t := range meta.Tables {
		cols := make([]models.ColumnSpec, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, models.ColumnSpec{
				Name: c.Name,
				Type: utils.NormalizeType(c.Type),
			})
		}
		tables = append(tables, models.TableSpec{
			Name:    utils.SafeID(t.Name),
			Columns: cols,
		})
	}

	modelSpec := models.ModelSpec{
		ReportID:      reportID,
		GeneratedAt:   generatedAt,
		Tables:        tables,
		Relationships: meta.Relationships,
	}
	modelPath := filepath.Join(modelDir, reportID+"_modelspec.json")
	if err := s.writeJSON(modelPath, &modelSpec); err != nil {
		return nil, err
	}

	// Measures: one DAX expression file each. An empty expression still
	// produces a file so the measure shows up for manual completion.
	daxFiles := make([]string, 0, len(meta.Measures))
	for _, m := range meta.Measures {
		expr := m.Expression
		if expr == "" {
			expr = "// TODO: Implement DAX for " + m.Name
		}
		daxPath := filepath.Join(daxDir, utils.SafeID(m.Name)+".dax")
		if err := os.WriteFile(daxPath, []byte(expr), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write DAX file %q: %w", daxPath, err)
		}
		daxFiles = append(daxFiles, daxPath)
	}

	visualSpec := VisualSpec{
		ReportID:    reportID,
		GeneratedAt: generatedAt,
		Pages:       meta.Worksheets,
	}
	visualPath := filepath.Join(visualsDir, reportID+"_visual.json")
	if err := s.writeJSON(visualPath, &visualSpec); err != nil {
		return nil, err
	}

	pqText, err := GeneratePowerQuery(sourceType, sourceConfig)
	if err != nil {
		return nil, err
	}
	pqPath := filepath.Join(pqDir, reportID+"_source.m")
	if err := os.WriteFile(pqPath, []byte(pqText), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write Power Query file %q: %w", pqPath, err)
	}

	manifest := &ArtifactManifest{
		ReportID:        reportID,
		GeneratedAt:     generatedAt,
		ModelSpec:       modelPath,
		DaxFiles:        daxFiles,
		VisualSpec:      visualPath,
		PowerQueryFiles: []string{pqPath},
	}
	manifestPath := filepath.Join(s.artifactsDir, "artifact_manifest.json")
	if err := s.writeJSON(manifestPath, manifest); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", reportID).
		Int("tables", len(tables)).
		Int("dax_files", len(daxFiles)).
		Str("source_type", sourceType).
		Msg("artifacts generated")

	return manifest, nil
}

// ModelSpecPath returns where Generate places the model spec for a report.
func (s *ArtifactService) ModelSpecPath(reportID string) string {
	reportID = utils.SafeID(reportID)
	return filepath.Join(s.artifactsDir, "model", reportID+"_modelspec.json")
}

// DaxDir returns the directory Generate writes measure files into.
func (s *ArtifactService) DaxDir() string {
	return filepath.Join(s.artifactsDir, "dax")
}

// VisualSpecPath returns where Generate places the visual spec for a report.
func (s *ArtifactService) VisualSpecPath(reportID string) string {
	reportID = utils.SafeID(reportID)
	return filepath.Join(s.artifactsDir, "visuals", reportID+"_visual.json")
}

func (s *ArtifactService) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	s.logger.Debug().Str("path", path).Msg("wrote artifact")
	return nil
}

// GeneratePowerQuery renders the Power Query (M) source script for the
// selected source type.
func GeneratePowerQuery(sourceType string, cfg map[string]string) (string, error) {
	switch sourceType {
	case "excel":
		return fmt.Sprintf(`let
    Source = Excel.Workbook(
        Web.Contents("%s"),
        null,
        true
    ),
    Data = Source{[Item="%s",Kind="Sheet"]}[Data],
    PromotedHeaders = Table.PromoteHeaders(Data)
in
    PromotedHeaders
`, cfg["url"], cfg["sheet"]), nil

	case "sharepoint":
		return fmt.Sprintf(`let
    Source = SharePoint.Files("%s", [ApiVersion=15]),
    File = Source{[Name="%s"]}[Content],
    Data = Excel.Workbook(File, null, true),
    Sheet = Data{[Item="%s",Kind="Sheet"]}[Data],
    PromotedHeaders = Table.PromoteHeaders(Sheet)
in
    PromotedHeaders
`, cfg["site"], cfg["file"], cfg["sheet"]), nil

	case "sql":
		return fmt.Sprintf(`let
    Source = Sql.Database("%s", "%s"),
    Table = Source{[Schema="%s",Item="%s"]}[Data]
in
    Table
`, cfg["server"], cfg["database"], cfg["schema"], cfg["table"]), nil

	case "fabric":
		return fmt.Sprintf(`let
    Source = Fabric.Warehouse("%s", "%s"),
    Table = Source{[Schema="dbo",Item="%s"]}[Data]
in
    Table
`, cfg["workspace"], cfg["lakehouse"], cfg["table"]), nil
	}

	return "", fmt.Errorf("unsupported source type: %q", sourceType)
}
