package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
)

// LayoutService converts a visual spec into Power BI report layout JSON.
type LayoutService struct {
	logger    zerolog.Logger
	layoutDir string
}

func NewLayoutService(logger zerolog.Logger, layoutDir string) *LayoutService {
	return &LayoutService{logger: logger, layoutDir: layoutDir}
}

type ReportLayout struct {
	Version  string          `json:"version"`
	Config   LayoutConfig    `json:"config"`
	Sections []LayoutSection `json:"sections"`
}

type LayoutConfig struct {
	LayoutOptimization int `json:"layoutOptimization"`
}

type LayoutSection struct {
	Name             string            `json:"name"`
	DisplayName      string            `json:"displayName"`
	VisualContainers []VisualContainer `json:"visualContainers"`
}

type VisualContainer struct {
	Name           string         `json:"name"`
	VisualType     string         `json:"visualType"`
	Title          string         `json:"title"`
	PrototypeQuery PrototypeQuery `json:"prototypeQuery"`
}

type PrototypeQuery struct {
	From   []QuerySource `json:"From"`
	Select []QueryColumn `json:"Select"`
}

type QuerySource struct {
	Name   string `json:"Name"`
	Entity string `json:"Entity"`
}

type QueryColumn struct {
	Column ColumnRef `json:"Column"`
}

type ColumnRef struct {
	Expression SourceExpression `json:"Expression"`
	Property   string           `json:"Property"`
}

type SourceExpression struct {
	SourceRef SourceRef `json:"SourceRef"`
}

type SourceRef struct {
	Entity string `json:"Entity"`
}

// GenerateReportLayout reads a visual spec file and writes
// <reportID>_report.json into the layout directory, returning its path.
func (s *LayoutService) GenerateReportLayout(visualSpecPath, datasetName, reportID string) (string, error) {
	data, err := os.ReadFile(visualSpecPath)
	if err != nil {
		return "", fmt.Errorf("failed to read visual spec %q: %w", visualSpecPath, err)
	}

	var spec VisualSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return "", fmt.Errorf("invalid visual spec %q: %w", visualSpecPath, err)
	}

	layout := ReportLayout{
		Version:  "1.13.0",
		Config:   LayoutConfig{LayoutOptimization: 1},
		Sections: []LayoutSection{},
	}

	for _, page := range spec.Pages {
		containers := []VisualContainer{}
		for _, visual := range page.Visuals {
			if len(visual.Fields) == 0 {
				continue
			}
			containers = append(containers, makeVisualContainer(visual, datasetName))
		}
		layout.Sections = append(layout.Sections, LayoutSection{
			Name:             uuid.NewString(),
			DisplayName:      page.Name,
			VisualContainers: containers,
		})
	}

	outPath := filepath.Join(s.layoutDir, reportID+"_report.json")
	encoded, err := json.MarshalIndent(&layout, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report layout: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report layout %q: %w", outPath, err)
	}

	s.logger.Info().Str("report_id", reportID).Str("output", outPath).Int("sections", len(layout.Sections)).Msg("report layout generated")
	return outPath, nil
}

func makeVisualContainer(v models.Visual, datasetName string) VisualContainer {
	columns := []QueryColumn{}
	for _, field := range v.Fields {
		// Dotted refs point outside the dataset; the layout only binds
		// dataset-local properties.
		if strings.Contains(field, ".") {
			continue
		}
		columns = append(columns, QueryColumn{
			Column: ColumnRef{
				Expression: SourceExpression{SourceRef: SourceRef{Entity: datasetName}},
				Property:   field,
			},
		})
	}

	visualType := "tableEx"
	if v.Type == "PieChart" {
		visualType = "pieChart"
	}

	return VisualContainer{
		Name:       uuid.NewString(),
		VisualType: visualType,
		Title:      v.Title,
		PrototypeQuery: PrototypeQuery{
			From:   []QuerySource{{Name: "a", Entity: datasetName}},
			Select: columns,
		},
	}
}
