package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbi_migration/internal/models"
)

func writeVisualSpec(t *testing.T, spec *VisualSpec) string {
	t.Helper()
	data, err := json.Marshal(spec)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "visual.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestGenerateReportLayout(t *testing.T) {
	layoutDir := t.TempDir()
	svc := NewLayoutService(zerolog.Nop(), layoutDir)

	specPath := writeVisualSpec(t, &VisualSpec{
		ReportID: "Report1",
		Pages: []models.Worksheet{
			{
				Name: "Overview",
				Visuals: []models.Visual{
					{Type: "PieChart", Title: "Share", Fields: []string{"Amount", "Region"}},
					{Type: "bar", Fields: []string{"Amount", "external.Field"}},
					{Type: "bar", Fields: nil}, // no fields, dropped
				},
			},
			{Name: "Empty"},
		},
	})

	outPath, err := svc.GenerateReportLayout(specPath, "SalesDataset", "Report1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(layoutDir, "Report1_report.json"), outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var layout ReportLayout
	require.NoError(t, json.Unmarshal(data, &layout))

	assert.Equal(t, "1.13.0", layout.Version)
	assert.Equal(t, 1, layout.Config.LayoutOptimization)
	require.Len(t, layout.Sections, 2)

	overview := layout.Sections[0]
	assert.Equal(t, "Overview", overview.DisplayName)
	assert.NotEmpty(t, overview.Name)
	require.Len(t, overview.VisualContainers, 2)

	pie := overview.VisualContainers[0]
	assert.Equal(t, "pieChart", pie.VisualType)
	assert.Equal(t, "Share", pie.Title)
	require.Len(t, pie.PrototypeQuery.From, 1)
	assert.Equal(t, "SalesDataset", pie.PrototypeQuery.From[0].Entity)
	require.Len(t, pie.PrototypeQuery.Select, 2)
	assert.Equal(t, "Amount", pie.PrototypeQuery.Select[0].Column.Property)
	assert.Equal(t, "SalesDataset", pie.PrototypeQuery.Select[0].Column.Expression.SourceRef.Entity)

	// Unknown visual types fall back to tableEx; dotted field refs bind
	// outside the dataset and are dropped.
	bar := overview.VisualContainers[1]
	assert.Equal(t, "tableEx", bar.VisualType)
	require.Len(t, bar.PrototypeQuery.Select, 1)
	assert.Equal(t, "Amount", bar.PrototypeQuery.Select[0].Column.Property)

	assert.Empty(t, layout.Sections[1].VisualContainers)
}

func TestGenerateReportLayoutMissingSpec(t *testing.T) {
	svc := NewLayoutService(zerolog.Nop(), t.TempDir())

	_, err := svc.GenerateReportLayout(filepath.Join(t.TempDir(), "nope.json"), "ds", "Report1")
	assert.Error(t, err)
}
