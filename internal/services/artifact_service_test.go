package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbi_migration/internal/models"
)

func sampleParsedMeta() *models.ParsedMeta {
	return &models.ParsedMeta{
		ReportID:   "Report1",
		ReportName: "Sales Overview",
		Tables: []models.TableMeta{
			{
				Name: "Order Details",
				Columns: []models.ColumnSpec{
					{Name: "Amount", Type: "float"},
					{Name: "Order Date", Type: "datetime"},
					{Name: "CustomerID", Type: "integer"},
				},
			},
		},
		Relationships: []models.RelationshipSpec{
			{FromTable: "Order_Details", FromColumn: "CustomerID", ToTable: "Customers", ToColumn: "ID"},
		},
		Measures: []models.MeasureMeta{
			{Name: "Revenue", Expression: "SUM(Sales[Amount])"},
			{Name: "Placeholder"},
		},
		Worksheets: []models.Worksheet{
			{Name: "Overview", Visuals: []models.Visual{{Type: "bar", Fields: []string{"Amount"}}}},
		},
	}
}

func TestArtifactGenerate(t *testing.T) {
	dir := t.TempDir()
	svc := NewArtifactService(zerolog.Nop(), dir)

	manifest, err := svc.Generate(sampleParsedMeta(), "Report1", "excel", map[string]string{
		"url":   "https://example.com/sales.xlsx",
		"sheet": "Sheet1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Report1", manifest.ReportID)
	assert.Equal(t, svc.ModelSpecPath("Report1"), manifest.ModelSpec)
	assert.Equal(t, svc.VisualSpecPath("Report1"), manifest.VisualSpec)
	require.Len(t, manifest.DaxFiles, 2)
	require.Len(t, manifest.PowerQueryFiles, 1)

	// The model spec round-trips through the strict parser with normalized
	// types and identifier-safe table names.
	spec, err := models.LoadModelSpec(manifest.ModelSpec)
	require.NoError(t, err)
	require.Len(t, spec.Tables, 1)
	assert.Equal(t, "Order_Details", spec.Tables[0].Name)
	assert.Equal(t, "Double", spec.Tables[0].Columns[0].Type)
	assert.Equal(t, "DateTime", spec.Tables[0].Columns[1].Type)
	assert.Equal(t, "Int64", spec.Tables[0].Columns[2].Type)
	require.Len(t, spec.Relationships, 1)

	expr, err := os.ReadFile(filepath.Join(svc.DaxDir(), "Revenue.dax"))
	require.NoError(t, err)
	assert.Equal(t, "SUM(Sales[Amount])", string(expr))

	// Empty expressions still produce a stub file.
	stub, err := os.ReadFile(filepath.Join(svc.DaxDir(), "Placeholder.dax"))
	require.NoError(t, err)
	assert.Contains(t, string(stub), "TODO")

	pq, err := os.ReadFile(manifest.PowerQueryFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(pq), `Web.Contents("https://example.com/sales.xlsx")`)
	assert.Contains(t, string(pq), "Table.PromoteHeaders")
	assert.Contains(t, string(pq), `Item="Sheet1"`)

	_, err = os.Stat(filepath.Join(dir, "artifact_manifest.json"))
	assert.NoError(t, err)
}

func TestArtifactGenerateRejectsUnknownSourceType(t *testing.T) {
	svc := NewArtifactService(zerolog.Nop(), t.TempDir())

	_, err := svc.Generate(sampleParsedMeta(), "Report1", "csv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source type")
}

func TestGeneratePowerQueryVariants(t *testing.T) {
	sql, err := GeneratePowerQuery("sql", map[string]string{
		"server": "srv", "database": "db", "schema": "dbo", "table": "Sales",
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `Sql.Database("srv", "db")`)
	assert.Contains(t, sql, `Schema="dbo"`)

	sp, err := GeneratePowerQuery("sharepoint", map[string]string{
		"site": "https://contoso.sharepoint.com/sites/bi", "file": "sales.xlsx", "sheet": "Sheet1",
	})
	require.NoError(t, err)
	assert.Contains(t, sp, "SharePoint.Files")

	fab, err := GeneratePowerQuery("fabric", map[string]string{
		"workspace": "ws", "lakehouse": "lake", "table": "Sales",
	})
	require.NoError(t, err)
	assert.Contains(t, fab, "Fabric.Warehouse")
}
