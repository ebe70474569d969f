package services

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbi_migration/internal/models"
)

const sampleWorkbookXML = `<?xml version='1.0' encoding='utf-8'?>
<workbook name="Sales Workbook" version="18.1">
  <datasources>
    <datasource name="federated.abc" caption="Sales Data">
      <connection class="excel-direct" filename="sales.xlsx" />
      <column caption="Amount" name="[Amount]" datatype="real" />
      <column caption="Order Date" name="[Order Date]" datatype="datetime" />
      <column caption="CustomerID" name="[CustomerID]" datatype="integer" />
      <calculation class="tableau" caption="Profit Ratio" formula="SUM([Profit])/SUM([Sales])" />
      <relation left-table="Sales" left-column="CustomerID" right-table="Customers" right-column="ID" type="many-to-one" />
    </datasource>
  </datasources>
  <worksheets>
    <worksheet name="Overview">
      <mark class="bar">
        <field name="Amount" />
        <field name="Order Date" />
      </mark>
    </worksheet>
  </worksheets>
  <dashboards>
    <dashboard name="Main">
      <zone id="1" worksheet="Overview" />
    </dashboard>
  </dashboards>
</workbook>`

func newTestParser(t *testing.T) *ParserService {
	t.Helper()
	return NewParserService(zerolog.Nop(), t.TempDir(), nil)
}

func writeSampleTWB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.twb")
	require.NoError(t, os.WriteFile(path, []byte(sampleWorkbookXML), 0o644))
	return path
}

func TestParseWorkbookTWB(t *testing.T) {
	svc := newTestParser(t)

	meta, outPath, err := svc.ParseWorkbook(context.Background(), writeSampleTWB(t), "Report1")
	require.NoError(t, err)

	assert.Equal(t, "Report1", meta.ReportID)
	assert.Equal(t, "Sales Workbook", meta.ReportName)

	require.Len(t, meta.Datasources, 1)
	assert.Equal(t, "federated.abc", meta.Datasources[0].ID)
	assert.Equal(t, "Sales Data", meta.Datasources[0].Name)
	assert.Equal(t, "excel-direct", meta.Datasources[0].ConnectionType)

	// Columns group under the enclosing datasource.
	var table *models.TableMeta
	for i := range meta.Tables {
		if meta.Tables[i].Name == "federated.abc" {
			table = &meta.Tables[i]
		}
	}
	require.NotNil(t, table)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "Amount", table.Columns[0].Name)
	assert.Equal(t, "real", table.Columns[0].Type)
	assert.Equal(t, "datetime", table.Columns[1].Type)

	require.Len(t, meta.Measures, 1)
	assert.Equal(t, "Profit Ratio", meta.Measures[0].Name)
	assert.Equal(t, "SUM([Profit])/SUM([Sales])", meta.Measures[0].Expression)

	require.Len(t, meta.Relationships, 1)
	assert.Equal(t, "Sales", meta.Relationships[0].FromTable)
	assert.Equal(t, "Customers", meta.Relationships[0].ToTable)
	assert.Equal(t, "many-to-one", meta.Relationships[0].Cardinality)

	require.Len(t, meta.Worksheets, 1)
	assert.Equal(t, "Overview", meta.Worksheets[0].Name)
	assert.NotEmpty(t, meta.Worksheets[0].Visuals)

	require.Len(t, meta.Dashboards, 1)
	assert.Equal(t, "Main", meta.Dashboards[0].Name)
	require.Len(t, meta.Dashboards[0].Items, 1)
	assert.Equal(t, "Overview", meta.Dashboards[0].Items[0].Ref)

	require.Len(t, meta.Connections, 1)
	assert.Equal(t, "sales.xlsx", meta.Connections[0]["filename"])

	// The parsed metadata lands on disk and loads back.
	assert.Equal(t, filepath.Join(svc.parsedDir, "Report1_parsed_meta.json"), outPath)
	loaded, err := svc.LoadParsedMeta(context.Background(), "Report1")
	require.NoError(t, err)
	assert.Equal(t, meta.ReportName, loaded.ReportName)
	assert.Len(t, loaded.Tables, len(meta.Tables))
}

func TestParseWorkbookTWBX(t *testing.T) {
	svc := newTestParser(t)

	twbxPath := filepath.Join(t.TempDir(), "sales.twbx")
	f, err := os.Create(twbxPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	entry, err := zw.Create("sales.twb")
	require.NoError(t, err)
	_, err = entry.Write([]byte(sampleWorkbookXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	meta, _, err := svc.ParseWorkbook(context.Background(), twbxPath, "Report2")
	require.NoError(t, err)
	assert.Equal(t, "Sales Workbook", meta.ReportName)
	assert.NotEmpty(t, meta.Tables)
}

func TestParseWorkbookTitleFallsBackToFileName(t *testing.T) {
	svc := newTestParser(t)

	path := filepath.Join(t.TempDir(), "mybook.twb")
	require.NoError(t, os.WriteFile(path, []byte(`<?xml version='1.0'?><workbook><worksheets/></workbook>`), 0o644))

	meta, _, err := svc.ParseWorkbook(context.Background(), path, "Report3")
	require.NoError(t, err)
	assert.Equal(t, "mybook", meta.ReportName)
}

func TestParseWorkbookRejectsUnknownExtension(t *testing.T) {
	svc := newTestParser(t)

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, _, err := svc.ParseWorkbook(context.Background(), path, "Report4")
	assert.Error(t, err)
}

func TestLoadParsedMetaMissing(t *testing.T) {
	svc := newTestParser(t)

	_, err := svc.LoadParsedMeta(context.Background(), "nope")
	assert.Error(t, err)
}
