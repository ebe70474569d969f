package services

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
	"pbi_migration/internal/tabular"
	"pbi_migration/internal/utils"
)

//go:embed templates/apply_modelspec.csx
var applyScriptTemplate string

// ScriptService renders a Tabular Editor 3 C# apply script from a model
// spec and a directory of DAX measure files. The template placeholders are
// literal {{TABLES}}, {{MEASURES}} and {{RELATIONSHIPS}} markers, so plain
// substitution is used instead of Go templating.
type ScriptService struct {
	logger zerolog.Logger
	te3Dir string
}

func NewScriptService(logger zerolog.Logger, te3Dir string) *ScriptService {
	return &ScriptService{logger: logger, te3Dir: te3Dir}
}

// GenerateApplyScript writes TE3_apply_<reportID>.csx and returns its path.
// daxDir may be empty or missing, in which case no measure blocks are
// emitted.
func (s *ScriptService) GenerateApplyScript(spec *models.ModelSpec, daxDir string) (string, error) {
	reportID := spec.ReportID
	if reportID == "" {
		reportID = "Report"
	}

	tableNames := make([]string, 0, len(spec.Tables))
	var tableBlocks []string
	for _, table := range spec.Tables {
		tableBlocks = append(tableBlocks, genTableBlock(table))
		tableNames = append(tableNames, table.Name)
	}

	measureBlocks, err := s.genMeasureBlocks(daxDir)
	if err != nil {
		return "", err
	}

	var relationshipBlocks []string
	for _, rel := range spec.Relationships {
		relationshipBlocks = append(relationshipBlocks, s.genRelationshipBlock(rel, tableNames))
	}

	script := applyScriptTemplate
	script = strings.ReplaceAll(script, "{{TABLES}}", strings.Join(tableBlocks, "\n"))
	script = strings.ReplaceAll(script, "{{MEASURES}}", strings.Join(measureBlocks, "\n"))
	script = strings.ReplaceAll(script, "{{RELATIONSHIPS}}", strings.Join(relationshipBlocks, "\n"))

	outPath := filepath.Join(s.te3Dir, "TE3_apply_"+utils.SafeID(reportID)+".csx")
	if err := os.WriteFile(outPath, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("failed to write apply script %q: %w", outPath, err)
	}

	s.logger.Info().Str("report_id", reportID).Str("output", outPath).Msg("apply script generated")
	return outPath, nil
}

func genTableBlock(table models.TableSpec) string {
	safe := utils.SafeID(table.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "// ---- Table: %s ----\n", table.Name)
	fmt.Fprintf(&b, "var tbl_%s = Model.Tables.Find(%q) ?? Model.AddTable(%q);\n", safe, table.Name, table.Name)

	for _, col := range table.Columns {
		dataType := tabular.ParseDataType(col.Type)
		fmt.Fprintf(&b,
			"if (!tbl_%s.Columns.Contains(%q)) { var c = tbl_%s.AddDataColumn(%q); c.DataType = %s; Info(\"Added column: %s\"); }\n",
			safe, col.Name, safe, col.Name, dataType.DotNetName(), escapeCSharp(col.Name))
	}

	return b.String()
}

func (s *ScriptService) genMeasureBlocks(daxDir string) ([]string, error) {
	if daxDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(daxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to enumerate DAX directory %q: %w", daxDir, err)
	}

	var blocks []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".dax") {
			continue
		}
		path := filepath.Join(daxDir, entry.Name())
		expr, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read DAX file %q: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		blocks = append(blocks, genMeasureBlock(name, string(expr)))
	}
	return blocks, nil
}

func genMeasureBlock(name, expression string) string {
	nameSafe := escapeCSharp(name)
	exprSafe := escapeCSharp(expression)

	var b strings.Builder
	fmt.Fprintf(&b, "// ---- Measure: %s ----\n", name)
	fmt.Fprintf(&b, "var m = Model.AllMeasures.FirstOrDefault(x => x.Name == \"%s\");\n", nameSafe)
	b.WriteString("if (m == null) {\n")
	fmt.Fprintf(&b, "    m = Model.Tables[\"%s\"].AddMeasure(\"%s\", \"%s\");\n", MeasureTableName, nameSafe, exprSafe)
	b.WriteString("    Info($\"Created measure: {m.Name}\");\n")
	b.WriteString("} else {\n")
	fmt.Fprintf(&b, "    m.Expression = \"%s\";\n", exprSafe)
	b.WriteString("    Info($\"Updated measure: {m.Name}\");\n")
	b.WriteString("}\n")
	return b.String()
}

func (s *ScriptService) genRelationshipBlock(rel models.RelationshipSpec, tableNames []string) string {
	if rel.FromTable == "" || rel.FromColumn == "" || rel.ToTable == "" || rel.ToColumn == "" {
		s.logger.Warn().
			Str("from_table", rel.FromTable).
			Str("to_table", rel.ToTable).
			Msg("skipping invalid relationship in apply script")
		return "// Skipped invalid relationship (missing elements)\n"
	}
	if !utils.Contains(tableNames, rel.FromTable) || !utils.Contains(tableNames, rel.ToTable) {
		s.logger.Warn().
			Str("from_table", rel.FromTable).
			Str("to_table", rel.ToTable).
			Msg("skipping relationship, table not found in model spec")
		return "// Skipped relationship (table not found)\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// ---- Relationship: %s.%s -> %s.%s ----\n", rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn)
	fmt.Fprintf(&b, "Model.AddRelationship(tbl_%s, %q, tbl_%s, %q);\n",
		utils.SafeID(rel.FromTable), rel.FromColumn, utils.SafeID(rel.ToTable), rel.ToColumn)
	return b.String()
}

// escapeCSharp makes a string safe inside a double-quoted C# literal.
func escapeCSharp(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}
