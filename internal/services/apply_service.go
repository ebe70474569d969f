package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
	"pbi_migration/internal/tabular"
)

const (
	// MeasureTableName is the aggregation table every measure lands on,
	// regardless of which table its file conceptually belongs to.
	MeasureTableName = "ModelMeasures"

	// measureFileExt is the recognized expression-file extension.
	measureFileExt = ".dax"
)

// ApplyService applies a model spec and a directory of DAX measure files to
// a live tabular model. It only ever adds to the model; existing tables and
// columns are reused, and only measures it is about to replace are removed.
type ApplyService struct {
	logger zerolog.Logger
}

func NewApplyService(logger zerolog.Logger) *ApplyService {
	return &ApplyService{logger: logger}
}

// ApplyResult summarizes what one Apply run did to the model.
type ApplyResult struct {
	TablesCreated        int `json:"tables_created"`
	ColumnsCreated       int `json:"columns_created"`
	MeasuresApplied      int `json:"measures_applied"`
	RelationshipsAdded   int `json:"relationships_added"`
	RelationshipsSkipped int `json:"relationships_skipped"`
}

// EnsureTable returns the named table, creating and adding it when absent.
// Idempotent: reapplying the same spec never produces duplicates.
func (s *ApplyService) EnsureTable(model *tabular.Model, name string) (*tabular.Table, error) {
	if table := model.FindTable(name); table != nil {
		return table, nil
	}
	table, err := model.AddTable(name)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("table", name).Msg("added table")
	return table, nil
}

// EnsureColumn returns the named column on the table, creating it with the
// mapped data type when absent. An existing column is returned as-is even if
// the type tag differs: the first application wins.
func (s *ApplyService) EnsureColumn(table *tabular.Table, name, typeTag string) (*tabular.Column, error) {
	if column := table.FindColumn(name); column != nil {
		return column, nil
	}
	column, err := table.AddColumn(name, tabular.ParseDataType(typeTag))
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("table", table.Name).Str("column", name).Stringer("type", column.DataType).Msg("added column")
	return column, nil
}

// ApplyTablesAndColumns ensures every table and column the spec declares,
// in spec order.
func (s *ApplyService) ApplyTablesAndColumns(model *tabular.Model, spec *models.ModelSpec, result *ApplyResult) error {
	for _, tableSpec := range spec.Tables {
		existed := model.FindTable(tableSpec.Name) != nil
		table, err := s.EnsureTable(model, tableSpec.Name)
		if err != nil {
			return err
		}
		if !existed {
			result.TablesCreated++
		}
		for _, columnSpec := range tableSpec.Columns {
			columnExisted := table.FindColumn(columnSpec.Name) != nil
			if _, err := s.EnsureColumn(table, columnSpec.Name, columnSpec.Type); err != nil {
				return err
			}
			if !columnExisted {
				result.ColumnsCreated++
			}
		}
	}
	return nil
}

// ApplyMeasures turns every .dax file in the directory into a measure on the
// ModelMeasures table. The measure name is the file base name without
// extension; the expression is the file content, verbatim. An existing
// measure of the same name anywhere in the model is replaced. A missing
// directory means zero measures, not an error; an unreadable file is fatal.
func (s *ApplyService) ApplyMeasures(model *tabular.Model, measuresDir string, result *ApplyResult) error {
	if measuresDir == "" {
		return nil
	}

	entries, err := os.ReadDir(measuresDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("dir", measuresDir).Msg("measures directory absent, nothing to apply")
			return nil
		}
		return fmt.Errorf("failed to enumerate measures directory %q: %w", measuresDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), measureFileExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		path := filepath.Join(measuresDir, entry.Name())

		expression, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read measure file %q: %w", path, err)
		}

		// Replace semantics: the last-applied file wins on reapplication.
		if _, owner := model.FindMeasure(name); owner != nil {
			owner.RemoveMeasure(name)
			s.logger.Info().Str("measure", name).Str("table", owner.Name).Msg("replacing existing measure")
		}

		target, err := s.EnsureTable(model, MeasureTableName)
		if err != nil {
			return err
		}
		if _, err := target.AddMeasure(name, string(expression)); err != nil {
			return err
		}
		result.MeasuresApplied++
		s.logger.Debug().Str("measure", name).Msg("added measure")
	}

	return nil
}

// ApplyRelationships adds a many-to-one relationship for each spec entry
// whose endpoint tables and columns already exist in the model. Entries
// referencing unknown tables or columns are skipped, not errors. No
// de-duplication happens: reapplying a spec appends the relationship again.
func (s *ApplyService) ApplyRelationships(model *tabular.Model, spec *models.ModelSpec, result *ApplyResult) {
	for _, rel := range spec.Relationships {
		if rel.FromTable == "" || rel.ToTable == "" {
			s.logger.Warn().
				Str("from_table", rel.FromTable).
				Str("to_table", rel.ToTable).
				Msg("skipping relationship with missing table name")
			result.RelationshipsSkipped++
			continue
		}

		fromTable := model.FindTable(rel.FromTable)
		toTable := model.FindTable(rel.ToTable)
		if fromTable == nil || toTable == nil {
			s.logger.Warn().
				Str("from_table", rel.FromTable).
				Str("to_table", rel.ToTable).
				Msg("skipping relationship, table not found in model")
			result.RelationshipsSkipped++
			continue
		}

		if fromTable.FindColumn(rel.FromColumn) == nil || toTable.FindColumn(rel.ToColumn) == nil {
			s.logger.Warn().
				Str("from", rel.FromTable+"."+rel.FromColumn).
				Str("to", rel.ToTable+"."+rel.ToColumn).
				Msg("skipping relationship, column not found in model")
			result.RelationshipsSkipped++
			continue
		}

		model.AddRelationship(rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn)
		result.RelationshipsAdded++
		s.logger.Debug().
			Str("from", rel.FromTable+"."+rel.FromColumn).
			Str("to", rel.ToTable+"."+rel.ToColumn).
			Msg("added relationship")
	}
}

// Apply runs the full procedure: tables and columns, then measures, then
// relationships. There is no rollback; if a later stage fails, earlier
// mutations stay applied.
func (s *ApplyService) Apply(model *tabular.Model, spec *models.ModelSpec, measuresDir string) (*ApplyResult, error) {
	result := &ApplyResult{}

	if err := s.ApplyTablesAndColumns(model, spec, result); err != nil {
		return nil, err
	}
	if err := s.ApplyMeasures(model, measuresDir, result); err != nil {
		return nil, err
	}
	s.ApplyRelationships(model, spec, result)

	s.logger.Info().
		Int("tables", result.TablesCreated).
		Int("columns", result.ColumnsCreated).
		Int("measures", result.MeasuresApplied).
		Int("relationships", result.RelationshipsAdded).
		Msg("model spec applied successfully")

	return result, nil
}
