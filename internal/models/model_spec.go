package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ModelSpec is the JSON document describing the tables, columns and
// relationships to materialize in a tabular model.
type ModelSpec struct {
	ReportID      string             `json:"reportId,omitempty"`
	GeneratedAt   string             `json:"generatedAt,omitempty"`
	Tables        []TableSpec        `json:"tables"`
	Relationships []RelationshipSpec `json:"relationships"`
}

type TableSpec struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
}

type ColumnSpec struct {
	Name string `json:"name"`
	// Type is one of Int64, Double, DateTime, Boolean; anything else is
	// treated as String downstream.
	Type string `json:"type,omitempty"`
}

// RelationshipSpec describes a many-to-one link from
// FromTable.FromColumn to ToTable.ToColumn.
type RelationshipSpec struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
	// Cardinality is carried through from the workbook parser; the applier
	// always creates many-to-one links regardless.
	Cardinality string `json:"cardinality,omitempty"`
}

// ParseModelSpec decodes a model spec strictly, so a malformed document
// fails here instead of surfacing as a missing field deep inside model
// mutation.
func ParseModelSpec(data []byte) (*ModelSpec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var spec ModelSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("invalid model spec: %w", err)
	}
	for i, table := range spec.Tables {
		if table.Name == "" {
			return nil, fmt.Errorf("invalid model spec: table at index %d has no name", i)
		}
	}
	return &spec, nil
}

func LoadModelSpec(path string) (*ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model spec %q: %w", path, err)
	}
	return ParseModelSpec(data)
}
