package main

import (
	"flag"
	"fmt"
	"log"

	"pbi_migration/internal/logging"
	"pbi_migration/internal/models"
	"pbi_migration/internal/services"
	"pbi_migration/internal/tabular"
)

// applyspec applies a model spec JSON plus a directory of .dax measure
// files to a fresh in-memory tabular model and prints what was built. It is
// the standalone counterpart of POST /api/v1/model/apply.
func main() {
	modelPath := flag.String("model", "", "path to the model spec JSON (required)")
	daxDir := flag.String("dax", "", "directory of .dax measure files (optional)")
	flag.Parse()

	if *modelPath == "" {
		flag.Usage()
		log.Fatal("missing required -model flag")
	}

	spec, err := models.LoadModelSpec(*modelPath)
	if err != nil {
		log.Fatalf("failed to load model spec: %v", err)
	}

	logger := logging.New()
	applyService := services.NewApplyService(logger)

	model := tabular.NewModel()
	result, err := applyService.Apply(model, spec, *daxDir)
	if err != nil {
		log.Fatalf("failed to apply model spec: %v", err)
	}

	fmt.Printf("Applied model spec %s\n", *modelPath)
	fmt.Printf("  tables created:        %d\n", result.TablesCreated)
	fmt.Printf("  columns created:       %d\n", result.ColumnsCreated)
	fmt.Printf("  measures applied:      %d\n", result.MeasuresApplied)
	fmt.Printf("  relationships added:   %d\n", result.RelationshipsAdded)
	fmt.Printf("  relationships skipped: %d\n", result.RelationshipsSkipped)

	for _, table := range model.Tables {
		fmt.Printf("  table %s: %d columns, %d measures\n", table.Name, len(table.Columns), len(table.Measures))
	}
}
