package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config resolves the working-directory layout the pipeline writes into.
// Every stage has its own subdirectory under the work root.
type Config struct {
	WorkDir      string
	UploadDir    string
	ParsedDir    string
	SourcesDir   string
	ArtifactsDir string
	LayoutDir    string
	TE3Dir       string
}

// Load reads WORK_DIR (default ./work), derives the stage directories and
// creates them all.
func Load() (*Config, error) {
	workDir := os.Getenv("WORK_DIR")
	if workDir == "" {
		workDir = "work"
	}

	cfg := &Config{
		WorkDir:      workDir,
		UploadDir:    filepath.Join(workDir, "uploads"),
		ParsedDir:    filepath.Join(workDir, "parsed"),
		SourcesDir:   filepath.Join(workDir, "sources"),
		ArtifactsDir: filepath.Join(workDir, "artifacts"),
		LayoutDir:    filepath.Join(workDir, "layout"),
		TE3Dir:       filepath.Join(workDir, "te3"),
	}

	for _, dir := range []string{
		cfg.WorkDir,
		cfg.UploadDir,
		cfg.ParsedDir,
		cfg.SourcesDir,
		cfg.ArtifactsDir,
		cfg.LayoutDir,
		cfg.TE3Dir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create work directory %q: %w", dir, err)
		}
	}

	return cfg, nil
}
