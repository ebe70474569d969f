package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"pbi_migration/internal/repositories"
)

// SourceConfig is the user-selected data source for a report.
type SourceConfig struct {
	ReportID     string            `json:"report_id"`
	SourceType   string            `json:"source_type"`
	SourceConfig map[string]string `json:"source_config"`
}

// SourceService persists per-report source configurations on disk, with a
// redis write-through cache in front. The cache is optional so the CLI and
// tests can run without redis.
type SourceService struct {
	logger     zerolog.Logger
	sourcesDir string
	cache      *repositories.CacheRepository
}

func NewSourceService(logger zerolog.Logger, sourcesDir string, cache *repositories.CacheRepository) *SourceService {
	return &SourceService{logger: logger, sourcesDir: sourcesDir, cache: cache}
}

// Save writes <reportID>_source.json and refreshes the cache entry. It
// returns the file path.
func (s *SourceService) Save(ctx context.Context, cfg *SourceConfig) (string, error) {
	if cfg.ReportID == "" {
		return "", fmt.Errorf("report_id is required")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode source config: %w", err)
	}

	outPath := filepath.Join(s.sourcesDir, cfg.ReportID+"_source.json")
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write source config %q: %w", outPath, err)
	}

	if s.cache != nil {
		key := repositories.SourceConfigKeyPrefix + cfg.ReportID
		if err := s.cache.StoreJSON(ctx, key, cfg); err != nil {
			// Cache misses fall back to disk on load.
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache source config")
		}
	}

	s.logger.Info().Str("report_id", cfg.ReportID).Str("output", outPath).Msg("source config saved")
	return outPath, nil
}

// Load returns the source config for a report, from cache when possible.
// A missing config yields fs.ErrNotExist.
func (s *SourceService) Load(ctx context.Context, reportID string) (*SourceConfig, error) {
	if s.cache != nil {
		var cached SourceConfig
		hit, err := s.cache.GetJSON(ctx, repositories.SourceConfigKeyPrefix+reportID, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("report_id", reportID).Msg("source config cache lookup failed")
		} else if hit {
			return &cached, nil
		}
	}

	path := filepath.Join(s.sourcesDir, reportID+"_source.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("source config for report %q not found: %w", reportID, err)
		}
		return nil, fmt.Errorf("failed to read source config %q: %w", path, err)
	}

	var cfg SourceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid source config %q: %w", path, err)
	}
	return &cfg, nil
}
