package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/newsdesk-analytics/internal/matching"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if err := c.Matching.Thresholds().Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	if err := c.Ingestion.validate(); err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}

	return nil
}

// Thresholds converts the config into matching thresholds.
func (m MatchingConfig) Thresholds() matching.Thresholds {
	return matching.Thresholds{
		AutoMatch:     m.AutoMatchThreshold,
		Manual:        m.ManualThreshold,
		FirstName:     m.FirstNameThreshold,
		MaxCandidates: m.MaxCandidates,
	}
}

func (i *IngestionConfig) validate() error {
	low, err := i.LowViewsThreshold.parse()
	if err != nil {
		return fmt.Errorf("low_views_threshold must be an integer (got %q)", string(i.LowViewsThreshold))
	}
	if low < 0 {
		return fmt.Errorf("low_views_threshold must be >= 0 (got %d)", low)
	}
	if i.ChunkSize <= 0 || i.ChunkSize > 10000 {
		return fmt.Errorf("chunk_size must be in 1..10000 (got %d)", i.ChunkSize)
	}
	if i.MaxReceiptErrors <= 0 {
		return fmt.Errorf("max_receipt_errors must be > 0 (got %d)", i.MaxReceiptErrors)
	}
	if i.MaxDailyHours <= 0 || i.MaxDailyHours > 24 {
		return fmt.Errorf("max_daily_hours must be in (0, 24] (got %v)", i.MaxDailyHours)
	}
	if i.RetentionDays < 0 {
		return fmt.Errorf("retention_days must be >= 0 (got %d)", i.RetentionDays)
	}
	return nil
}
