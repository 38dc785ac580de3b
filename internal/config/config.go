package config

import (
	"strconv"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Matching  MatchingConfig  `yaml:"matching"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"33554432"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"false"`
	ApplicationName string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"newsdesk-analytics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// MatchingConfig tunes employee name matching.
type MatchingConfig struct {
	AutoMatchThreshold float64 `yaml:"auto_match_threshold" env:"MATCHING_AUTO_MATCH_THRESHOLD" env-default:"0.85"`
	ManualThreshold    float64 `yaml:"manual_threshold"     env:"MATCHING_MANUAL_THRESHOLD"     env-default:"0.75"`
	FirstNameThreshold float64 `yaml:"first_name_threshold" env:"MATCHING_FIRST_NAME_THRESHOLD" env-default:"0.85"`
	MaxCandidates      int     `yaml:"max_candidates"       env:"MATCHING_MAX_CANDIDATES"       env-default:"5"`
}

// IngestionConfig holds upload write settings.
type IngestionConfig struct {
	LowViewsThreshold IntSetting `yaml:"low_views_threshold" env:"INGESTION_LOW_VIEWS_THRESHOLD" env-default:"50"`
	ChunkSize         int        `yaml:"chunk_size"          env:"INGESTION_CHUNK_SIZE"          env-default:"500"`
	MaxReceiptErrors  int        `yaml:"max_receipt_errors"  env:"INGESTION_MAX_RECEIPT_ERRORS"  env-default:"50"`
	MaxDailyHours     float64    `yaml:"max_daily_hours"     env:"INGESTION_MAX_DAILY_HOURS"     env-default:"24"`
	// RetentionDays is how long cmd/cleanup keeps hours and articles.
	// 0 keeps everything.
	RetentionDays int `yaml:"retention_days" env:"INGESTION_RETENTION_DAYS" env-default:"0"`
}

// MetricsConfig holds Prometheus exposition settings. Metrics are on
// unless disabled; cleanenv would overwrite an explicit false with a
// true env-default.
type MetricsConfig struct {
	Disabled  bool   `yaml:"disabled"  env:"METRICS_DISABLED"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" env-default:"newsdesk"`
}

// Enabled reports whether metrics are collected and exposed.
func (m MetricsConfig) Enabled() bool { return !m.Disabled }

// IntSetting is an integer read as text, so an explicit 0 in YAML or ENV
// is not replaced by the env-default. Validate checks it parses.
type IntSetting string

// Int64 returns the parsed value, or 0 if it does not parse.
func (s IntSetting) Int64() int64 {
	n, _ := s.parse()
	return n
}

func (s IntSetting) parse() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
}
