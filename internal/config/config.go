// Package config defines the configuration structures for dockrmsd. No I/O or
// parsing logic lives in this file, only plain data types and validation.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP scoring-service tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// Logging converts the section into the logging package's constructor input.
func (l LogConfig) Logging() logging.LogConfig {
	return logging.LogConfig{
		Level:       l.Level,
		Format:      l.Format,
		OutputPaths: l.OutputPaths,
	}
}

// ScoringConfig controls structure parsing and the assignment pipeline.
type ScoringConfig struct {
	// StrictSections makes a file without an @<TRIPOS>ATOM header a parse
	// error instead of an empty structure.
	StrictSections bool `mapstructure:"strict_sections"`
}

// BatchConfig controls target discovery and the scoring worker pool.
type BatchConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	ItemTimeout   time.Duration `mapstructure:"item_timeout"`
	ReferenceName string        `mapstructure:"reference_name"`
	PoseGlob      string        `mapstructure:"pose_glob"`
	ProteinGlob   string        `mapstructure:"protein_glob"`
	// AllowMissingProtein keeps targets that have no protein file.
	AllowMissingProtein bool   `mapstructure:"allow_missing_protein"`
	OutputFormat        string `mapstructure:"output_format"` // "jsonl" | "csv"
	CrossCheck          bool   `mapstructure:"cross_check"`
}

// ReferenceScorerConfig points at the native DockRMSD executable used for
// cross-validation. An empty Binary disables cross-checking.
type ReferenceScorerConfig struct {
	Binary    string        `mapstructure:"binary"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Tolerance float64       `mapstructure:"tolerance"`
}

// Enabled reports whether a reference scorer binary is configured.
func (r ReferenceScorerConfig) Enabled() bool { return r.Binary != "" }

// RedisConfig holds the score-cache connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the report-upload object-storage parameters.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	// Addr, when set, makes batch runs expose /metrics on this address.
	Addr string `mapstructure:"addr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Log             LogConfig             `mapstructure:"log"`
	Scoring         ScoringConfig         `mapstructure:"scoring"`
	Batch           BatchConfig           `mapstructure:"batch"`
	ReferenceScorer ReferenceScorerConfig `mapstructure:"reference_scorer"`
	Cache           RedisConfig           `mapstructure:"cache"`
	Storage         MinIOConfig           `mapstructure:"storage"`
	Metrics         MetricsConfig         `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be ≥ 0, got %d", c.Server.MaxBodySize)
	}

	// Log
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Batch
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("config: batch.concurrency must be ≥ 1, got %d", c.Batch.Concurrency)
	}
	if c.Batch.ItemTimeout < 0 {
		return fmt.Errorf("config: batch.item_timeout must be ≥ 0, got %s", c.Batch.ItemTimeout)
	}
	if c.Batch.ReferenceName == "" {
		return fmt.Errorf("config: batch.reference_name is required")
	}
	for key, pattern := range map[string]string{
		"batch.pose_glob":    c.Batch.PoseGlob,
		"batch.protein_glob": c.Batch.ProteinGlob,
	} {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("config: %s %q is not a valid glob: %w", key, pattern, err)
		}
	}
	switch c.Batch.OutputFormat {
	case "jsonl", "csv":
	default:
		return fmt.Errorf("config: batch.output_format %q is invalid; expected jsonl|csv", c.Batch.OutputFormat)
	}
	if c.Batch.CrossCheck && !c.ReferenceScorer.Enabled() {
		return fmt.Errorf("config: batch.cross_check requires reference_scorer.binary")
	}

	// Reference scorer
	if c.ReferenceScorer.Tolerance < 0 {
		return fmt.Errorf("config: reference_scorer.tolerance must be ≥ 0, got %g", c.ReferenceScorer.Tolerance)
	}
	if c.ReferenceScorer.Enabled() && c.ReferenceScorer.Timeout <= 0 {
		return fmt.Errorf("config: reference_scorer.timeout must be > 0 when a binary is set")
	}

	// Cache
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("config: cache.addr is required when the cache is enabled")
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
		}
	}

	// Storage
	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("config: storage.endpoint is required when storage is enabled")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("config: storage.bucket is required when storage is enabled")
		}
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}

//Personal.AI order the ending
