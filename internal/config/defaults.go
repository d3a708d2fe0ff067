package config

import (
	"runtime"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerMaxBodySize     = 32 << 20
	DefaultServerShutdownTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultBatchItemTimeout  = 2 * time.Minute
	DefaultReferenceName     = "crystal.mol2"
	DefaultPoseGlob          = "vina[1-9]*.mol2"
	DefaultProteinGlob       = "*.pdb"
	DefaultBatchOutputFormat = "jsonl"

	DefaultReferenceScorerTimeout   = 60 * time.Second
	DefaultReferenceScorerTolerance = 1e-3

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTimeout   = 3 * time.Second
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "dockrmsd:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "dockrmsd-reports"
	DefaultMinIOPrefix   = "runs"

	DefaultMetricsNamespace = "dockrmsd"
)

// DefaultBatchConcurrency is the worker-pool size used when none is set.
func DefaultBatchConcurrency() int {
	return runtime.NumCPU()
}

// NewDefaultConfig returns a Config with every default applied. It is what
// the CLI uses when no config file is given.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// already set are left unchanged. It must run after unmarshalling and before
// Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = DefaultBatchConcurrency()
	}
	if cfg.Batch.ItemTimeout == 0 {
		cfg.Batch.ItemTimeout = DefaultBatchItemTimeout
	}
	if cfg.Batch.ReferenceName == "" {
		cfg.Batch.ReferenceName = DefaultReferenceName
	}
	if cfg.Batch.PoseGlob == "" {
		cfg.Batch.PoseGlob = DefaultPoseGlob
	}
	if cfg.Batch.ProteinGlob == "" {
		cfg.Batch.ProteinGlob = DefaultProteinGlob
	}
	if cfg.Batch.OutputFormat == "" {
		cfg.Batch.OutputFormat = DefaultBatchOutputFormat
	}

	// ── Reference scorer ──────────────────────────────────────────────────────
	if cfg.ReferenceScorer.Timeout == 0 {
		cfg.ReferenceScorer.Timeout = DefaultReferenceScorerTimeout
	}
	if cfg.ReferenceScorer.Tolerance == 0 {
		cfg.ReferenceScorer.Tolerance = DefaultReferenceScorerTolerance
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultRedisAddr
	}
	if cfg.Cache.PoolSize == 0 {
		cfg.Cache.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Cache.DialTimeout == 0 {
		cfg.Cache.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Cache.ReadTimeout == 0 {
		cfg.Cache.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Cache.WriteTimeout == 0 {
		cfg.Cache.WriteTimeout = DefaultRedisTimeout
	}
	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = DefaultMinIOBucket
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = DefaultMinIOPrefix
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

//Personal.AI order the ending
