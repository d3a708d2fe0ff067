package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  host: "127.0.0.1"
  port: 8088
log:
  level: "debug"
  format: "console"
scoring:
  strict_sections: true
batch:
  concurrency: 4
  item_timeout: 45s
  reference_name: "crystal.mol2"
  pose_glob: "vina[1-9]*.mol2"
  output_format: "csv"
reference_scorer:
  binary: "/opt/dockrmsd/DockRMSD"
  timeout: 20s
  tolerance: 0.002
cache:
  enabled: true
  addr: "redis:6379"
  default_ttl: 1h
storage:
  enabled: true
  endpoint: "minio:9000"
  bucket: "reports"
metrics:
  enabled: true
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8088", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Scoring.StrictSections)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 45*time.Second, cfg.Batch.ItemTimeout)
	assert.Equal(t, "csv", cfg.Batch.OutputFormat)
	assert.Equal(t, 20*time.Second, cfg.ReferenceScorer.Timeout)
	assert.InDelta(t, 0.002, cfg.ReferenceScorer.Tolerance, 1e-12)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)
	assert.Equal(t, "reports", cfg.Storage.Bucket)
	// defaulted
	assert.Equal(t, DefaultProteinGlob, cfg.Batch.ProteinGlob)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "batch: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "batch:\n  output_format: parquet\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "batch.output_format")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("DOCKRMSD_BATCH_CONCURRENCY", "9")
	t.Setenv("DOCKRMSD_CACHE_ADDR", "cache.internal:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Batch.Concurrency)
	assert.Equal(t, "cache.internal:6380", cfg.Cache.Addr)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("DOCKRMSD_SERVER_PORT", "7070")
	t.Setenv("DOCKRMSD_REFERENCE_SCORER_BINARY", "DockRMSD")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "DockRMSD", cfg.ReferenceScorer.Binary)
	assert.True(t, cfg.ReferenceScorer.Enabled())
	assert.Equal(t, DefaultReferenceName, cfg.Batch.ReferenceName)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}

func TestWatch_InvokesCallbackOnWrite(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	var (
		mu    sync.Mutex
		level string
	)
	changed := make(chan struct{}, 4)
	err := Watch(path, func(cfg *Config) {
		mu.Lock()
		level = cfg.Log.Level
		mu.Unlock()
		select {
		case changed <- struct{}{}:
		default:
		}
	}, nil)
	require.NoError(t, err)

	updated := []byte("log:\n  level: warn\n")
	require.NoError(t, os.WriteFile(path, updated, 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("config change callback was not invoked")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "warn", level)
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
