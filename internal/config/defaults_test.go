package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, runtime.NumCPU(), cfg.Batch.Concurrency)
	assert.Equal(t, DefaultReferenceName, cfg.Batch.ReferenceName)
	assert.Equal(t, DefaultPoseGlob, cfg.Batch.PoseGlob)
	assert.Equal(t, DefaultReferenceScorerTolerance, cfg.ReferenceScorer.Tolerance)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Cache.KeyPrefix)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Storage.Enabled)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Batch.Concurrency = 3
	cfg.Batch.PoseGlob = "pose_*.mol2"
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.Equal(t, "pose_*.mol2", cfg.Batch.PoseGlob)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
