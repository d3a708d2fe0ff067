package cli

import (
	"context"

	"github.com/turtacn/dockrmsd/internal/application/crosscheck"
	"github.com/turtacn/dockrmsd/internal/config"
	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/domain/structure"
	"github.com/turtacn/dockrmsd/internal/infrastructure/cache/redis"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dockrmsd/internal/infrastructure/refscorer"
	"github.com/turtacn/dockrmsd/internal/infrastructure/storage/minio"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// components are the collaborators a command wires from Config. Optional
// ones are nil when disabled.
type components struct {
	metrics   *prom.ScoringMetrics
	pipeline  *scoring.Pipeline
	redis     *redis.Client
	cache     *redis.ScoreCache
	storage   *minio.MinIOClient
	uploader  *minio.ReportUploader
	evaluator refscorer.Evaluator
}

type wants struct {
	cache     bool
	storage   bool
	reference bool
}

func buildComponents(ctx context.Context, cc *CLIContext, w wants) (*components, error) {
	cfg := cc.Config
	c := &components{}

	if cfg.Metrics.Enabled {
		metrics, err := prom.NewScoringMetrics(prom.Options{
			Namespace:      cfg.Metrics.Namespace,
			RuntimeMetrics: true,
		})
		if err != nil {
			return nil, err
		}
		c.metrics = metrics
	}

	c.pipeline = newPipeline(cfg, cc.Logger, c.metrics)

	if w.cache && cfg.Cache.Enabled {
		client, err := redis.NewClient(&redis.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			PoolSize:     cfg.Cache.PoolSize,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
		}, cc.Logger)
		if err != nil {
			return nil, err
		}
		opts := []redis.CacheOption{
			redis.WithPrefix(cfg.Cache.KeyPrefix),
			redis.WithDefaultTTL(cfg.Cache.DefaultTTL),
		}
		if c.metrics != nil {
			opts = append(opts, redis.WithRecorder(c.metrics))
		}
		c.redis = client
		c.cache = redis.NewScoreCache(client, cc.Logger, opts...)
	}

	if w.storage && cfg.Storage.Enabled {
		client, err := minio.NewMinIOClient(ctx, &minio.MinIOConfig{
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKey,
			SecretAccessKey: cfg.Storage.SecretKey,
			UseSSL:          cfg.Storage.UseSSL,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			Prefix:          cfg.Storage.Prefix,
		}, cc.Logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.storage = client
		c.uploader = minio.NewReportUploader(client, cc.Logger)
	}

	if w.reference {
		ev, err := newEvaluator(cfg, cc.Logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.evaluator = ev
	}

	return c, nil
}

func newPipeline(cfg *config.Config, log logging.Logger, metrics *prom.ScoringMetrics) *scoring.Pipeline {
	opts := []scoring.PipelineOption{
		scoring.WithLogger(log),
		scoring.WithReadOptions(structure.WithStrict(cfg.Scoring.StrictSections)),
	}
	if metrics != nil {
		opts = append(opts, scoring.WithObserver(metrics))
	}
	return scoring.NewPipeline(opts...)
}

func newEvaluator(cfg *config.Config, log logging.Logger) (refscorer.Evaluator, error) {
	if !cfg.ReferenceScorer.Enabled() {
		return nil, errors.InvalidParam("reference_scorer.binary is not configured")
	}
	ev, err := refscorer.NewExecEvaluator(refscorer.Config{
		Binary:  cfg.ReferenceScorer.Binary,
		Timeout: cfg.ReferenceScorer.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// crossChecker builds the comparison service; tolerance < 0 keeps the
// configured value.
func (c *components) crossChecker(cc *CLIContext, tolerance float64) crosscheck.Service {
	if tolerance < 0 {
		tolerance = cc.Config.ReferenceScorer.Tolerance
	}
	opts := []crosscheck.Option{crosscheck.WithTolerance(tolerance)}
	if c.metrics != nil {
		opts = append(opts, crosscheck.WithRecorder(c.metrics))
	}
	return crosscheck.NewService(c.pipeline, c.evaluator, cc.Logger, opts...)
}

// Close releases the network clients.
func (c *components) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.storage != nil {
		_ = c.storage.Close()
	}
}

//Personal.AI order the ending
