package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/domain/structure"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// Recorder receives hit/miss/error outcomes. The prometheus ScoringMetrics
// satisfies it.
type Recorder interface {
	RecordCacheAccess(result string)
}

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

type nopRecorder struct{}

func (nopRecorder) RecordCacheAccess(string) {}

// ScoreFunc computes a result on a cache miss.
type ScoreFunc func(ctx context.Context) (*scoring.Result, error)

// ScoreCache stores scoring results keyed by the content digests of the two
// structures, so renamed or copied files still hit.
type ScoreCache struct {
	client       *Client
	logger       logging.Logger
	recorder     Recorder
	prefix       string
	defaultTTL   time.Duration
	singleflight singleflight.Group
}

type CacheOption func(*ScoreCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *ScoreCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *ScoreCache) { c.defaultTTL = ttl }
}

func WithRecorder(r Recorder) CacheOption {
	return func(c *ScoreCache) {
		if r != nil {
			c.recorder = r
		}
	}
}

func NewScoreCache(client *Client, log logging.Logger, opts ...CacheOption) *ScoreCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &ScoreCache{
		client:     client,
		logger:     log,
		recorder:   nopRecorder{},
		prefix:     "dockrmsd:",
		defaultTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key is the redis key for the (ref, cand) pair. Order matters: the mapping
// is reported in reference order.
func (c *ScoreCache) Key(ref, cand *structure.Structure) string {
	return c.prefix + "score:" + ref.Digest() + ":" + cand.Digest()
}

func (c *ScoreCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	// +/- 10%
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

// Get returns the cached result for the pair, or ErrCacheMiss. Reference and
// Candidate are rewritten to the sources of ref and cand.
func (c *ScoreCache) Get(ctx context.Context, ref, cand *structure.Structure) (*scoring.Result, error) {
	data, err := c.client.Get(ctx, c.Key(ref, cand)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}

	var res scoring.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}
	res.Reference, res.Candidate = ref.Source, cand.Source
	return &res, nil
}

// Set stores res for the pair. A zero ttl uses the default.
func (c *ScoreCache) Set(ctx context.Context, ref, cand *structure.Structure, res *scoring.Result, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(res)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.Key(ref, cand), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write to cache")
	}
	return nil
}

// Delete drops the cached entry for the pair.
func (c *ScoreCache) Delete(ctx context.Context, ref, cand *structure.Structure) error {
	if err := c.client.Del(ctx, c.Key(ref, cand)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete from cache")
	}
	return nil
}

// GetOrScore returns the cached result for the pair or calls score and caches
// what it returns. Concurrent callers for the same key share one score call,
// which runs detached from any single caller's cancellation; each caller
// still returns as soon as its own ctx is done. Cache failures are logged and
// never fail the call; scoring errors are returned and not cached. The bool
// reports a cache hit.
func (c *ScoreCache) GetOrScore(ctx context.Context, ref, cand *structure.Structure, score ScoreFunc) (*scoring.Result, bool, error) {
	res, err := c.Get(ctx, ref, cand)
	switch {
	case err == nil:
		c.recorder.RecordCacheAccess(resultHit)
		return res, true, nil
	case err == ErrCacheMiss:
		c.recorder.RecordCacheAccess(resultMiss)
	default:
		c.recorder.RecordCacheAccess(resultError)
		c.logger.Warn("score cache read failed", logging.Err(err))
	}

	key := c.Key(ref, cand)
	shared := context.WithoutCancel(ctx)
	ch := c.singleflight.DoChan(key, func() (interface{}, error) {
		r, err := score(shared)
		if err != nil {
			return nil, err
		}
		if err := c.Set(shared, ref, cand, r, 0); err != nil {
			c.recorder.RecordCacheAccess(resultError)
			c.logger.Warn("score cache write failed", logging.String("key", key), logging.Err(err))
		}
		return r, nil
	})

	var out scoring.Result
	select {
	case <-ctx.Done():
		return nil, false, errors.Wrap(ctx.Err(), errors.ErrCodeCancelled, "scoring cancelled")
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		out = *r.Val.(*scoring.Result)
	}

	// Shared callers each get their own copy with their own sources.
	out.Reference, out.Candidate = ref.Source, cand.Source
	return &out, false, nil
}

//Personal.AI order the ending
