package batch

import (
	"context"
	stderrors "errors"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/domain/structure"
	"github.com/turtacn/dockrmsd/internal/infrastructure/cache/redis"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/pkg/errors"
	"github.com/turtacn/dockrmsd/pkg/types/common"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

// Scorer is the part of *scoring.Pipeline the runner drives.
type Scorer interface {
	ReadPair(ctx context.Context, referencePath, candidatePath string) (*structure.Structure, *structure.Structure, error)
	ScoreStructures(ctx context.Context, ref, cand *structure.Structure) (*scoring.Result, error)
}

// Cache looks results up by structure content.
type Cache interface {
	GetOrScore(ctx context.Context, ref, cand *structure.Structure, score redis.ScoreFunc) (*scoring.Result, bool, error)
}

// CrossChecker compares a finished result with the reference scorer.
type CrossChecker interface {
	Compare(ctx context.Context, res *scoring.Result, referencePath, candidatePath string) (*scoringtypes.CrossCheckSummary, error)
}

// Metrics receives per-job outcomes.
type Metrics interface {
	RecordBatchJob(status string, duration time.Duration)
	TrackWorker() func()
}

type nopMetrics struct{}

func (nopMetrics) RecordBatchJob(string, time.Duration) {}
func (nopMetrics) TrackWorker() func()                  { return func() {} }

// Runner scores jobs on a bounded worker pool.
type Runner struct {
	scorer      Scorer
	cache       Cache
	checker     CrossChecker
	metrics     Metrics
	logger      logging.Logger
	concurrency int
	itemTimeout time.Duration
	now         func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency sets the worker count. Values below 1 are ignored.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithItemTimeout bounds each job. Zero disables the deadline.
func WithItemTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d >= 0 {
			r.itemTimeout = d
		}
	}
}

// WithCache routes scoring through a content-addressed cache.
func WithCache(c Cache) RunnerOption {
	return func(r *Runner) { r.cache = c }
}

// WithCrossChecker compares every successful result with the reference
// scorer.
func WithCrossChecker(c CrossChecker) RunnerOption {
	return func(r *Runner) { r.checker = c }
}

// WithMetrics sets the job metrics sink.
func WithMetrics(m Metrics) RunnerOption {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewRunner returns a Runner with runtime.NumCPU workers and no item
// deadline unless configured otherwise.
func NewRunner(scorer Scorer, logger logging.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r := &Runner{
		scorer:      scorer,
		metrics:     nopMetrics{},
		logger:      logger,
		concurrency: runtime.NumCPU(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run is the outcome of one Runner.Run call.
type Run struct {
	ID      string
	Records []scoringtypes.BatchRecord
	Summary scoringtypes.BatchSummary
}

// Run scores every job of targets. Records come back in job order, preceded
// by one FAILED record per target whose layout is invalid. A cancelled ctx
// marks unfinished jobs CANCELLED; Run itself only fails on a nil scorer.
func (r *Runner) Run(ctx context.Context, targets []Target) (*Run, error) {
	if r.scorer == nil {
		return nil, errors.Internal("batch runner has no scorer")
	}

	run := &Run{ID: uuid.NewString()}
	run.Summary = scoringtypes.BatchSummary{
		RunID:     run.ID,
		Targets:   len(targets),
		StartedAt: common.Timestamp(r.now()),
	}

	for _, t := range targets {
		if t.Err == nil {
			continue
		}
		r.logger.Warn("skipping target", logging.String("target", t.ID), logging.Err(t.Err))
		run.Records = append(run.Records, r.failedTarget(run.ID, t))
	}

	jobs := Jobs(targets)
	results := make([]scoringtypes.BatchRecord, len(jobs))

	r.logger.Info("batch run started",
		logging.String("run_id", run.ID),
		logging.Int("targets", len(targets)),
		logging.Int("jobs", len(jobs)),
		logging.Int("concurrency", r.concurrency),
	)

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, job := range jobs {
		if ctx.Err() != nil {
			results[i] = r.record(run.ID, job, scoringtypes.StatusCancelled, nil, false, ctx.Err(), 0)
			continue
		}
		i, job := i, job
		g.Go(func() error {
			results[i] = r.runJob(ctx, run.ID, job)
			return nil
		})
	}
	_ = g.Wait()

	run.Records = append(run.Records, results...)
	for _, rec := range run.Records {
		run.Summary.Add(rec)
	}
	run.Summary.EndedAt = common.Timestamp(r.now())

	r.logger.Info("batch run finished",
		logging.String("run_id", run.ID),
		logging.Int("succeeded", run.Summary.Succeeded),
		logging.Int("failed", run.Summary.Failed),
		logging.Int("timed_out", run.Summary.TimedOut),
		logging.Int("cancelled", run.Summary.Cancelled),
	)
	return run, nil
}

type outcome struct {
	res    *scoring.Result
	cached bool
	err    error
}

func (r *Runner) runJob(ctx context.Context, runID string, job Job) scoringtypes.BatchRecord {
	done := r.metrics.TrackWorker()
	defer done()

	jobCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.itemTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, r.itemTimeout)
	}
	defer cancel()

	start := r.now()
	ch := make(chan outcome, 1)
	go func() {
		res, cached, err := r.score(jobCtx, job)
		ch <- outcome{res: res, cached: cached, err: err}
	}()

	var out outcome
	select {
	case out = <-ch:
	case <-jobCtx.Done():
		// The solver cannot be interrupted; its result is discarded.
		out = outcome{err: jobCtx.Err()}
	}
	elapsed := r.now().Sub(start)

	status := classify(ctx, out.err)
	rec := r.record(runID, job, status, out.res, out.cached, out.err, elapsed)
	if status == scoringtypes.StatusOK && r.checker != nil {
		r.crossCheck(jobCtx, &rec, job, out.res)
	}

	r.metrics.RecordBatchJob(string(status), elapsed)
	if status == scoringtypes.StatusOK {
		r.logger.Debug("job scored", logging.String("job", job.String()), logging.Float64("rmsd", out.res.RMSD))
	} else {
		r.logger.Warn("job did not score",
			logging.String("job", job.String()),
			logging.String("status", string(status)),
			logging.Err(out.err),
		)
	}
	return rec
}

func (r *Runner) score(ctx context.Context, job Job) (*scoring.Result, bool, error) {
	ref, cand, err := r.scorer.ReadPair(ctx, job.Reference, job.Candidate)
	if err != nil {
		return nil, false, err
	}
	if r.cache == nil {
		res, err := r.scorer.ScoreStructures(ctx, ref, cand)
		return res, false, err
	}
	return r.cache.GetOrScore(ctx, ref, cand, func(ctx context.Context) (*scoring.Result, error) {
		return r.scorer.ScoreStructures(ctx, ref, cand)
	})
}

func (r *Runner) crossCheck(ctx context.Context, rec *scoringtypes.BatchRecord, job Job, res *scoring.Result) {
	summary, err := r.checker.Compare(ctx, res, job.Reference, job.Candidate)
	rec.CrossCheck = summary
	if err != nil {
		rec.ErrorCode = string(errors.GetCode(err))
		rec.Error = errors.GetMessage(err)
	}
}

// classify maps a job error to its status. Deadline errors count as a
// timeout only while the run itself is still live.
func classify(runCtx context.Context, err error) scoringtypes.ItemStatus {
	switch {
	case err == nil:
		return scoringtypes.StatusOK
	case runCtx.Err() != nil:
		return scoringtypes.StatusCancelled
	case stderrors.Is(err, context.DeadlineExceeded):
		return scoringtypes.StatusTimeout
	default:
		return scoringtypes.StatusFailed
	}
}

func (r *Runner) record(runID string, job Job, status scoringtypes.ItemStatus, res *scoring.Result, cached bool, err error, elapsed time.Duration) scoringtypes.BatchRecord {
	rec := scoringtypes.BatchRecord{
		RunID:      runID,
		Target:     job.Target,
		Reference:  job.Reference,
		Candidate:  job.Candidate,
		Protein:    job.Protein,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
		Cached:     cached,
		FinishedAt: common.Timestamp(r.now()),
	}
	if res != nil && status == scoringtypes.StatusOK {
		rmsd := res.RMSD
		rec.RMSD = &rmsd
		rec.AtomCount = res.AtomCount
		rec.Renumbered = res.Renumbered()
	}
	if err != nil {
		rec.ErrorCode = string(errorCode(status, err))
		rec.Error = err.Error()
	}
	return rec
}

func errorCode(status scoringtypes.ItemStatus, err error) errors.ErrorCode {
	switch status {
	case scoringtypes.StatusTimeout:
		return errors.ErrCodeTimeout
	case scoringtypes.StatusCancelled:
		return errors.ErrCodeCancelled
	}
	return errors.GetCode(err)
}

func (r *Runner) failedTarget(runID string, t Target) scoringtypes.BatchRecord {
	return scoringtypes.BatchRecord{
		RunID:      runID,
		Target:     t.ID,
		Reference:  t.Reference,
		Protein:    t.Protein,
		Status:     scoringtypes.StatusFailed,
		ErrorCode:  string(errors.GetCode(t.Err)),
		Error:      t.Err.Error(),
		FinishedAt: common.Timestamp(r.now()),
	}
}

//Personal.AI order the ending
