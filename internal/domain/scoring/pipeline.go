package scoring

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/turtacn/dockrmsd/internal/domain/assignment"
	"github.com/turtacn/dockrmsd/internal/domain/structure"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// Stage names one step of the scoring pipeline.
type Stage string

const (
	StageReadReference Stage = "read_reference"
	StageReadCandidate Stage = "read_candidate"
	StageBuild         Stage = "build"
	StageSolve         Stage = "solve"
	StageReduce        Stage = "reduce"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageReadReference, StageReadCandidate, StageBuild, StageSolve, StageReduce}

// StageError records which stage failed and for which input. It unwraps to
// the underlying *errors.AppError (or context error).
type StageError struct {
	Stage  Stage
	Source string
	Err    error
}

func (e *StageError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("scoring: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("scoring: %s %s: %v", e.Stage, e.Source, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage recorded in err's chain, or "" when err did
// not come from a Pipeline.
func FailedStage(err error) Stage {
	var se *StageError
	if stderrors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Observer receives per-stage timings and final outcomes. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveStage(stage Stage, elapsed time.Duration, err error)
	ObserveScore(atoms int, rmsd float64)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(Stage, time.Duration, error) {}
func (nopObserver) ObserveScore(int, float64)                {}

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline
// ─────────────────────────────────────────────────────────────────────────────

// Pipeline runs read → build → solve → reduce for one pose pair. It holds no
// per-call state, so one Pipeline may serve concurrent callers.
type Pipeline struct {
	solver   assignment.Solver
	readOpts []structure.ReadOption
	logger   logging.Logger
	observer Observer
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithSolver replaces the default Hungarian solver.
func WithSolver(s assignment.Solver) PipelineOption {
	return func(p *Pipeline) {
		if s != nil {
			p.solver = s
		}
	}
}

// WithReadOptions sets the options passed to structure.ReadFile.
func WithReadOptions(opts ...structure.ReadOption) PipelineOption {
	return func(p *Pipeline) { p.readOpts = append(p.readOpts, opts...) }
}

// WithLogger sets the logger used for per-stage debug entries.
func WithLogger(l logging.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) PipelineOption {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// NewPipeline returns a Pipeline using the Hungarian solver unless
// overridden.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		solver:   assignment.NewHungarian(),
		logger:   logging.NewNopLogger(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Score reads both MOL2 files and scores them. The first failing stage ends
// the call; its *StageError names the stage and input.
func (p *Pipeline) Score(ctx context.Context, referencePath, candidatePath string) (*Result, error) {
	ref, cand, err := p.ReadPair(ctx, referencePath, candidatePath)
	if err != nil {
		return nil, err
	}
	return p.ScoreStructures(ctx, ref, cand)
}

// ReadPair runs the two read stages only. Callers that look results up by
// content use it before deciding whether to score.
func (p *Pipeline) ReadPair(ctx context.Context, referencePath, candidatePath string) (ref, cand *structure.Structure, err error) {
	if err = p.run(ctx, StageReadReference, referencePath, func() (err error) {
		ref, err = structure.ReadFile(referencePath, p.readOpts...)
		return err
	}); err != nil {
		return nil, nil, err
	}
	if err = p.run(ctx, StageReadCandidate, candidatePath, func() (err error) {
		cand, err = structure.ReadFile(candidatePath, p.readOpts...)
		return err
	}); err != nil {
		return nil, nil, err
	}
	return ref, cand, nil
}

// ScoreStructures scores two already-parsed structures.
func (p *Pipeline) ScoreStructures(ctx context.Context, ref, cand *structure.Structure) (*Result, error) {
	var (
		m     *CostMatrix
		pairs []assignment.Pair
		rmsd  float64
	)
	pairSource := ref.Source + " vs " + cand.Source

	if err := p.run(ctx, StageBuild, pairSource, func() (err error) {
		m, err = BuildCostMatrix(ref, cand)
		return err
	}); err != nil {
		return nil, err
	}

	if err := p.run(ctx, StageSolve, pairSource, func() error {
		var err error
		pairs, err = p.solver.Solve(m)
		switch {
		case err == nil:
			sort.Slice(pairs, func(i, j int) bool { return pairs[i].Row < pairs[j].Row })
			return nil
		case stderrors.Is(err, assignment.ErrInfeasible):
			return errors.NewFeasibilityError(err).
				WithDetail(fmt.Sprintf("reference=%v candidate=%v", ref.Composition(), cand.Composition()))
		default:
			return errors.Wrap(err, errors.CodeInternal, "assignment solver failed")
		}
	}); err != nil {
		return nil, err
	}

	if err := p.run(ctx, StageReduce, pairSource, func() (err error) {
		rmsd, err = Reduce(m, pairs)
		return err
	}); err != nil {
		return nil, err
	}

	cols := make([]int, len(pairs))
	var total int64
	for _, pr := range pairs {
		cols[pr.Row] = pr.Col
		c, _ := m.Cost(pr.Row, pr.Col)
		total += c
	}

	res := &Result{
		Reference: ref.Source,
		Candidate: cand.Source,
		AtomCount: m.Size(),
		RMSD:      rmsd,
		NaiveRMSD: NaiveRMSD(m),
		TotalCost: total,
		Mapping:   buildMapping(m, ref, cand, cols),
	}
	p.observer.ObserveScore(res.AtomCount, res.RMSD)
	p.logger.Debug("pose pair scored",
		logging.String("reference", res.Reference),
		logging.String("candidate", res.Candidate),
		logging.Int("atoms", res.AtomCount),
		logging.Float64("rmsd", res.RMSD),
		logging.Int("renumbered", res.Renumbered()),
	)
	return res, nil
}

// run checks ctx, executes fn, records timing, and wraps any failure in a
// *StageError.
func (p *Pipeline) run(ctx context.Context, stage Stage, source string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		p.observer.ObserveStage(stage, 0, err)
		return &StageError{Stage: stage, Source: source, Err: errors.Wrap(err, errors.ErrCodeCancelled, "scoring cancelled")}
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.observer.ObserveStage(stage, elapsed, err)

	if err != nil {
		p.logger.Debug("scoring stage failed",
			logging.String("stage", string(stage)),
			logging.String("source", source),
			logging.Duration("elapsed", elapsed),
			logging.Err(err),
			logging.ErrCode(err),
		)
		return &StageError{Stage: stage, Source: source, Err: err}
	}
	p.logger.Debug("scoring stage done",
		logging.String("stage", string(stage)),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

//Personal.AI order the ending
