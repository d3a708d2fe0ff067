// Package crosscheck compares the assignment pipeline against the native
// DockRMSD executable for the same pose pair.
package crosscheck

import (
	"context"
	"fmt"
	"math"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dockrmsd/internal/infrastructure/refscorer"
	"github.com/turtacn/dockrmsd/pkg/errors"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

// DefaultTolerance is the largest |core - reference| counted as agreement.
const DefaultTolerance = 1e-3

// Scorer produces the in-process result for a pair of files.
type Scorer interface {
	Score(ctx context.Context, referencePath, candidatePath string) (*scoring.Result, error)
}

// Recorder receives one outcome per comparison.
type Recorder interface {
	RecordCrossCheck(outcome string)
}

// Service defines the cross-validation operations.
type Service interface {
	// Check scores the pair in process and with the reference tool.
	Check(ctx context.Context, referencePath, candidatePath string) (*Report, error)
	// Compare checks an existing result against the reference tool.
	Compare(ctx context.Context, res *scoring.Result, referencePath, candidatePath string) (*scoringtypes.CrossCheckSummary, error)
}

// Report is the outcome of Check.
type Report struct {
	Result     *scoring.Result                 `json:"result"`
	Evaluation *refscorer.Evaluation           `json:"evaluation"`
	Summary    *scoringtypes.CrossCheckSummary `json:"summary"`
}

// Option configures the service.
type Option func(*serviceImpl)

// WithTolerance overrides DefaultTolerance. Negative values are ignored.
func WithTolerance(tol float64) Option {
	return func(s *serviceImpl) {
		if tol >= 0 {
			s.tolerance = tol
		}
	}
}

// WithRecorder sets the outcome metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *serviceImpl) {
		if r != nil {
			s.recorder = r
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordCrossCheck(string) {}

type serviceImpl struct {
	scorer    Scorer
	evaluator refscorer.Evaluator
	tolerance float64
	recorder  Recorder
	logger    logging.Logger
}

// NewService creates a cross-check service.
func NewService(scorer Scorer, evaluator refscorer.Evaluator, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		scorer:    scorer,
		evaluator: evaluator,
		tolerance: DefaultTolerance,
		recorder:  nopRecorder{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check returns the report together with an ErrCodeCrossCheckMismatch error
// when the two scores disagree.
func (s *serviceImpl) Check(ctx context.Context, referencePath, candidatePath string) (*Report, error) {
	res, err := s.scorer.Score(ctx, referencePath, candidatePath)
	if err != nil {
		s.recorder.RecordCrossCheck(prom.CrossCheckFailed)
		return nil, err
	}

	eval, err := s.evaluator.Evaluate(ctx, referencePath, candidatePath)
	if err != nil {
		s.recorder.RecordCrossCheck(prom.CrossCheckFailed)
		return nil, err
	}

	summary, err := s.judge(res, eval, referencePath, candidatePath)
	return &Report{Result: res, Evaluation: eval, Summary: summary}, err
}

func (s *serviceImpl) Compare(ctx context.Context, res *scoring.Result, referencePath, candidatePath string) (*scoringtypes.CrossCheckSummary, error) {
	if res == nil {
		return nil, errors.InvalidParam("result is required")
	}
	eval, err := s.evaluator.Evaluate(ctx, referencePath, candidatePath)
	if err != nil {
		s.recorder.RecordCrossCheck(prom.CrossCheckFailed)
		return nil, err
	}
	return s.judge(res, eval, referencePath, candidatePath)
}

func (s *serviceImpl) judge(res *scoring.Result, eval *refscorer.Evaluation, referencePath, candidatePath string) (*scoringtypes.CrossCheckSummary, error) {
	summary := &scoringtypes.CrossCheckSummary{Tolerance: s.tolerance}

	if eval.Failed() {
		summary.ToolError = eval.Error
		s.recorder.RecordCrossCheck(prom.CrossCheckToolError)
		s.logger.Warn("reference scorer declined pair",
			logging.String("reference", referencePath),
			logging.String("candidate", candidatePath),
			logging.String("tool_error", eval.Error),
		)
		return summary, nil
	}

	summary.ReferenceRMSD = eval.RMSD
	summary.Delta = math.Abs(res.RMSD - eval.RMSD)
	summary.Agree = summary.Delta <= s.tolerance

	if !summary.Agree {
		s.recorder.RecordCrossCheck(prom.CrossCheckMismatch)
		s.logger.Warn("cross-check mismatch",
			logging.String("reference", referencePath),
			logging.String("candidate", candidatePath),
			logging.Float64("rmsd", res.RMSD),
			logging.Float64("reference_rmsd", eval.RMSD),
			logging.Float64("delta", summary.Delta),
		)
		return summary, errors.New(errors.ErrCodeCrossCheckMismatch, "core and reference rmsd disagree").
			WithDetail(fmt.Sprintf("rmsd=%.6f reference_rmsd=%.6f delta=%.6f tolerance=%g",
				res.RMSD, eval.RMSD, summary.Delta, s.tolerance))
	}

	s.recorder.RecordCrossCheck(prom.CrossCheckAgree)
	return summary, nil
}

//Personal.AI order the ending
