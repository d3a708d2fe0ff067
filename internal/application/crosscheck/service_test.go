package crosscheck

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	prom "github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dockrmsd/internal/infrastructure/refscorer"
	"github.com/turtacn/dockrmsd/internal/testutil"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

type mockEvaluator struct {
	mock.Mock
}

func (m *mockEvaluator) Evaluate(ctx context.Context, referencePath, candidatePath string) (*refscorer.Evaluation, error) {
	args := m.Called(ctx, referencePath, candidatePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refscorer.Evaluation), args.Error(1)
}

type outcomeRecorder struct {
	outcomes []string
}

func (r *outcomeRecorder) RecordCrossCheck(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

// pair writes a C/O pose pair whose assignment RMSD is 0.5.
func pair(t *testing.T) (string, string) {
	dir := t.TempDir()
	ref := testutil.WriteMOL2(t, dir, "crystal.mol2",
		testutil.A("C.3", 0, 0, 0),
		testutil.A("O.2", 1, 0, 0),
	)
	cand := testutil.WriteMOL2(t, dir, "vina1.mol2",
		testutil.A("O.2", 1, 0, 0),
		testutil.A("C.3", 0.5, 0.5, 0),
	)
	return ref, cand
}

func newService(ev refscorer.Evaluator, rec Recorder, tol float64) (Service, *testutil.MockLogger) {
	logger := testutil.NewMockLogger()
	return NewService(scoring.NewPipeline(), ev, logger, WithTolerance(tol), WithRecorder(rec)), logger
}

func TestCheck_Agree(t *testing.T) {
	ref, cand := pair(t)
	ev := new(mockEvaluator)
	ev.On("Evaluate", mock.Anything, ref, cand).Return(&refscorer.Evaluation{RMSD: 0.5004}, nil)
	rec := &outcomeRecorder{}

	svc, _ := newService(ev, rec, DefaultTolerance)
	report, err := svc.Check(context.Background(), ref, cand)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, report.Result.RMSD, 1e-12)
	assert.True(t, report.Summary.Agree)
	assert.InDelta(t, 0.0004, report.Summary.Delta, 1e-9)
	assert.Equal(t, 0.5004, report.Summary.ReferenceRMSD)
	assert.Equal(t, []string{prom.CrossCheckAgree}, rec.outcomes)
	ev.AssertExpectations(t)
}

func TestCheck_Mismatch(t *testing.T) {
	ref, cand := pair(t)
	ev := new(mockEvaluator)
	ev.On("Evaluate", mock.Anything, ref, cand).Return(&refscorer.Evaluation{RMSD: 0.7}, nil)
	rec := &outcomeRecorder{}

	svc, logger := newService(ev, rec, 0.01)
	report, err := svc.Check(context.Background(), ref, cand)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCrossCheckMismatch))

	require.NotNil(t, report)
	assert.False(t, report.Summary.Agree)
	assert.InDelta(t, 0.2, report.Summary.Delta, 1e-9)
	assert.Equal(t, []string{prom.CrossCheckMismatch}, rec.outcomes)
	assert.True(t, logger.HasMessage("warn", "cross-check mismatch"))
}

func TestCheck_ToolErrorIsReported(t *testing.T) {
	ref, cand := pair(t)
	ev := new(mockEvaluator)
	ev.On("Evaluate", mock.Anything, ref, cand).Return(&refscorer.Evaluation{Error: "No valid mapping exists"}, nil)
	rec := &outcomeRecorder{}

	svc, _ := newService(ev, rec, DefaultTolerance)
	report, err := svc.Check(context.Background(), ref, cand)
	require.NoError(t, err)
	assert.False(t, report.Summary.Agree)
	assert.Equal(t, "No valid mapping exists", report.Summary.ToolError)
	assert.Equal(t, []string{prom.CrossCheckToolError}, rec.outcomes)
}

func TestCheck_EvaluatorFailure(t *testing.T) {
	ref, cand := pair(t)
	ev := new(mockEvaluator)
	launch := errors.New(errors.ErrCodeReferenceScorer, "failed to launch reference scorer")
	ev.On("Evaluate", mock.Anything, ref, cand).Return(nil, launch)
	rec := &outcomeRecorder{}

	svc, _ := newService(ev, rec, DefaultTolerance)
	_, err := svc.Check(context.Background(), ref, cand)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReferenceScorer))
	assert.Equal(t, []string{prom.CrossCheckFailed}, rec.outcomes)
}

func TestCheck_CoreFailureSkipsTool(t *testing.T) {
	dir := t.TempDir()
	ref := testutil.WriteMOL2(t, dir, "crystal.mol2", testutil.A("C.3", 0, 0, 0))
	cand := testutil.WriteMOL2(t, dir, "vina1.mol2", testutil.A("C.3", 0, 0, 0), testutil.A("C.3", 1, 0, 0))
	ev := new(mockEvaluator)
	rec := &outcomeRecorder{}

	svc, _ := newService(ev, rec, DefaultTolerance)
	_, err := svc.Check(context.Background(), ref, cand)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCardinality))
	ev.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{prom.CrossCheckFailed}, rec.outcomes)
}

func TestCompare(t *testing.T) {
	ev := new(mockEvaluator)
	ev.On("Evaluate", mock.Anything, "r", "c").Return(&refscorer.Evaluation{RMSD: 1.0}, nil).Once()
	ev.On("Evaluate", mock.Anything, "r", "c").Return(nil, stderrors.New("boom")).Once()

	svc, _ := newService(ev, &outcomeRecorder{}, DefaultTolerance)
	summary, err := svc.Compare(context.Background(), &scoring.Result{RMSD: 1.0}, "r", "c")
	require.NoError(t, err)
	assert.True(t, summary.Agree)
	assert.Zero(t, summary.Delta)

	_, err = svc.Compare(context.Background(), &scoring.Result{RMSD: 1.0}, "r", "c")
	assert.EqualError(t, err, "boom")

	_, err = svc.Compare(context.Background(), nil, "r", "c")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestWithTolerance_IgnoresNegative(t *testing.T) {
	s := NewService(nil, nil, nil, WithTolerance(-1)).(*serviceImpl)
	assert.Equal(t, DefaultTolerance, s.tolerance)
}

//Personal.AI order the ending
