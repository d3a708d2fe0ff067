// Package errors_test covers the AppError type, factory functions, and
// error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"parse", errors.ErrCodeParse, "coordinate is not a number"},
		{"cardinality", errors.ErrCodeCardinality, "counts differ"},
		{"feasibility", errors.ErrCodeFeasibility, "no matching"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeTargetLayout, "target %q has no %s", "1abc", "crystal.mol2")
	assert.Equal(t, `target "1abc" has no crystal.mol2`, ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("open crystal.mol2: no such file or directory")
	wrapped := errors.Wrap(root, errors.ErrCodeParse, "read failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeParse, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeCardinality, "counts differ")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeCardinality, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeCardinality, "counts differ")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError_Method
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *errors.AppError
		want string
	}{
		{
			name: "message only",
			err:  errors.New(errors.ErrCodeEmptyStructure, "structure has no heavy atoms"),
			want: "[RMSD_004] structure has no heavy atoms",
		},
		{
			name: "with detail",
			err:  errors.New(errors.ErrCodeParse, "bad coordinate").WithDetail("path=a.mol2 line=9"),
			want: "[RMSD_001] bad coordinate: path=a.mol2 line=9",
		},
		{
			name: "coordinate range",
			err:  errors.NewCoordinateRangeError(3, 7, "C", 1e16),
			want: "[RMSD_008] atom pair distance out of range: reference_serial=3 candidate_serial=7 element=C sq_dist=1e+16",
		},
		{
			name: "with cause",
			err:  errors.Wrap(stderrors.New("boom"), errors.CodeInternal, "failed"),
			want: "[COMMON_001] failed <- boom",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWithDetail / TestWithCause
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetail_SetsDetailOnCopy(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeNotFound, "resource missing")
	detailed := original.WithDetail("id=42")

	assert.Empty(t, original.Detail)
	assert.Equal(t, "id=42", detailed.Detail)
	assert.Equal(t, original.Code, detailed.Code)
}

func TestWithDetail_NilReceiverReturnsNil(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeInternal, "failure")
	cause := stderrors.New("cause")
	withCause := original.WithCause(cause)

	assert.Nil(t, original.Cause)
	assert.Equal(t, cause, withCause.Cause)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestIsCode / TestGetCode
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode(t *testing.T) {
	t.Parallel()

	root := errors.NewFeasibilityError(stderrors.New("infeasible"))
	wrapped := errors.Wrap(root, errors.CodeInternal, "solve stage")
	foreign := fmt.Errorf("pipeline: %w", wrapped)

	assert.True(t, errors.IsCode(root, errors.ErrCodeFeasibility))
	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeFeasibility))
	assert.True(t, errors.IsCode(foreign, errors.ErrCodeFeasibility))
	assert.True(t, errors.IsCode(foreign, errors.CodeInternal))
	assert.False(t, errors.IsCode(foreign, errors.ErrCodeParse))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeParse))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrCodeParse))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeCardinality,
		errors.GetCode(fmt.Errorf("x: %w", errors.NewCardinalityError(3, 4))))
}

func TestGetMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", errors.GetMessage(nil))
	assert.Equal(t, "plain", errors.GetMessage(stderrors.New("plain")))
	assert.Equal(t, "structures have different heavy-atom counts: reference=3 candidate=4",
		errors.GetMessage(errors.NewCardinalityError(3, 4)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Scoring constructors
// ─────────────────────────────────────────────────────────────────────────────

func TestNewParseError(t *testing.T) {
	t.Parallel()

	withLine := errors.NewParseError("pose.mol2", 12, "expected 6 fields", nil)
	assert.Equal(t, errors.ErrCodeParse, withLine.Code)
	assert.Equal(t, "path=pose.mol2 line=12", withLine.Detail)

	cause := stderrors.New("permission denied")
	noLine := errors.NewParseError("pose.mol2", 0, "cannot open", cause)
	assert.Equal(t, "path=pose.mol2", noLine.Detail)
	assert.ErrorIs(t, noLine, cause)
}

func TestNewCardinalityError(t *testing.T) {
	t.Parallel()

	ae := errors.NewCardinalityError(24, 23)
	assert.Equal(t, errors.ErrCodeCardinality, ae.Code)
	assert.Contains(t, ae.Error(), "reference=24 candidate=23")
}

func TestNewEmptyStructureError(t *testing.T) {
	t.Parallel()

	ae := errors.NewEmptyStructureError()
	assert.True(t, errors.IsCode(ae, errors.ErrCodeEmptyStructure))
	assert.NotEmpty(t, ae.Stack)
}

//Personal.AI order the ending
