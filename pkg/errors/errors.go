// Package errors provides the unified error type and factory functions used by
// every layer of dockrmsd. Structure parsing, cost-matrix construction, the
// assignment solver boundary, batch orchestration and the HTTP surface all
// report failures as *AppError so callers can branch on a stable code.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout dockrmsd.
// It supports Go 1.13+ wrapping so errors.Is / errors.As / errors.Unwrap work
// transparently across layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeCardinality, "reference has 12 heavy atoms, candidate has 11")
//	return errors.Wrap(err, errors.ErrCodeParse, "open ligand.mol2")
type AppError struct {
	// Code is the typed error code that identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (file path, line number, counts).
	Detail string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call-stack captured at creation. It is not part of Error().
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when
// Detail is empty and the cause is appended after " <- " when present.
func (e *AppError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code.String(), e.Message)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(" <- ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline.
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
//
//	if errors.IsCode(err, errors.ErrCodeFeasibility) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			if ae.Code == code {
				return true
			}
			err = ae.Cause
			continue
		}
		return false
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// A nil error yields CodeOK; a chain without an *AppError yields CodeUnknown.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// GetMessage returns the Message of the first *AppError in err's chain, or
// err.Error() when there is none.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		if ae.Detail != "" {
			return ae.Message + ": " + ae.Detail
		}
		return ae.Message
	}
	return err.Error()
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

// As is errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions
// ─────────────────────────────────────────────────────────────────────────────

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: captureStack(1)}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Stack: captureStack(1)}
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: captureStack(1)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Scoring error constructors
// ─────────────────────────────────────────────────────────────────────────────

// NewParseError reports a malformed structure file. line is 1-based; zero
// means the failure is not tied to a line (for example an open error).
func NewParseError(path string, line int, reason string, cause error) *AppError {
	detail := fmt.Sprintf("path=%s", path)
	if line > 0 {
		detail = fmt.Sprintf("path=%s line=%d", path, line)
	}
	return &AppError{
		Code:    ErrCodeParse,
		Message: reason,
		Detail:  detail,
		Cause:   cause,
		Stack:   captureStack(1),
	}
}

// NewCardinalityError reports that the two structures cannot be paired
// one-to-one because their heavy-atom counts differ.
func NewCardinalityError(referenceCount, candidateCount int) *AppError {
	return &AppError{
		Code:    ErrCodeCardinality,
		Message: DefaultMessageForCode(ErrCodeCardinality),
		Detail:  fmt.Sprintf("reference=%d candidate=%d", referenceCount, candidateCount),
		Stack:   captureStack(1),
	}
}

// NewFeasibilityError reports that every perfect matching uses at least one
// cross-element pair.
func NewFeasibilityError(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeFeasibility,
		Message: DefaultMessageForCode(ErrCodeFeasibility),
		Cause:   cause,
		Stack:   captureStack(1),
	}
}

// NewEmptyStructureError reports a zero-atom structure reaching the reducer.
func NewEmptyStructureError() *AppError {
	return &AppError{
		Code:    ErrCodeEmptyStructure,
		Message: DefaultMessageForCode(ErrCodeEmptyStructure),
		Stack:   captureStack(1),
	}
}

// NewCoordinateRangeError reports a same-element pair whose squared distance
// cannot be represented as a cost. Serials are the file serials of the pair.
func NewCoordinateRangeError(referenceSerial, candidateSerial int, element string, sqDist float64) *AppError {
	return &AppError{
		Code:    ErrCodeCoordinateRange,
		Message: DefaultMessageForCode(ErrCodeCoordinateRange),
		Detail: fmt.Sprintf("reference_serial=%d candidate_serial=%d element=%s sq_dist=%g",
			referenceSerial, candidateSerial, element, sqDist),
		Stack: captureStack(1),
	}
}

//Personal.AI order the ending
