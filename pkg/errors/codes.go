package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the "<MODULE>_<NNN>" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_017"
	ErrCodeCancelled          ErrorCode = "COMMON_018"
)

// Scoring Module Error Codes
const (
	// ErrCodeParse marks an unreadable or malformed structure file.
	ErrCodeParse ErrorCode = "RMSD_001"
	// ErrCodeCardinality marks structures whose heavy-atom counts differ.
	ErrCodeCardinality ErrorCode = "RMSD_002"
	// ErrCodeFeasibility marks a pair for which no element-preserving
	// one-to-one correspondence exists.
	ErrCodeFeasibility ErrorCode = "RMSD_003"
	// ErrCodeEmptyStructure marks a structure with zero heavy atoms.
	ErrCodeEmptyStructure ErrorCode = "RMSD_004"
	// ErrCodeReferenceScorer marks a failure to run or read the external
	// reference scorer.
	ErrCodeReferenceScorer ErrorCode = "RMSD_005"
	// ErrCodeCrossCheckMismatch marks disagreement between the assignment
	// pipeline and the reference scorer beyond the configured tolerance.
	ErrCodeCrossCheckMismatch ErrorCode = "RMSD_006"
	// ErrCodeTargetLayout marks a target directory that lacks its reference
	// pose or protein file.
	ErrCodeTargetLayout ErrorCode = "RMSD_007"
	// ErrCodeCoordinateRange marks an atom pair too far apart to quantize.
	ErrCodeCoordinateRange ErrorCode = "RMSD_008"
)

// Aliases
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeCacheError   = ErrCodeCacheError
	CodeStorageError = ErrCodeStorageError
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeCancelled:          http.StatusRequestTimeout,

	ErrCodeParse:              http.StatusBadRequest,
	ErrCodeCardinality:        http.StatusUnprocessableEntity,
	ErrCodeFeasibility:        http.StatusUnprocessableEntity,
	ErrCodeEmptyStructure:     http.StatusUnprocessableEntity,
	ErrCodeReferenceScorer:    http.StatusBadGateway,
	ErrCodeCrossCheckMismatch: http.StatusConflict,
	ErrCodeTargetLayout:       http.StatusBadRequest,
	ErrCodeCoordinateRange:    http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeCancelled:          "operation cancelled",

	ErrCodeParse:              "failed to parse structure file",
	ErrCodeCardinality:        "structures have different heavy-atom counts",
	ErrCodeFeasibility:        "no element-preserving atom correspondence exists",
	ErrCodeEmptyStructure:     "structure has no heavy atoms",
	ErrCodeReferenceScorer:    "reference scorer failed",
	ErrCodeCrossCheckMismatch: "reference scorer disagrees with assignment RMSD",
	ErrCodeTargetLayout:       "target directory layout invalid",
	ErrCodeCoordinateRange:    "atom pair distance out of range",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
