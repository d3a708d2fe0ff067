// Package common holds the JSON envelope shared by every dockrmsd HTTP
// response, plus the health and timestamp types it embeds.
package common

import (
	"encoding/json"
	"time"

	"github.com/turtacn/dockrmsd/pkg/errors"
)

// APIResponse wraps every JSON body the server writes. Exactly one of Data
// and Error is meaningful, as reported by Success.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp Timestamp    `json:"timestamp"`
}

// ErrorDetail is the error half of an APIResponse. Code is an RMSD_* code
// when the uploaded structures were rejected, COMMON_* otherwise.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	// Stage names the scoring step that failed, e.g. "build" or "solve".
	Stage string `json:"stage,omitempty"`
}

// NewSuccessResponse wraps data.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{Success: true, Data: data, Timestamp: NewTimestamp()}
}

// NewErrorResponse reports code with its default message.
func NewErrorResponse(code errors.ErrorCode, detail string) APIResponse[any] {
	return APIResponse[any]{
		Error: &ErrorDetail{
			Code:    code.String(),
			Message: errors.DefaultMessageForCode(code),
			Detail:  detail,
		},
		Timestamp: NewTimestamp(),
	}
}

// ErrorResponseFor reports err together with the HTTP status of its code.
// Client errors carry err's message and detail; server errors carry only the
// code's default message. Errors without a code report COMMON_001.
func ErrorResponseFor(err error) (APIResponse[any], int) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)
	resp := NewErrorResponse(code, "")
	if status < 500 {
		resp.Error.Message = errors.GetMessage(err)
	}
	return resp, status
}

// HealthStatus is the state of one dependency or of the whole service.
type HealthStatus string

const (
	HealthUp       HealthStatus = "up"
	HealthDown     HealthStatus = "down"
	HealthDegraded HealthStatus = "degraded"
)

// ComponentHealth is one readiness check result (redis, minio, the
// reference scorer).
type ComponentHealth struct {
	Name    string        `json:"name"`
	Status  HealthStatus  `json:"status"`
	Latency time.Duration `json:"latency"`
	Message string        `json:"message,omitempty"`
}

// Overall folds component results into the service status: down if any
// component is down, degraded if any is degraded, up otherwise.
func Overall(components []ComponentHealth) HealthStatus {
	status := HealthUp
	for _, c := range components {
		switch c.Status {
		case HealthUp:
		case HealthDegraded:
			status = HealthDegraded
		default:
			return HealthDown
		}
	}
	return status
}

// Timestamp is a UTC time encoded as an RFC 3339 string.
type Timestamp time.Time

// NewTimestamp returns the current UTC time.
func NewTimestamp() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time returns t as a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if parsed, err = time.Parse(time.RFC3339, s); err != nil {
			return err
		}
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// ContextKey types request-scoped values stored by the HTTP middleware.
type ContextKey string

// ContextKeyRequestID carries the X-Request-ID of the current request.
const ContextKeyRequestID ContextKey = "request_id"

//Personal.AI order the ending
