// Package errors provides standardized error handling for the extraction pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Configuration-time failures (prompt template source).
	ErrCodeTemplateNotFound   ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateUnreadable ErrorCode = "TEMPLATE_UNREADABLE"

	// Transient generation failures, retryable by the caller.
	ErrCodeGenerationUnavailable ErrorCode = "GENERATION_UNAVAILABLE"
	ErrCodeGenerationTimeout     ErrorCode = "GENERATION_TIMEOUT"

	// Permanent failures for the given input.
	ErrCodeMalformedDocument ErrorCode = "MALFORMED_DOCUMENT"
	ErrCodeSchemaViolation   ErrorCode = "SCHEMA_VIOLATION"

	ErrCodeCalendarEventFailed ErrorCode = "CALENDAR_EVENT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Pipeline Stage Integration
// ==========================

// Stage names a step of the extraction pipeline for failure tagging.
type Stage string

const (
	StageComposition   Stage = "composition"
	StageGeneration    Stage = "generation"
	StageNormalization Stage = "normalization"
	StageValidation    Stage = "validation"
)

// PipelineError tags a StandardError with the pipeline stage that produced it.
type PipelineError struct {
	Stage Stage
	Err   *StandardError

	// Diagnostics captured at the failing stage, echoed to the caller.
	RawText        string
	NormalizedText string
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Err.Error())
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err for the given stage. Non-StandardError causes
// are coerced so the envelope always carries a code.
func NewPipelineError(stage Stage, err error) *PipelineError {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		stdErr = &StandardError{
			Code:      "INTERNAL_ERROR",
			Message:   "unexpected pipeline failure",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}
	return &PipelineError{Stage: stage, Err: stdErr}
}

// ErrorEnvelope is the uniform failure payload returned to callers.
type ErrorEnvelope struct {
	RequestID      string    `json:"requestId,omitempty"`
	Stage          string    `json:"stage"`
	Code           ErrorCode `json:"code"`
	Message        string    `json:"message"`
	Details        string    `json:"details,omitempty"`
	Retryable      bool      `json:"retryable"`
	RawText        string    `json:"rawText,omitempty"`
	NormalizedText string    `json:"normalizedText,omitempty"`
	Timestamp      string    `json:"timestamp"`
}

// ToEnvelope converts a PipelineError to the uniform error envelope.
func ToEnvelope(requestID string, pipeErr *PipelineError) *ErrorEnvelope {
	return &ErrorEnvelope{
		RequestID:      requestID,
		Stage:          string(pipeErr.Stage),
		Code:           pipeErr.Err.Code,
		Message:        pipeErr.Err.Message,
		Details:        pipeErr.Err.Details,
		Retryable:      pipeErr.Err.Retryable,
		RawText:        pipeErr.RawText,
		NormalizedText: pipeErr.NormalizedText,
		Timestamp:      pipeErr.Err.Timestamp.Format(time.RFC3339),
	}
}

// Detail renders the single-line summary used in the HTTP {detail} body.
func (e *ErrorEnvelope) Detail() string {
	if e.Details != "" {
		return fmt.Sprintf("%s stage failed [%s]: %s: %s", e.Stage, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s stage failed [%s]: %s", e.Stage, e.Code, e.Message)
}

// ==========================
// 3. Error Constructors
// ==========================

// NewTemplateNotFoundError creates a non-retryable template lookup error.
func NewTemplateNotFoundError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "No prompt template mapped for kind",
		Details:   fmt.Sprintf("promptKind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateUnreadableError creates a non-retryable template load error.
func NewTemplateUnreadableError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateUnreadable,
		Message:   "Prompt template could not be loaded",
		Details:   fmt.Sprintf("promptKind: %s, error: %s", kind, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationUnavailableError creates a retryable generation transport error.
func NewGenerationUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationUnavailable,
		Message:   "Generation service unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a retryable generation timeout error.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Generation call exceeded deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedDocumentError creates a non-retryable parse error.
func NewMalformedDocumentError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedDocument,
		Message:   "Generated text is not well-formed JSON",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaViolationError creates a non-retryable field invariant error.
// fieldPath locates the offending field (e.g. "tickets.2.due_date").
func NewSchemaViolationError(fieldPath, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaViolation,
		Message:   "Generated document violates the result schema",
		Details:   fmt.Sprintf("field: %s, reason: %s", fieldPath, reason),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Metadata: map[string]interface{}{
			"field":  fieldPath,
			"reason": reason,
		},
	}
}

// NewCalendarEventFailedError creates a retryable calendar integration error.
func NewCalendarEventFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCalendarEventFailed,
		Message:   "Calendar event creation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryable reports whether an error carries a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from an error chain, or empty when absent.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}
