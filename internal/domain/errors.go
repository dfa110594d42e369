// Package domain provides the request-scoped types shared by the parser,
// the aggregation engine, the pipeline and the transport.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind represents the category of a pipeline failure.
type ErrorKind string

const (
	// ErrorKindMissingInput indicates the nums parameter was absent or empty.
	ErrorKindMissingInput ErrorKind = "missing_input"

	// ErrorKindMalformedElement indicates an element could not be used as a number.
	ErrorKindMalformedElement ErrorKind = "malformed_element"

	// ErrorKindNotFound indicates no operation or route matched the request.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindInternal indicates an unanticipated failure.
	ErrorKindInternal ErrorKind = "internal"
)

// Status returns the HTTP status code for the kind.
func (k ErrorKind) Status() int {
	switch k {
	case ErrorKindMissingInput, ErrorKindMalformedElement:
		return http.StatusBadRequest
	case ErrorKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Messages used by the convenience constructors.
const (
	MessageMissingInput = "Query string must be comma separated list of nums"
	MessageNotFound     = "Page Not Found"
)

// PipelineError is a classified failure carrying the message and status code
// that end up in the error envelope.
type PipelineError struct {
	Kind    ErrorKind `json:"-"`
	Message string    `json:"message"`
	Status  int       `json:"status"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HTTPStatusCode returns the status for this error, falling back to the
// kind's default when Status is unset.
func (e *PipelineError) HTTPStatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Kind.Status()
}

// NewPipelineError creates an error of the given kind with the kind's status.
func NewPipelineError(kind ErrorKind, message string) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Message: message,
		Status:  kind.Status(),
	}
}

// ErrMissingInput creates a missing input error.
func ErrMissingInput() *PipelineError {
	return NewPipelineError(ErrorKindMissingInput, MessageMissingInput)
}

// ErrMalformedElement creates an error citing the offending value and its
// zero-based position.
func ErrMalformedElement(value string, index int) *PipelineError {
	return NewPipelineError(ErrorKindMalformedElement,
		fmt.Sprintf("The value '%s' at index %d is not a valid number.", value, index))
}

// ErrNotFound creates a route miss error.
func ErrNotFound() *PipelineError {
	return NewPipelineError(ErrorKindNotFound, MessageNotFound)
}

// ErrInternal creates an internal error.
func ErrInternal(message string) *PipelineError {
	return NewPipelineError(ErrorKindInternal, message)
}
