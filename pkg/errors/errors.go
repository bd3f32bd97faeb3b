package errors

import "fmt"

// Error kinds. These are the machine-readable values surfaced in API error
// responses, so they are part of the public contract.
const (
	KindInvalidRequest = "invalid_request"
	KindNotConfigured  = "not_configured"
	KindNotFound       = "not_found"
	KindUpstream       = "upstream_error"
	KindProtocol       = "protocol_error"
	KindInternal       = "internal_error"
)

// AppError is the common error shape for the service. Kind drives the HTTP
// status and the machine-readable error code; Context and Cause stay in the
// logs and never reach the client.
type AppError struct {
	Message    string
	Kind       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func New(message, kind string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Kind:       kind,
		StatusCode: statusCode,
		Context:    context,
	}
}

// NewInputError marks a request the caller got wrong (missing message,
// unreadable body). Rejected before any upstream work happens.
func NewInputError(message string, context map[string]any) *AppError {
	return New(message, KindInvalidRequest, 400, context)
}

// NewConfigurationError marks a broken deployment (missing credential),
// as opposed to a broken request.
func NewConfigurationError(message string) *AppError {
	return New(message, KindNotConfigured, 500, nil)
}

// NewNotFoundError marks a slug with no complete language pair. Distinct
// from transient failures so callers can render a not-found page.
func NewNotFoundError(message string, context map[string]any) *AppError {
	return New(message, KindNotFound, 404, context)
}

// NewUpstreamError marks a failed call to the completion provider. The raw
// upstream detail belongs in Context for diagnostics, not in Message.
func NewUpstreamError(message string, context map[string]any) *AppError {
	return New(message, KindUpstream, 502, context)
}

// NewProtocolError marks a success response from the provider that did not
// match the expected shape.
func NewProtocolError(message string, context map[string]any) *AppError {
	return New(message, KindProtocol, 502, context)
}
