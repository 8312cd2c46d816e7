// Package ext holds the names and policies shared by instrumented
// integrations: tag keys, span types and status error ranges.
package ext

const (
	// Error tags set by Span.SetError.
	ErrorMsg   = "error.msg"
	ErrorType  = "error.type"
	ErrorStack = "error.stack"

	// PropagationError is set when trace headers could not be written
	// to an outgoing request.
	PropagationError = "propagation.error"
)

// Span types.
const (
	SpanTypeWeb  = "web"
	SpanTypeHTTP = "http"
)

// HTTP tags.
const (
	HTTPURL        = "http.url"
	HTTPMethod     = "http.method"
	HTTPStatusCode = "http.status_code"
)

// Network tags.
const (
	TargetHost = "out.host"
	TargetPort = "out.port"
)
