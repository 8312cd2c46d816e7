// Package trace provides the span model of the APM client and the
// machinery that ships finished spans to a collector.
//
// Spans
//
// A Span represents one unit of work: it has a start and an end time,
// a name, a service and resource, tags, and an error status. Spans
// that share a trace ID form a trace; a span whose ParentID is zero is
// the root of its trace, and its TraceID equals its own SpanID.
//
// Spans are normally started from a Tracer:
//
//   span, ctx := tracer.StartSpanFromContext(ctx, "db.query", trace.Service("users-db"))
//   defer span.Finish()
//
// A Span belongs to the goroutine doing the work it describes. It is
// not safe for concurrent mutation, and it must not be touched after
// Finish. Finishing a span twice records it once.
//
// Errors
//
// SetError marks a span as errored and stores the error's message,
// its Go type and a stack trace in the error.msg, error.type and
// error.stack tags. Errors created with github.com/pkg/errors report
// the stack they were created at; other errors report the stack of
// the SetError call.
//
// Recording
//
// When a span finishes it is handed to its Recorder, usually the
// Tracer that started it. The Tracer converts it to a SpanRecord and
// submits it to a Client without blocking. The Client owns a single
// goroutine that feeds records to a ClientBackend:
//
//   udp://host:port           one msgpack document per datagram
//   unix:///path, tcp://...   framed msgpack on a stream (see package protocol)
//   http://host:port          batched msgpack trace lists POSTed to a trace agent
//
// Tests can use NewBackendClient with the backends in package
// testbackend to observe what gets recorded.
package trace
