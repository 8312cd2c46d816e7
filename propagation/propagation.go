// Package propagation carries trace identifiers across process
// boundaries in key-value carriers such as HTTP headers.
//
// Inject writes the Datadog header names. Extract understands those
// and several other header groups, tried in the order of HeaderFormats;
// header names are matched case-insensitively.
package propagation

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/stripe/apm/trace"
)

// Header names written by Inject.
const (
	HTTPHeaderTraceID  = "x-datadog-trace-id"
	HTTPHeaderParentID = "x-datadog-parent-id"
)

// HeaderGroup lists the names of headers that one tracing system uses
// for trace identifiers.
type HeaderGroup struct {
	TraceID string
	SpanID  string
}

// HeaderFormats are the header groups Extract tries, in order, until
// one parses.
var HeaderFormats = []HeaderGroup{
	{
		TraceID: HTTPHeaderTraceID,
		SpanID:  HTTPHeaderParentID,
	},
	// Envoy sits between services and will most likely be the
	// nearest parent.
	{
		TraceID: "x-request-id",
		SpanID:  "x-client-trace-id",
	},
	// OpenTracing
	{
		TraceID: "Trace-Id",
		SpanID:  "Span-Id",
	},
	// Veneur
	{
		TraceID: "Traceid",
		SpanID:  "Spanid",
	},
}

var (
	// ErrInvalidCarrier is returned when the carrier is neither an
	// opentracing TextMap nor an http.Header.
	ErrInvalidCarrier = errors.New("invalid carrier")

	// ErrInvalidSpanContext is returned when injecting a context
	// without trace identifiers.
	ErrInvalidSpanContext = errors.New("invalid span context")

	// ErrSpanContextNotFound is returned by Extract when no header
	// group in the carrier holds valid identifiers.
	ErrSpanContextNotFound = errors.New("span context not found")
)

// ErrContractViolation is returned when a carrier panics.
type ErrContractViolation struct {
	details interface{}
}

func (e ErrContractViolation) Error() string {
	return fmt.Sprintf("Contract violation: %#v", e.details)
}

// Inject writes the trace identifiers of ctx into carrier, which must
// be an opentracing.TextMapWriter or an http.Header. The span ID is
// written as the parent ID that the receiving side will use.
func Inject(ctx trace.SpanContext, carrier interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrContractViolation{r}
		}
	}()

	w, ok := writer(carrier)
	if !ok {
		return ErrInvalidCarrier
	}
	if ctx.TraceID == 0 || ctx.SpanID == 0 {
		return ErrInvalidSpanContext
	}
	w.Set(HTTPHeaderTraceID, strconv.FormatUint(ctx.TraceID, 10))
	w.Set(HTTPHeaderParentID, strconv.FormatUint(ctx.SpanID, 10))
	return nil
}

// Extract reads trace identifiers from carrier, an
// opentracing.TextMapReader or an http.Header. The SpanID of the
// returned context is the remote parent's span ID.
func Extract(carrier interface{}) (ctx trace.SpanContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrContractViolation{r}
		}
	}()

	tm, ok := reader(carrier)
	if !ok {
		return trace.SpanContext{}, ErrInvalidCarrier
	}
	for _, headers := range HeaderFormats {
		traceID, err1 := strconv.ParseUint(textMapReaderGet(tm, headers.TraceID), 10, 64)
		spanID, err2 := strconv.ParseUint(textMapReaderGet(tm, headers.SpanID), 10, 64)
		if err1 == nil && err2 == nil && traceID != 0 {
			return trace.SpanContext{TraceID: traceID, SpanID: spanID}, nil
		}
	}
	return trace.SpanContext{}, ErrSpanContextNotFound
}

// ChildOf returns start options that make a new span a child of the
// remote span described by ctx.
func ChildOf(ctx trace.SpanContext) []trace.StartOption {
	return []trace.StartOption{trace.TraceID(ctx.TraceID), trace.ParentID(ctx.SpanID)}
}

func writer(carrier interface{}) (opentracing.TextMapWriter, bool) {
	switch c := carrier.(type) {
	case http.Header:
		return opentracing.HTTPHeadersCarrier(c), true
	case opentracing.TextMapWriter:
		return c, true
	}
	return nil, false
}

func reader(carrier interface{}) (opentracing.TextMapReader, bool) {
	switch c := carrier.(type) {
	case http.Header:
		return opentracing.HTTPHeadersCarrier(c), true
	case opentracing.TextMapReader:
		return c, true
	}
	return nil, false
}

var errFound = errors.New("found")

func textMapReaderGet(tmr opentracing.TextMapReader, key string) (value string) {
	_ = tmr.ForeachKey(func(k, v string) error {
		if strings.EqualFold(key, k) {
			value = v
			// terminate early by returning an error
			return errFound
		}
		return nil
	})
	return value
}
