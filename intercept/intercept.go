package intercept

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stripe/apm/config"
	"github.com/stripe/apm/ext"
	"github.com/stripe/apm/propagation"
	"github.com/stripe/apm/trace"
)

// Traceable is an operation that can be wrapped with a span.
type Traceable[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// Operation adapts a function to Traceable.
type Operation[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Execute calls op.
func (op Operation[Req, Resp]) Execute(ctx context.Context, req Req) (Resp, error) {
	return op(ctx, req)
}

// Instrumentation describes how to observe one kind of operation. Only
// SpanName is required; nil hooks are skipped.
type Instrumentation[Req, Resp any] struct {
	// SpanName is the operation name of every span, e.g.
	// "http.request".
	SpanName string
	SpanType string

	// TagRequest tags the span with what is known about the request
	// before it is sent. It may also set the span's resource.
	TagRequest func(span *trace.Span, req Req)

	// Carrier returns the request to send along with the carrier
	// (see propagation.Inject) to write trace headers into.
	// Integrations whose requests may be reused by the caller return
	// a copy of req.
	Carrier func(req Req) (Req, interface{})

	// Status returns the outcome status of a response.
	Status func(resp Resp) (int, bool)

	// StatusTag is the tag the status is recorded under. It defaults
	// to ext.HTTPStatusCode.
	StatusTag string
}

// Option configures a Decorator.
type Option func(*options)

type options struct {
	log *logrus.Entry
}

// WithLogger sets the entry instrumentation problems are logged with.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		o.log = log
	}
}

// Decorator traces calls to the Traceable it wraps.
type Decorator[Req, Resp any] struct {
	next   Traceable[Req, Resp]
	handle *config.Handle
	inst   Instrumentation[Req, Resp]
	log    *logrus.Entry
}

var _ Traceable[int, int] = &Decorator[int, int]{}

// Wrap returns a Decorator that traces calls to next according to the
// integration held by handle.
func Wrap[Req, Resp any](next Traceable[Req, Resp], handle *config.Handle, inst Instrumentation[Req, Resp], opts ...Option) *Decorator[Req, Resp] {
	o := options{log: logrus.NewEntry(logrus.StandardLogger())}
	for _, opt := range opts {
		opt(&o)
	}
	if inst.StatusTag == "" {
		inst.StatusTag = ext.HTTPStatusCode
	}
	return &Decorator[Req, Resp]{
		next:   next,
		handle: handle,
		inst:   inst,
		log:    o.log,
	}
}

// Unwrap returns the wrapped operation.
func (d *Decorator[Req, Resp]) Unwrap() Traceable[Req, Resp] {
	return d.next
}

// Execute calls the wrapped operation inside a span. When the
// integration or its tracer is disabled, the operation is called
// directly and no span is created.
func (d *Decorator[Req, Resp]) Execute(ctx context.Context, req Req) (resp Resp, err error) {
	in := d.handle.Get()
	if !in.Settings.Enabled || in.Tracer == nil || !in.Tracer.Enabled() {
		calls.WithLabelValues(in.Name, "bypassed").Inc()
		return d.next.Execute(ctx, req)
	}

	span, ctx := in.Tracer.StartSpanFromContext(ctx, d.inst.SpanName,
		trace.Service(in.Settings.ServiceName),
		trace.SpanType(d.inst.SpanType))
	defer func() {
		if r := recover(); r != nil {
			calls.WithLabelValues(in.Name, "panic").Inc()
			span.SetError(panicError(r))
			span.Finish()
			panic(r)
		}
		span.Finish()
	}()

	if d.inst.TagRequest != nil {
		d.guard(span, "tag_request", func() {
			d.inst.TagRequest(span, req)
		})
	}
	if in.Settings.DistributedTracing && d.inst.Carrier != nil {
		req = d.inject(span, req)
	}

	resp, err = d.next.Execute(ctx, req)

	if err != nil {
		calls.WithLabelValues(in.Name, "error").Inc()
		var sc ext.StatusCoder
		if errors.As(err, &sc) {
			d.tagStatus(span, in.Settings.ErrorRange, sc.StatusCode(), err)
		} else {
			span.SetError(err)
		}
		return resp, err
	}

	calls.WithLabelValues(in.Name, "ok").Inc()
	if d.inst.Status != nil {
		d.guard(span, "status", func() {
			if code, ok := d.inst.Status(resp); ok {
				d.tagStatus(span, in.Settings.ErrorRange, code, nil)
			}
		})
	}
	return resp, nil
}

// tagStatus records the outcome status and marks the span errored if
// the status is in r. cause is the failure that carried the status,
// if any.
func (d *Decorator[Req, Resp]) tagStatus(span *trace.Span, r ext.ErrorRange, code int, cause error) {
	span.SetTag(d.inst.StatusTag, strconv.Itoa(code))
	if !r.Covers(code) {
		return
	}
	if cause == nil {
		cause = &ext.StatusError{Code: code}
	}
	span.SetError(cause)
}

// inject writes the span's identifiers into the carrier of a copy of
// req. If that fails, the original request is sent without trace
// headers and the failure is tagged on the span.
func (d *Decorator[Req, Resp]) inject(span *trace.Span, req Req) Req {
	out := req
	err := d.guard(span, "carrier", func() {
		next, carrier := d.inst.Carrier(req)
		if err := propagation.Inject(span.Context(), carrier); err != nil {
			d.log.WithError(err).WithField("span", span.String()).Warn("Could not inject trace headers")
			span.SetTag(ext.PropagationError, err.Error())
			return
		}
		out = next
	})
	if err != nil {
		span.SetTag(ext.PropagationError, err.Error())
		return req
	}
	return out
}

// guard runs an instrumentation hook. A panicking hook is logged and
// reported as an error instead of reaching the caller.
func (d *Decorator[Req, Resp]) guard(span *trace.Span, hook string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("instrumentation hook %s panicked: %v", hook, r)
			d.log.WithError(err).WithField("span", span.String()).Warn("Instrumentation failed")
		}
	}()
	fn()
	return nil
}

// panicError turns a recovered panic value into the error recorded on
// the span.
func panicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.New(fmt.Sprint(r))
}
