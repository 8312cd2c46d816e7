package trace

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Tracer starts spans and records them once they finish. A Tracer is
// safe for concurrent use.
type Tracer struct {
	client   *Client
	service  string
	log      *logrus.Entry
	disabled int32
}

var _ Recorder = &Tracer{}

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithClient makes the tracer submit records to cl. A tracer without a
// client discards what it records.
func WithClient(cl *Client) TracerOption {
	return func(t *Tracer) {
		t.client = cl
	}
}

// WithServiceName sets the service used for records whose span has
// none.
func WithServiceName(name string) TracerOption {
	return func(t *Tracer) {
		t.service = name
	}
}

// WithLogger sets the entry the tracer logs dropped records with.
func WithLogger(log *logrus.Entry) TracerOption {
	return func(t *Tracer) {
		t.log = log
	}
}

// NewTracer returns an enabled Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	t := &Tracer{
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trace starts a span that the tracer records when it finishes.
func (t *Tracer) Trace(name string, opts ...StartOption) *Span {
	return NewSpan(t, name, opts...)
}

// StartSpanFromContext starts a span that is a child of the span in
// ctx, if there is one, and returns it along with a context carrying
// the new span.
func (t *Tracer) StartSpanFromContext(ctx context.Context, name string, opts ...StartOption) (*Span, context.Context) {
	if parent, ok := SpanFromContext(ctx); ok {
		opts = append([]StartOption{ChildOf(parent)}, opts...)
	}
	span := t.Trace(name, opts...)
	return span, span.Attach(ctx)
}

// Record submits a finished span to the tracer's client. It never
// blocks: if the client is saturated or closed, the record is dropped.
func (t *Tracer) Record(s *Span) {
	if !t.Enabled() {
		recordsDropped.WithLabelValues("disabled").Inc()
		return
	}
	rec := s.SpanRecord()
	if rec.Service == "" {
		rec.Service = t.service
	}

	err := Record(t.client, rec, nil)
	switch err {
	case nil:
	case ErrNoClient:
		recordsDropped.WithLabelValues("no_client").Inc()
	case ErrClientClosed:
		t.log.WithField("span_id", rec.SpanID).Debug("Dropping span record finished after client shutdown")
	default:
		t.log.WithError(err).WithFields(logrus.Fields{
			"name":     rec.Name,
			"trace_id": rec.TraceID,
			"span_id":  rec.SpanID,
		}).Warn("Dropping span record")
	}
}

// Enabled reports whether the tracer records spans. Integrations skip
// instrumentation entirely while their tracer is disabled.
func (t *Tracer) Enabled() bool {
	return atomic.LoadInt32(&t.disabled) == 0
}

// SetEnabled turns recording on or off.
func (t *Tracer) SetEnabled(enabled bool) {
	var v int32
	if !enabled {
		v = 1
	}
	atomic.StoreInt32(&t.disabled, v)
}

// Flush waits until the tracer's client has flushed its backend.
func (t *Tracer) Flush() error {
	if t.client == nil {
		return nil
	}
	return Flush(t.client)
}
