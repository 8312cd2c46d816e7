package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/apm/ext"
)

// Span status values.
const (
	StatusOK    int32 = 0
	StatusError int32 = 1
)

// Recorder accepts finished spans. *Tracer is the usual Recorder.
// Implementations must be safe for concurrent use: many spans finish
// at the same time.
type Recorder interface {
	Record(*Span)
}

// Span is a record of one unit of work. A Span belongs to the
// goroutine doing that work: it has no internal locking and must not
// be mutated from several goroutines at once, nor after Finish.
type Span struct {
	Name     string
	Service  string
	Resource string
	Type     string

	SpanID uint64
	// TraceID equals the SpanID of the trace's root span.
	TraceID uint64
	// ParentID is 0 for a root span.
	ParentID uint64

	Start time.Time
	// End is zero until the span is finished.
	End time.Time

	Meta map[string]string

	// Status is StatusError once an error was set.
	Status int32

	recorder Recorder
	finished bool
}

// NewSpan creates a span that will be handed to rec when it finishes.
// rec may be nil, in which case finishing the span records nothing.
// The span is not registered anywhere until it finishes.
func NewSpan(rec Recorder, name string, opts ...StartOption) *Span {
	var cfg startConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Span{
		Name:     name,
		Service:  cfg.service,
		Resource: name,
		Type:     cfg.spanType,
		SpanID:   NextID(),
		ParentID: cfg.parentID,
		Meta:     map[string]string{},
		recorder: rec,
	}
	if cfg.resource != "" {
		s.Resource = cfg.resource
	}
	s.TraceID = s.SpanID
	if cfg.traceID != 0 {
		s.TraceID = cfg.traceID
	}
	if cfg.parent != nil {
		s.SetParent(cfg.parent)
	}

	s.Start = time.Now().UTC()
	if !cfg.start.IsZero() {
		s.Start = cfg.start
	}
	return s
}

// SetTag inserts or overwrites a tag.
func (s *Span) SetTag(key, value string) {
	if s.Meta == nil {
		s.Meta = map[string]string{}
	}
	s.Meta[key] = value
}

// Tag returns the tag set under key.
func (s *Span) Tag(key string) (string, bool) {
	v, ok := s.Meta[key]
	return v, ok
}

// SetError marks the span as errored and records the error's message,
// type and stack trace, replacing any earlier error tags. A nil error
// leaves the span untouched. A typed nil (e.g. a nil *MyErr stored in
// an error) is not nil and is recorded, even if its Error method
// cannot handle a nil receiver.
func (s *Span) SetError(err error) {
	if err == nil {
		return
	}
	s.Status = StatusError

	kind := errorType(err)
	msg := errorMessage(err)
	if msg == "" {
		msg = kind
	}
	s.SetTag(ext.ErrorMsg, msg)
	s.SetTag(ext.ErrorType, kind)
	s.SetTag(ext.ErrorStack, errorStack(err))
}

// SetParent makes the span a child of parent: it takes over parent's
// trace ID, points its ParentID at parent and inherits parent's
// service unless it has its own. A nil parent turns the span back into
// a trace root. The parent is not retained.
//
// SetParent must be called right after creation, before the span is
// tagged or shared with other goroutines.
func (s *Span) SetParent(parent *Span) {
	if parent == nil {
		s.TraceID = s.SpanID
		s.ParentID = 0
		return
	}
	s.TraceID = parent.TraceID
	s.ParentID = parent.SpanID
	if s.Service == "" {
		s.Service = parent.Service
	}
}

// Finish ends the span at the current time and records it.
func (s *Span) Finish() *Span {
	return s.FinishAt(time.Now().UTC())
}

// FinishAt ends the span at the given time and hands it to its
// Recorder. Only the first call has any effect; later calls return
// the span unchanged and do not record it again.
func (s *Span) FinishAt(end time.Time) *Span {
	if s.finished {
		return s
	}
	s.finished = true
	s.End = end

	if s.recorder != nil {
		s.recorder.Record(s)
	}
	return s
}

// Finished reports whether Finish or FinishAt was called.
func (s *Span) Finished() bool {
	return s.finished
}

// Duration is the time between the span's start and end. It is -1 for
// a span that has not ended.
func (s *Span) Duration() time.Duration {
	if s.End.IsZero() {
		return -1
	}
	return s.End.Sub(s.Start)
}

// Context returns the identifiers a child of this span, local or
// remote, needs to join its trace.
func (s *Span) Context() SpanContext {
	return SpanContext{TraceID: s.TraceID, SpanID: s.SpanID}
}

// Attach returns a copy of ctx carrying the span.
func (s *Span) Attach(ctx context.Context) context.Context {
	return ContextWithSpan(ctx, s)
}

func (s *Span) String() string {
	return fmt.Sprintf("Span(name:%s,sid:%d,tid:%d,pid:%d)", s.Name, s.SpanID, s.TraceID, s.ParentID)
}

// SpanRecord converts the span into its serializable form. Start and
// Duration are only present when the span has both a start and an end
// time.
func (s *Span) SpanRecord() *SpanRecord {
	meta := make(map[string]string, len(s.Meta))
	for k, v := range s.Meta {
		meta[k] = v
	}

	rec := &SpanRecord{
		SpanID:   s.SpanID,
		ParentID: s.ParentID,
		TraceID:  s.TraceID,
		Name:     s.Name,
		Service:  s.Service,
		Resource: s.Resource,
		Type:     s.Type,
		Meta:     meta,
		Error:    s.Status,
	}
	if !s.Start.IsZero() && !s.End.IsZero() {
		start := s.Start.UnixNano()
		duration := s.End.Sub(s.Start).Nanoseconds()
		rec.Start = &start
		rec.Duration = &duration
	}
	return rec
}

// SpanContext identifies a span for propagation across process
// boundaries.
type SpanContext struct {
	TraceID uint64
	SpanID  uint64
}

type spanKey struct{}

// ContextWithSpan returns a copy of ctx carrying s. Spans started from
// the returned context become children of s.
func ContextWithSpan(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, s)
}

// SpanFromContext returns the span stored in ctx, if any.
func SpanFromContext(ctx context.Context) (*Span, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(spanKey{}).(*Span)
	return s, ok && s != nil
}
