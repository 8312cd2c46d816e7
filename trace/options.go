package trace

import "time"

type startConfig struct {
	service  string
	resource string
	spanType string
	parentID uint64
	traceID  uint64
	start    time.Time
	parent   *Span
}

// StartOption configures a span at creation time.
type StartOption func(*startConfig)

// Service sets the logical service name of the span. When it is left
// empty, the span inherits its parent's service on SetParent.
func Service(name string) StartOption {
	return func(c *startConfig) {
		c.service = name
	}
}

// Resource sets the resource of the span. It defaults to the span's
// name.
func Resource(resource string) StartOption {
	return func(c *startConfig) {
		c.resource = resource
	}
}

// SpanType sets the coarse category of the span, e.g. "web".
func SpanType(t string) StartOption {
	return func(c *startConfig) {
		c.spanType = t
	}
}

// ParentID sets the identifier of the span's parent. It is meant for
// parents that live in another process.
func ParentID(id uint64) StartOption {
	return func(c *startConfig) {
		c.parentID = id
	}
}

// TraceID sets the identifier of the trace the span belongs to. It
// defaults to the span's own ID, making the span a trace root.
func TraceID(id uint64) StartOption {
	return func(c *startConfig) {
		c.traceID = id
	}
}

// StartTime overrides the start timestamp of the span, for spans whose
// timing is reconstructed after the fact.
func StartTime(t time.Time) StartOption {
	return func(c *startConfig) {
		c.start = t
	}
}

// ChildOf adopts parent's trace identity (see Span.SetParent) as soon
// as the span is created. A nil parent is ignored.
func ChildOf(parent *Span) StartOption {
	return func(c *startConfig) {
		c.parent = parent
	}
}
