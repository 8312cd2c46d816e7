//go:generate msgp -marshal=false -tests=false -o=record_gen.go

package trace

import (
	"github.com/tinylib/msgp/msgp"
)

var (
	_ msgp.Encodable = (*SpanRecord)(nil)
	_ msgp.Decodable = (*SpanRecord)(nil)
	_ msgp.Encodable = (RecordList)(nil)
	_ msgp.Decodable = (*RecordList)(nil)
	_ msgp.Encodable = (TraceList)(nil)
	_ msgp.Decodable = (*TraceList)(nil)
)

// SpanRecord is the serializable form of a finished Span, in the
// layout trace agents accept. Start (nanoseconds since the epoch) and
// Duration (nanoseconds) are nil for spans that were never timed, so
// that "not timed" and "zero duration" stay distinguishable.
type SpanRecord struct {
	SpanID   uint64            `json:"span_id" msg:"span_id"`
	ParentID uint64            `json:"parent_id" msg:"parent_id"`
	TraceID  uint64            `json:"trace_id" msg:"trace_id"`
	Name     string            `json:"name" msg:"name"`
	Service  string            `json:"service" msg:"service"`
	Resource string            `json:"resource" msg:"resource"`
	Type     string            `json:"type" msg:"type"`
	Meta     map[string]string `json:"meta" msg:"meta"`
	Error    int32             `json:"error" msg:"error"`
	Start    *int64            `json:"start,omitempty" msg:"start,omitempty"`
	Duration *int64            `json:"duration,omitempty" msg:"duration,omitempty"`
}

// RecordList is a msgpack array of span records, normally all the
// spans of one trace.
type RecordList []*SpanRecord

// TraceList is the payload of a trace agent submission: an array of
// traces, each an array of spans.
type TraceList []RecordList

// GroupByTrace splits records into one RecordList per trace ID,
// keeping the order in which traces first appear.
func GroupByTrace(records []*SpanRecord) TraceList {
	index := map[uint64]int{}
	var traces TraceList
	for _, r := range records {
		i, ok := index[r.TraceID]
		if !ok {
			i = len(traces)
			index[r.TraceID] = i
			traces = append(traces, nil)
		}
		traces[i] = append(traces[i], r)
	}
	return traces
}
