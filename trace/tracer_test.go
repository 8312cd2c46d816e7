package trace

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureBackend keeps every record it receives.
type captureBackend struct {
	records chan *SpanRecord
}

func (c *captureBackend) Close() error { return nil }

func (c *captureBackend) SendSync(ctx context.Context, rec *SpanRecord) error {
	c.records <- rec
	return nil
}

func newCaptureTracer(t *testing.T, opts ...TracerOption) (*Tracer, chan *SpanRecord) {
	be := &captureBackend{records: make(chan *SpanRecord, 16)}
	cl, err := NewBackendClient(be, Capacity(16))
	require.NoError(t, err)
	t.Cleanup(func() { cl.Close() })
	return NewTracer(append([]TracerOption{WithClient(cl)}, opts...)...), be.records
}

func TestTracerRecordsFinishedSpans(t *testing.T) {
	tracer, records := newCaptureTracer(t, WithServiceName("default-srv"))

	span := tracer.Trace("db.query", SpanType("sql"))
	span.SetTag("db.statement", "SELECT 1")
	span.Finish()
	span.Finish()

	rec := <-records
	assert.Equal(t, "db.query", rec.Name)
	assert.Equal(t, "default-srv", rec.Service)
	assert.Equal(t, "sql", rec.Type)
	assert.Equal(t, "SELECT 1", rec.Meta["db.statement"])
	assert.Len(t, records, 0, "a span is recorded once")
}

func TestTracerKeepsSpanService(t *testing.T) {
	tracer, records := newCaptureTracer(t, WithServiceName("default-srv"))

	tracer.Trace("own.service", Service("mine")).Finish()
	assert.Equal(t, "mine", (<-records).Service)
}

func TestStartSpanFromContext(t *testing.T) {
	tracer, records := newCaptureTracer(t)

	root, ctx := tracer.StartSpanFromContext(context.Background(), "root", Service("frontend"))
	child, ctx := tracer.StartSpanFromContext(ctx, "child")
	grandchild, _ := tracer.StartSpanFromContext(ctx, "grandchild")

	assert.Equal(t, root.SpanID, root.TraceID)
	assert.Equal(t, uint64(0), root.ParentID)
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, root.TraceID, grandchild.TraceID)
	assert.Equal(t, child.SpanID, grandchild.ParentID)
	assert.Equal(t, "frontend", grandchild.Service)

	found, ok := SpanFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, child, found)

	grandchild.Finish()
	child.Finish()
	root.Finish()
	assert.Equal(t, "grandchild", (<-records).Name)
	assert.Equal(t, "child", (<-records).Name)
	assert.Equal(t, "root", (<-records).Name)
}

func TestDisabledTracer(t *testing.T) {
	tracer, records := newCaptureTracer(t)
	assert.True(t, tracer.Enabled())

	tracer.SetEnabled(false)
	assert.False(t, tracer.Enabled())
	tracer.Trace("dropped").Finish()

	tracer.SetEnabled(true)
	tracer.Trace("kept").Finish()
	assert.Equal(t, "kept", (<-records).Name)
	assert.Len(t, records, 0)
}

func TestTracerWithoutClient(t *testing.T) {
	tracer := NewTracer()
	span := tracer.Trace("nowhere")
	span.Finish()
	assert.True(t, span.Finished())
	assert.NoError(t, tracer.Flush())
}

func TestTracerLogsDroppedRecords(t *testing.T) {
	logger, hook := test.NewNullLogger()
	be := &blockingBackend{release: make(chan struct{})}
	cl, err := NewBackendClient(be, Capacity(1))
	require.NoError(t, err)
	tracer := NewTracer(WithClient(cl), WithLogger(logrus.NewEntry(logger)))

	// occupy the worker and then the channel, so that the last
	// record has to be dropped
	for i := 0; i < 8; i++ {
		tracer.Trace("flood").Finish()
	}
	close(be.release)
	require.NoError(t, cl.Close())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, ErrWouldBlock, entry.Data[logrus.ErrorKey])
	assert.Equal(t, "flood", entry.Data["name"])
}

func TestFinishAfterClientClose(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	be := &captureBackend{records: make(chan *SpanRecord, 1)}
	cl, err := NewBackendClient(be, Capacity(4))
	require.NoError(t, err)
	tracer := NewTracer(WithClient(cl), WithLogger(logrus.NewEntry(logger)))

	span := tracer.Trace("in.flight")
	require.NoError(t, cl.Close())

	assert.NotPanics(t, func() { span.Finish() })
	assert.True(t, span.Finished())
	assert.Len(t, be.records, 0)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, ErrClientClosed, tracer.Flush())
}
