package testbackend

import (
	"context"

	"github.com/stripe/apm/trace"
)

// FlushErrorSource is a function that a test can provide. It returns
// whether flushing a batch of records should return an error or not.
type FlushErrorSource func([]*trace.SpanRecord) error

// FlushingBackendOption is a functional option for FlushingBackends.
type FlushingBackendOption func(*FlushingBackend)

// FlushErrors allows tests to provide a function that will be
// consulted on whether a flush operation should return an error.
func FlushErrors(src FlushErrorSource) FlushingBackendOption {
	return func(be *FlushingBackend) {
		be.errorSrc = src
	}
}

// FlushingBackend is a ClientBackend that collects records and, on
// flush, sends the whole batch down its channel.
type FlushingBackend struct {
	errorSrc FlushErrorSource
	batch    []*trace.SpanRecord
	flushCh  chan<- []*trace.SpanRecord
}

// FlushSync sends the batch of submitted records back.
func (be *FlushingBackend) FlushSync(ctx context.Context) error {
	if be.errorSrc != nil {
		if err := be.errorSrc(be.batch); err != nil {
			return err
		}
	}

	select {
	case be.flushCh <- be.batch:
		be.batch = []*trace.SpanRecord{}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is a no-op.
func (be *FlushingBackend) Close() error {
	return nil
}

// SendSync appends the record to the current batch.
func (be *FlushingBackend) SendSync(ctx context.Context, rec *trace.SpanRecord) error {
	be.batch = append(be.batch, rec)
	return nil
}

// NewFlushingBackend constructs a new FlushableClientBackend. The
// order of records in a batch is the order in which SendSync was
// called.
func NewFlushingBackend(ch chan<- []*trace.SpanRecord, opts ...FlushingBackendOption) trace.FlushableClientBackend {
	be := &FlushingBackend{
		flushCh: ch,
		batch:   []*trace.SpanRecord{},
	}
	for _, opt := range opts {
		opt(be)
	}
	return be
}
