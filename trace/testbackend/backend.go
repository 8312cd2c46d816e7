// Package testbackend contains helpers to make it easier to test the
// tracing behavior of code using the trace API.
package testbackend

import (
	"context"

	"github.com/stripe/apm/trace"
)

// SendErrorSource is a function that a test can provide. It returns
// whether sending a record should return an error or not.
type SendErrorSource func(*trace.SpanRecord) error

// BackendOption is a functional option for Backends provided by this
// package.
type BackendOption func(*Backend)

// SendErrors allows tests to provide a function that will be
// consulted on whether a send operation should return an error.
func SendErrors(src SendErrorSource) BackendOption {
	return func(be *Backend) {
		be.errorSrc = src
	}
}

// Backend is a ClientBackend that sends records into a provided
// channel. It does not support flushing.
type Backend struct {
	ch       chan<- *trace.SpanRecord
	errorSrc SendErrorSource
}

// Close is a no-op.
func (be *Backend) Close() error {
	return nil
}

// SendSync sends the record into the Backend's channel.
func (be *Backend) SendSync(ctx context.Context, rec *trace.SpanRecord) error {
	if be.errorSrc != nil {
		if err := be.errorSrc(rec); err != nil {
			return err
		}
	}

	select {
	case be.ch <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewBackend returns a new trace.ClientBackend that sends records down
// a channel.
func NewBackend(ch chan<- *trace.SpanRecord, opts ...BackendOption) trace.ClientBackend {
	be := &Backend{ch: ch}
	for _, opt := range opts {
		opt(be)
	}
	return be
}
