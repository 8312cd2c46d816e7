// Package intercept wraps a single operation of an instrumented
// library with a span.
//
// An integration describes its operation as a Traceable and the
// request metadata it knows how to read as an Instrumentation. Wrap
// composes the two into a Decorator that satisfies the same Traceable
// interface. The decorator is transparent: whatever the wrapped
// operation returns, including errors and panics, reaches the caller
// unchanged.
//
// Settings are read from a config.Handle on every call, so disabling
// an integration or changing its service name takes effect on the
// next call.
package intercept
