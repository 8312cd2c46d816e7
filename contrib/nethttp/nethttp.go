// Package nethttp traces outgoing requests made with net/http.
package nethttp

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/stripe/apm/config"
	"github.com/stripe/apm/ext"
	"github.com/stripe/apm/intercept"
	"github.com/stripe/apm/trace"
)

const (
	// IntegrationName is the name the integration's settings are
	// registered under.
	IntegrationName = "http"

	// SpanName is the operation name of request spans.
	SpanName = "http.request"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// TagRequest tags span with the request metadata known before the
// request is sent: method, path, host and port. The resource is the
// upper-cased method.
func TagRequest(span *trace.Span, method string, u *url.URL) {
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}
	span.Resource = method
	span.SetTag(ext.HTTPMethod, method)
	if u == nil {
		return
	}
	span.SetTag(ext.HTTPURL, u.Path)
	if host := u.Hostname(); host != "" {
		span.SetTag(ext.TargetHost, host)
	}
	port := u.Port()
	if port == "" {
		port = defaultPorts[strings.ToLower(u.Scheme)]
	}
	if port != "" {
		span.SetTag(ext.TargetPort, port)
	}
}

// Instrumentation describes http.Request round trips to the
// intercept package. Trace headers are written to a clone of the
// request, never to the caller's.
func Instrumentation() intercept.Instrumentation[*http.Request, *http.Response] {
	return intercept.Instrumentation[*http.Request, *http.Response]{
		SpanName: SpanName,
		SpanType: ext.SpanTypeHTTP,
		TagRequest: func(span *trace.Span, req *http.Request) {
			TagRequest(span, req.Method, req.URL)
		},
		Carrier: func(req *http.Request) (*http.Request, interface{}) {
			clone := req.Clone(req.Context())
			if clone.Header == nil {
				clone.Header = http.Header{}
			}
			return clone, clone.Header
		},
		Status: func(resp *http.Response) (int, bool) {
			if resp == nil {
				return 0, false
			}
			return resp.StatusCode, true
		},
	}
}

// RoundTripper traces every round trip of the RoundTripper it wraps.
type RoundTripper struct {
	inner http.RoundTripper
	op    *intercept.Decorator[*http.Request, *http.Response]
}

var _ http.RoundTripper = &RoundTripper{}

// NewRoundTripper wraps inner (http.DefaultTransport if nil) with the
// integration held by handle.
func NewRoundTripper(inner http.RoundTripper, handle *config.Handle, opts ...intercept.Option) *RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	next := intercept.Operation[*http.Request, *http.Response](
		func(ctx context.Context, req *http.Request) (*http.Response, error) {
			return inner.RoundTrip(req.WithContext(ctx))
		})
	return &RoundTripper{
		inner: inner,
		op:    intercept.Wrap[*http.Request, *http.Response](next, handle, Instrumentation(), opts...),
	}
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.op.Execute(req.Context(), req)
}

// Unwrap returns the wrapped RoundTripper.
func (rt *RoundTripper) Unwrap() http.RoundTripper {
	return rt.inner
}

// WrapClient returns a copy of c (http.DefaultClient if nil) whose
// transport is traced.
func WrapClient(c *http.Client, handle *config.Handle, opts ...intercept.Option) *http.Client {
	if c == nil {
		c = http.DefaultClient
	}
	wrapped := *c
	wrapped.Transport = NewRoundTripper(c.Transport, handle, opts...)
	return &wrapped
}
