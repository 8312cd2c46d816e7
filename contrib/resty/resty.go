// Package resty traces requests executed with go-resty.
package resty

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/stripe/apm/config"
	"github.com/stripe/apm/contrib/nethttp"
	"github.com/stripe/apm/ext"
	"github.com/stripe/apm/intercept"
	"github.com/stripe/apm/trace"
)

const (
	// IntegrationName is the name the integration's settings are
	// registered under.
	IntegrationName = "rest_client"

	// SpanName is the operation name of request spans.
	SpanName = "rest_client.request"
)

// Call is one execution of a resty request.
type Call struct {
	Request *resty.Request
	Method  string
	URL     string

	// header replaces Request.Header for the duration of the call
	// when trace headers are injected.
	header http.Header
}

// resolveURL returns the URL resty will send a request for raw to,
// applying the client's base URL to relative paths the way resty does.
func resolveURL(client *resty.Client, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || client == nil {
		return u, err
	}
	base := client.BaseURL
	if base == "" {
		base = client.HostURL
	}
	if base == "" {
		return u, nil
	}
	path := u.String()
	if len(path) > 0 && path[0] != '/' {
		path = "/" + path
	}
	return url.Parse(base + path)
}

// Instrumentation describes executions of requests built from client
// to the intercept package. Relative request URLs are resolved against
// the client's base URL for tagging. Trace headers go to a copy of the
// request's headers, which the request only carries while it executes.
func Instrumentation(client *resty.Client) intercept.Instrumentation[Call, *resty.Response] {
	return intercept.Instrumentation[Call, *resty.Response]{
		SpanName: SpanName,
		SpanType: ext.SpanTypeHTTP,
		TagRequest: func(span *trace.Span, call Call) {
			u, err := resolveURL(client, call.URL)
			if err != nil {
				nethttp.TagRequest(span, call.Method, nil)
				span.SetTag(ext.HTTPURL, call.URL)
				return
			}
			nethttp.TagRequest(span, call.Method, u)
		},
		Carrier: func(call Call) (Call, interface{}) {
			call.header = call.Request.Header.Clone()
			if call.header == nil {
				call.header = http.Header{}
			}
			return call, call.header
		},
		Status: func(resp *resty.Response) (int, bool) {
			if resp == nil || resp.RawResponse == nil {
				return 0, false
			}
			return resp.StatusCode(), true
		},
	}
}

// execute runs the call with ctx and the injected headers, leaving the
// caller's request as it found it.
func execute(ctx context.Context, call Call) (*resty.Response, error) {
	req := call.Request
	origCtx, origHeader := req.Context(), req.Header
	defer func() {
		req.SetContext(origCtx)
		req.Header = origHeader
	}()

	if call.header != nil {
		req.Header = call.header
	}
	return req.SetContext(ctx).Execute(call.Method, call.URL)
}

// Executor executes requests of one resty client inside spans.
type Executor struct {
	client *resty.Client
	op     *intercept.Decorator[Call, *resty.Response]
}

// NewExecutor returns an Executor for requests built from client,
// reporting through the integration held by handle.
func NewExecutor(client *resty.Client, handle *config.Handle, opts ...intercept.Option) *Executor {
	return &Executor{
		client: client,
		op: intercept.Wrap[Call, *resty.Response](
			intercept.Operation[Call, *resty.Response](execute), handle, Instrumentation(client), opts...),
	}
}

// R returns a new request of the executor's client.
func (e *Executor) R() *resty.Request {
	return e.client.R()
}

// Execute runs req.Execute(method, url). The span is a child of the
// span in the request's context, if any. req's context and headers are
// the same after the call as before it.
func (e *Executor) Execute(req *resty.Request, method, url string) (*resty.Response, error) {
	return e.op.Execute(req.Context(), Call{Request: req, Method: method, URL: url})
}
