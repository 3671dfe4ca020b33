package xrayhttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"syscall"

	"github.com/tracepipe/xray-go/xray"
	"github.com/tracepipe/xray-go/xray/schema"
)

// the segment name used when neither the request nor its URL carries a host.
const unknownHostName = "Unknown host"

// SubsegmentCallback is called once per traced call, after the response body
// has been fully consumed or the call has failed. Exactly one of resp and err
// is populated. The subsegment seg is still open and is the current segment
// of ctx, so calls issued inside the callback are traced as its children.
type SubsegmentCallback func(ctx context.Context, seg *xray.Segment, req *http.Request, resp *http.Response, err error)

// Option configures the behavior of [Client] and [RoundTripper].
type Option func(*roundtripper)

// WithSubsegmentCallback sets the callback invoked with the outcome of
// every traced call.
func WithSubsegmentCallback(callback SubsegmentCallback) Option {
	return func(rt *roundtripper) {
		rt.callback = callback
	}
}

// WithDownstreamTracing marks the outgoing calls as targeting another traced
// service. The subsegments record the traced flag into their http.request
// section.
func WithDownstreamTracing(enabled bool) Option {
	return func(rt *roundtripper) {
		rt.downstreamTracing = enabled
	}
}

// WithManualContext declares that the caller supplies the parent segment
// explicitly with [xray.WithSegment] instead of relying on a segment begun
// upstream. It only changes the diagnostics reported when no parent can be
// resolved; a request without a parent always passes through untraced.
func WithManualContext() Option {
	return func(rt *roundtripper) {
		rt.manualContext = true
	}
}

// Client creates a shallow copy of the provided http client,
// defaulting to http.DefaultClient, with roundtripper wrapped
// with xrayhttp.RoundTripper.
func Client(client *http.Client, opts ...Option) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}
	ret := *client
	ret.Transport = RoundTripper(ret.Transport, opts...)
	return &ret
}

// RoundTripper wraps the provided http roundtripper with tracing of the
// outbound calls, and adds the trace header to the outbound requests.
// Wrapping an already wrapped roundtripper returns it unchanged.
func RoundTripper(rt http.RoundTripper, opts ...Option) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if _, ok := rt.(*roundtripper); ok {
		// X-Ray SDK is already installed
		return rt
	}
	ret := &roundtripper{
		Base: rt,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type roundtripper struct {
	Base              http.RoundTripper
	callback          SubsegmentCallback
	downstreamTracing bool
	manualContext     bool
}

func (rt *roundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(xray.TraceIDHeaderKey) != "" {
		// the request is already instrumented by an upstream wrapper.
		return rt.Base.RoundTrip(req)
	}

	ctx := req.Context()
	parent := xray.ContextSegment(ctx)
	if parent == nil {
		if rt.manualContext {
			xray.ContextMissing(ctx, "cannot resolve the parent segment: attach one to the request context with xray.WithSegment when using manual context mode")
		} else {
			xray.ContextMissing(ctx, "cannot resolve the parent segment from the request context: begin tracing upstream with xray.BeginSegment")
		}
		return rt.Base.RoundTrip(req)
	}

	host := req.Host
	if host == "" {
		if h := req.URL.Host; h != "" {
			host = h
		} else {
			host = unknownHostName
		}
	}

	var seg *xray.Segment
	if parent.Sampled() {
		ctx, seg = xray.BeginSubsegment(ctx, host)
	} else {
		ctx, seg = xray.BeginSubsegmentWithoutSampling(ctx, host)
	}
	seg.SetNamespace("remote")
	seg.SetHTTPRequest(&schema.HTTPRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Traced: rt.downstreamTracing,
	})

	// set trace hooks
	ctx, cancelTrace := WithClientTrace(ctx)

	// the caller's request is never mutated; the trace header goes onto a clone.
	req = req.Clone(ctx)
	if !parent.Noop() {
		req.Header.Set(xray.TraceIDHeaderKey, xray.DownstreamHeader(ctx).String())
	}

	c := &completion{
		rt:     rt,
		ctx:    ctx,
		cancel: cancelTrace,
		seg:    seg,
		req:    req,
	}
	resp, err := rt.Base.RoundTrip(req)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	responseInfo := &schema.HTTPResponse{
		Status: resp.StatusCode,
	}
	if length, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
		responseInfo.ContentLength = length
	}
	seg.SetHTTPResponse(responseInfo)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		seg.SetError()
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		seg.SetThrottle()
	}
	if resp.StatusCode >= 500 && resp.StatusCode < 600 {
		seg.SetFault()
	}

	if resp.StatusCode == http.StatusSwitchingProtocols {
		// the connection was hijacked for another protocol;
		// there is no body to wait for.
		c.succeed(resp)
		return resp, nil
	}
	resp.Body = &clientResponseTracer{
		body: resp.Body,
		resp: resp,
		c:    c,
	}
	return resp, nil
}

// completion closes the subsegment of a call exactly once,
// either with a consumed response or with an error.
type completion struct {
	once   sync.Once
	rt     *roundtripper
	ctx    context.Context
	cancel context.CancelFunc
	seg    *xray.Segment
	req    *http.Request
}

func (c *completion) succeed(resp *http.Response) {
	c.once.Do(func() {
		c.cancel()
		if callback := c.rt.callback; callback != nil {
			callback(c.ctx, c.seg, c.req, resp, nil)
		}
		c.seg.Close()
	})
}

func (c *completion) fail(err error) {
	c.once.Do(func() {
		c.cancel()
		if callback := c.rt.callback; callback != nil {
			callback(c.ctx, c.seg, c.req, nil, err)
		}
		if c.seg.HasHTTPResponse() {
			// the response status was already received, so the failure
			// originated on the downstream side of the connection.
			c.seg.AddRemoteError(err)
		} else {
			c.seg.AddError(err)
			c.seg.AddMetadataToNamespace("http", "reached_downstream", !errors.Is(err, syscall.ECONNREFUSED))
		}
		c.seg.Close()
	})
}

// clientResponseTracer waits for the response body to be fully consumed,
// and then closes the subsegment of the call.
type clientResponseTracer struct {
	mu   sync.Mutex
	body io.ReadCloser
	resp *http.Response
	c    *completion
}

func (r *clientResponseTracer) Read(b []byte) (int, error) {
	r.mu.Lock()
	body := r.body
	r.mu.Unlock()
	if body == nil {
		return 0, io.EOF
	}

	n, err := body.Read(b)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		r.c.succeed(r.resp)
	default:
		r.c.fail(err)
	}
	return n, err
}

func (r *clientResponseTracer) Close() error {
	r.mu.Lock()
	body := r.body
	r.body = nil
	r.mu.Unlock()

	var err error
	if body != nil {
		err = body.Close()
	}
	r.c.succeed(r.resp)
	return err
}
