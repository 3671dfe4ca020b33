package xrayhttp

import (
	"net"
	"net/http"
	"strings"

	forwardedheader "github.com/shogo82148/forwarded-header"
	"github.com/tracepipe/xray-go/xray"
	"github.com/tracepipe/xray-go/xray/schema"
)

// TracingNamer is the interface for naming service node.
type TracingNamer interface {
	TracingName(r *http.Request) string
}

// FixedTracingNamer records the fixed name of service node.
type FixedTracingNamer string

// TracingName implements [TracingNamer].
func (tn FixedTracingNamer) TracingName(r *http.Request) string {
	return string(tn)
}

// DynamicTracingNamer chooses names for segments generated
// for incoming requests based on the Host header of the request.
// If the Host header does not match the RecognizedHosts pattern,
// the FallbackName is used.
type DynamicTracingNamer struct {
	// RecognizedHosts is a comma separated list of the host names.
	// The wildcard "*" recognizes any host.
	RecognizedHosts string

	// FallbackName is used when the Host header does not match.
	FallbackName string
}

// TracingName implements [TracingNamer].
func (tn DynamicTracingNamer) TracingName(r *http.Request) string {
	for _, host := range strings.Split(tn.RecognizedHosts, ",") {
		host = strings.TrimSpace(host)
		if host == "*" || strings.EqualFold(host, r.Host) {
			return r.Host
		}
	}
	return tn.FallbackName
}

type httpTracer struct {
	tn TracingNamer
	h  http.Handler
}

// Handler wraps the provided http handler.
// The wrapped handler begins a segment for each incoming request,
// continuing the trace described by its X-Amzn-Trace-Id header,
// and collects the information of the request and the response.
func Handler(tn TracingNamer, h http.Handler) http.Handler {
	return &httpTracer{
		tn: tn,
		h:  h,
	}
}

func (tracer *httpTracer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := tracer.tn.TracingName(r)
	header := xray.ParseTraceHeader(r.Header.Get(xray.TraceIDHeaderKey))
	ctx, seg := xray.NewSegmentFromHeader(r.Context(), name, r, header)
	defer seg.Close()
	r = r.WithContext(ctx)

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	requestInfo := &schema.HTTPRequest{
		Method:    r.Method,
		URL:       scheme + "://" + r.Host + r.URL.Path,
		UserAgent: r.UserAgent(),
	}
	requestInfo.ClientIP, requestInfo.XForwardedFor = clientIP(r)
	seg.SetHTTPRequest(requestInfo)

	rw := &serverResponseTracer{rw: w}
	tracer.h.ServeHTTP(wrap(rw), r)

	responseInfo := &schema.HTTPResponse{
		Status:        rw.status,
		ContentLength: rw.size,
	}
	seg.SetHTTPResponse(responseInfo)
	if rw.status >= 400 && rw.status < 500 {
		seg.SetError()
	}
	if rw.status == http.StatusTooManyRequests {
		seg.SetThrottle()
	}
	if rw.status >= 500 && rw.status < 600 {
		seg.SetFault()
	}
}

// clientIP returns the IP address of the requester. It reports whether the
// address was read from a forwarding header, which could have been forged.
func clientIP(r *http.Request) (string, bool) {
	if parsed, err := forwardedheader.Parse(r.Header.Values("Forwarded")); err == nil && len(parsed) > 0 {
		if ip := parsed[0].For.IP; ip.IsValid() {
			return ip.String(), true
		}
	}
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		ip, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(ip), true
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr, false
	}
	return ip, false
}

type serverResponseTracer struct {
	rw     http.ResponseWriter
	status int
	size   int64
}

func (rw *serverResponseTracer) Header() http.Header {
	return rw.rw.Header()
}

func (rw *serverResponseTracer) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.rw.Write(b)
	rw.size += int64(n)
	return n, err
}

func (rw *serverResponseTracer) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.rw.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the original response writer.
func (rw *serverResponseTracer) Unwrap() http.ResponseWriter {
	return rw.rw
}

func (rw *serverResponseTracer) Flush() {
	if f, ok := rw.rw.(http.Flusher); ok {
		f.Flush()
	}
}
