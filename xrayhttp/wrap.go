package xrayhttp

import (
	"bufio"
	"net"
	"net/http"
)

type rwUnwrapper interface {
	Unwrap() http.ResponseWriter
}

func (rw *serverResponseTracer) CloseNotify() <-chan bool {
	return rw.rw.(http.CloseNotifier).CloseNotify()
}

func (rw *serverResponseTracer) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return rw.rw.(http.Hijacker).Hijack()
}

func (rw *serverResponseTracer) Push(target string, opts *http.PushOptions) error {
	return rw.rw.(http.Pusher).Push(target, opts)
}

// wrap hides the optional interfaces that the original response writer
// does not implement, so that interface type assertions by the wrapped
// handler see exactly what they would have seen without tracing.
func wrap(rw *serverResponseTracer) http.ResponseWriter {
	_, flusher := rw.rw.(http.Flusher)
	_, closeNotifier := rw.rw.(http.CloseNotifier)
	_, hijacker := rw.rw.(http.Hijacker)
	_, pusher := rw.rw.(http.Pusher)
	switch {
	case !flusher && !closeNotifier && !hijacker && !pusher:
		return struct {
			http.ResponseWriter
			rwUnwrapper
		}{rw, rw}
	case flusher && !closeNotifier && !hijacker && !pusher:
		return struct {
			http.ResponseWriter
			http.Flusher
			rwUnwrapper
		}{rw, rw, rw}
	case !flusher && closeNotifier && !hijacker && !pusher:
		return struct {
			http.ResponseWriter
			http.CloseNotifier
			rwUnwrapper
		}{rw, rw, rw}
	case flusher && closeNotifier && !hijacker && !pusher:
		return struct {
			http.ResponseWriter
			http.Flusher
			http.CloseNotifier
			rwUnwrapper
		}{rw, rw, rw, rw}
	case !flusher && !closeNotifier && hijacker && !pusher:
		return struct {
			http.ResponseWriter
			http.Hijacker
			rwUnwrapper
		}{rw, rw, rw}
	case flusher && !closeNotifier && hijacker && !pusher:
		return struct {
			http.ResponseWriter
			http.Flusher
			http.Hijacker
			rwUnwrapper
		}{rw, rw, rw, rw}
	case !flusher && closeNotifier && hijacker && !pusher:
		return struct {
			http.ResponseWriter
			http.CloseNotifier
			http.Hijacker
			rwUnwrapper
		}{rw, rw, rw, rw}
	case flusher && closeNotifier && hijacker && !pusher:
		return struct {
			http.ResponseWriter
			http.Flusher
			http.CloseNotifier
			http.Hijacker
			rwUnwrapper
		}{rw, rw, rw, rw, rw}
	case !flusher && !closeNotifier && !hijacker && pusher:
		return struct {
			http.ResponseWriter
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw}
	case flusher && !closeNotifier && !hijacker && pusher:
		return struct {
			http.ResponseWriter
			http.Flusher
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw, rw}
	case !flusher && closeNotifier && !hijacker && pusher:
		return struct {
			http.ResponseWriter
			http.CloseNotifier
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw, rw}
	case flusher && closeNotifier && !hijacker && pusher:
		return struct {
			http.ResponseWriter
			http.Flusher
			http.CloseNotifier
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw, rw, rw}
	case !flusher && !closeNotifier && hijacker && pusher:
		return struct {
			http.ResponseWriter
			http.Hijacker
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw, rw}
	case flusher && !closeNotifier && hijacker && pusher:
		return struct {
			http.ResponseWriter
			http.Flusher
			http.Hijacker
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw, rw, rw}
	case !flusher && closeNotifier && hijacker && pusher:
		return struct {
			http.ResponseWriter
			http.CloseNotifier
			http.Hijacker
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw, rw, rw}
	default:
		return struct {
			http.ResponseWriter
			http.Flusher
			http.CloseNotifier
			http.Hijacker
			http.Pusher
			rwUnwrapper
		}{rw, rw, rw, rw, rw, rw}
	}
}
