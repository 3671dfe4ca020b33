package xrayhttp

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"

	"github.com/tracepipe/xray-go/xray"
)

type httpSubsegments struct {
	mu      sync.Mutex
	ctx     context.Context
	connCtx context.Context
	connSeg *xray.Segment
	dnsCtx  context.Context
	dnsSeg  *xray.Segment
	dialCtx context.Context
	dialSeg *xray.Segment
	tlsCtx  context.Context
	tlsSeg  *xray.Segment
	reqCtx  context.Context
	reqSeg  *xray.Segment
}

func (segs *httpSubsegments) GetConn(hostPort string) {
	segs.mu.Lock()
	defer segs.mu.Unlock()
	segs.connCtx, segs.connSeg = xray.BeginSubsegment(segs.ctx, "connect")
}

func (segs *httpSubsegments) GotConn(info httptrace.GotConnInfo) {
	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.connCtx != nil {
		segs.connSeg.Close()
		segs.connCtx, segs.connSeg = nil, nil
	}

	segs.reqCtx, segs.reqSeg = xray.BeginSubsegment(segs.ctx, "request")
}

func (segs *httpSubsegments) DNSStart(info httptrace.DNSStartInfo) {
	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.connCtx == nil {
		return
	}
	segs.dnsCtx, segs.dnsSeg = xray.BeginSubsegment(segs.connCtx, "dns")
}

func (segs *httpSubsegments) DNSDone(info httptrace.DNSDoneInfo) {
	type dnsDoneInfo struct {
		Addresses []string `json:"addresses"`
		Coalesced bool     `json:"coalesced"`
	}

	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.dnsCtx == nil {
		return
	}
	addresses := make([]string, 0, len(info.Addrs))
	for _, addr := range info.Addrs {
		addresses = append(addresses, addr.String())
	}
	meta := dnsDoneInfo{
		Addresses: addresses,
		Coalesced: info.Coalesced,
	}
	segs.dnsSeg.AddMetadataToNamespace("http", "dns", meta)
	segs.dnsSeg.AddError(info.Err)
	segs.dnsSeg.Close()
	segs.dnsCtx, segs.dnsSeg = nil, nil

	if info.Err != nil && segs.connCtx != nil {
		segs.connSeg.SetFault()
		segs.connSeg.Close()
		segs.connCtx, segs.connSeg = nil, nil
	}
}

func (segs *httpSubsegments) ConnectStart(network, addr string) {
	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.connCtx == nil {
		return
	}
	segs.dialCtx, segs.dialSeg = xray.BeginSubsegment(segs.connCtx, "dial")
}

func (segs *httpSubsegments) ConnectDone(network, addr string, err error) {
	type dialInfo struct {
		Network string `json:"network"`
		Address string `json:"address"`
	}

	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.dialCtx == nil {
		return
	}
	segs.dialSeg.AddMetadataToNamespace("http", "dial", dialInfo{
		Network: network,
		Address: addr,
	})
	segs.dialSeg.AddError(err)
	segs.dialSeg.Close()
	segs.dialCtx, segs.dialSeg = nil, nil

	if err != nil && segs.connCtx != nil {
		segs.connSeg.SetFault()
		segs.connSeg.Close()
		segs.connCtx, segs.connSeg = nil, nil
	}
}

func (segs *httpSubsegments) TLSHandshakeStart() {
	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.connCtx == nil {
		return
	}
	segs.tlsCtx, segs.tlsSeg = xray.BeginSubsegment(segs.connCtx, "tls")
}

func (segs *httpSubsegments) TLSHandshakeDone(state tls.ConnectionState, err error) {
	type tlsInfo struct {
		Version            string `json:"version,omitempty"`
		DidResume          bool   `json:"did_resume,omitempty"`
		NegotiatedProtocol string `json:"negotiated_protocol,omitempty"`
		CipherSuite        string `json:"cipher_suite,omitempty"`
	}

	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.tlsCtx == nil {
		return
	}
	if !segs.tlsSeg.AddError(err) {
		segs.tlsSeg.AddMetadataToNamespace("http", "tls", tlsInfo{
			Version:            tls.VersionName(state.Version),
			DidResume:          state.DidResume,
			NegotiatedProtocol: state.NegotiatedProtocol,
			CipherSuite:        tls.CipherSuiteName(state.CipherSuite),
		})
	}
	segs.tlsSeg.Close()
	segs.tlsCtx, segs.tlsSeg = nil, nil

	if err != nil && segs.connCtx != nil {
		segs.connSeg.SetFault()
		segs.connSeg.Close()
		segs.connCtx, segs.connSeg = nil, nil
	}
}

func (segs *httpSubsegments) WroteRequest(httptrace.WroteRequestInfo) {
	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.reqCtx != nil {
		segs.reqSeg.Close()
		segs.reqCtx, segs.reqSeg = nil, nil
	}
}

// cancel closes the subsegments that are still open, e.g. because the
// transport failed in the middle of a phase or the call was aborted.
func (segs *httpSubsegments) cancel() {
	segs.mu.Lock()
	defer segs.mu.Unlock()
	if segs.dnsCtx != nil {
		segs.dnsSeg.Close()
		segs.dnsCtx, segs.dnsSeg = nil, nil
	}
	if segs.dialCtx != nil {
		segs.dialSeg.Close()
		segs.dialCtx, segs.dialSeg = nil, nil
	}
	if segs.tlsCtx != nil {
		segs.tlsSeg.Close()
		segs.tlsCtx, segs.tlsSeg = nil, nil
	}
	if segs.connCtx != nil {
		segs.connSeg.Close()
		segs.connCtx, segs.connSeg = nil, nil
	}
	if segs.reqCtx != nil {
		segs.reqSeg.Close()
		segs.reqCtx, segs.reqSeg = nil, nil
	}
}

// WithClientTrace returns a new context based on the provided parent ctx
// that reports the connect, dns, dial, tls and request phases of the
// outbound calls as subsegments. The returned cancel function closes the
// subsegments that are still open; callers must call it once the call is
// finished.
func WithClientTrace(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		panic("xrayhttp: ctx must not be nil")
	}
	segs := &httpSubsegments{
		ctx: ctx,
	}
	trace := &httptrace.ClientTrace{
		GetConn:           segs.GetConn,
		GotConn:           segs.GotConn,
		DNSStart:          segs.DNSStart,
		DNSDone:           segs.DNSDone,
		ConnectStart:      segs.ConnectStart,
		ConnectDone:       segs.ConnectDone,
		TLSHandshakeStart: segs.TLSHandshakeStart,
		TLSHandshakeDone:  segs.TLSHandshakeDone,
		WroteRequest:      segs.WroteRequest,
	}
	return httptrace.WithClientTrace(ctx, trace), segs.cancel
}
