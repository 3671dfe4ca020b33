package xray

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/shogo82148/go-retry/v2"
	"github.com/tracepipe/xray-go/xray/ctxmissing"
	"github.com/tracepipe/xray-go/xray/schema"
	"github.com/tracepipe/xray-go/xray/xraylog"
)

const emitTimeout = 100 * time.Millisecond

var header = []byte(`{"format":"json","version":1}` + "\n")
var dialer = net.Dialer{
	Timeout: emitTimeout,
}

// the daemon address may not be resolvable yet while the network is
// coming up, so give dialing a few tries.
var dialPolicy = retry.Policy{
	MinDelay: 10 * time.Millisecond,
	MaxDelay: emitTimeout,
	MaxCount: 3,
}

var defaultClient = New(nil)

// Client is a client for AWS X-Ray daemon.
type Client struct {
	// the address of the AWS X-Ray daemon
	udp string

	streamingStrategy      StreamingStrategy
	contextMissingStrategy ctxmissing.Strategy
	disabled               bool

	pool bufferPool

	mu   sync.Mutex
	conn net.Conn
}

// New returns a new Client.
func New(config *Config) *Client {
	return &Client{
		udp:                    config.daemonEndpoint(),
		streamingStrategy:      config.streamingStrategy(),
		contextMissingStrategy: config.contextMissingStrategy(),
		disabled:               config.isDisabled(),
	}
}

// WithClient returns a new context that emits the segments through
// the client.
func WithClient(ctx context.Context, client *Client) context.Context {
	return context.WithValue(ctx, clientContextKey, client)
}

// contextClient returns the client of the current context,
// falling back to the default client.
func contextClient(ctx context.Context) *Client {
	if client, ok := ctx.Value(clientContextKey).(*Client); ok {
		return client
	}
	return defaultClient
}

// Emit sends the closed parts of the segment tree that seg belongs to
// to the X-Ray daemon.
func (c *Client) Emit(ctx context.Context, seg *Segment) {
	for _, data := range c.streamingStrategy.StreamSegment(seg) {
		c.emit(ctx, seg, data)
	}
}

func (c *Client) emit(ctx context.Context, seg *Segment, data *schema.Segment) {
	if data.Type == "" {
		// plugins may rewrite the root document before it is submitted.
		for _, plugin := range getPlugins() {
			plugin.HandleSegment(seg, data)
		}
	}

	buf := c.pool.Get()
	defer c.pool.Put(buf)
	buf.Write(header)
	enc := json.NewEncoder(buf)
	if err := enc.Encode(data); err != nil {
		xraylog.Errorf(ctx, "failed to encode: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()

		conn, err := retry.DoValue(emitCtx, &dialPolicy, func() (net.Conn, error) {
			return dialer.DialContext(emitCtx, "udp", c.udp)
		})
		if err != nil {
			xraylog.Errorf(ctx, "failed to dial: %v", err)
			return
		}
		c.conn = conn
	}
	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		xraylog.Errorf(ctx, "failed to write: %v", err)
		return
	}
}

func (c *Client) contextMissing(ctx context.Context, v any) {
	c.contextMissingStrategy.ContextMissing(ctx, v)
}

// Close closes the client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

type bufferPool struct {
	pool sync.Pool
}

func (p *bufferPool) Get() *bytes.Buffer {
	if buf, ok := p.pool.Get().(*bytes.Buffer); ok {
		buf.Reset()
		return buf
	}
	return new(bytes.Buffer)
}

func (p *bufferPool) Put(buf *bytes.Buffer) {
	p.pool.Put(buf)
}
