package xray

import (
	"strings"
	"unicode"

	"github.com/tracepipe/xray-go/internal/envconfig"
	"github.com/tracepipe/xray-go/xray/ctxmissing"
)

// Config is a configure for connecting AWS X-Ray daemon
type Config struct {
	// DaemonAddress is the address for connecting AWS X-Ray daemon.
	// It overwrites the address from AWS_XRAY_DAEMON_ADDRESS environment value.
	// By default, the SDK sends trace data to 127.0.0.1:2000.
	// The format is "address:port" or "udp:address:port".
	DaemonAddress string

	// StreamingStrategy decides when the collected segments are
	// streamed to the daemon.
	StreamingStrategy StreamingStrategy

	// ContextMissingStrategy handles the calls that have no segment in
	// their context. It overwrites the strategy from
	// AWS_XRAY_CONTEXT_MISSING environment value.
	ContextMissingStrategy ctxmissing.Strategy

	// Disabled turns the SDK into a no-op: every segment handed out is a
	// placeholder that is never emitted and never propagates the trace
	// header. The environment value AWS_XRAY_SDK_DISABLED also disables
	// the SDK.
	Disabled bool
}

func (c *Config) daemonEndpoint() string {
	var addr string
	if c != nil && c.DaemonAddress != "" {
		addr = c.DaemonAddress
	} else {
		addr = envconfig.Get().DaemonAddress
	}

	endpoint := "127.0.0.1:2000"
	for {
		// split by `\s+`
		addr = strings.TrimSpace(addr)
		if addr == "" {
			break
		}
		v := addr
		if idx := strings.IndexFunc(addr, unicode.IsSpace); idx >= 0 {
			v = addr[:idx]
			addr = addr[idx:]
		} else {
			addr = ""
		}

		switch {
		case strings.HasPrefix(v, "udp:"):
			endpoint = v[len("udp:"):]
		case strings.HasPrefix(v, "tcp:"):
			// the TCP endpoint was used for polling sampling rules,
			// which this SDK does not implement.
		default:
			endpoint = v
		}
	}
	return endpoint
}

func (c *Config) streamingStrategy() StreamingStrategy {
	if c != nil && c.StreamingStrategy != nil {
		return c.StreamingStrategy
	}
	return NewStreamingStrategyLimitSubsegment(20)
}

func (c *Config) contextMissingStrategy() ctxmissing.Strategy {
	if c != nil && c.ContextMissingStrategy != nil {
		return c.ContextMissingStrategy
	}
	switch strings.ToUpper(envconfig.Get().ContextMissing) {
	case "IGNORE_ERROR":
		return ctxmissing.NewIgnoreStrategy()
	case "RUNTIME_ERROR":
		return ctxmissing.NewRuntimeErrorStrategy()
	}
	return ctxmissing.NewLogErrorStrategy()
}

func (c *Config) isDisabled() bool {
	if c != nil && c.Disabled {
		return true
	}
	return envconfig.Get().SDKDisabled
}
