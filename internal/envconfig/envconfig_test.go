package envconfig

import (
	"testing"
)

// Get reads the environment just once, so all values are checked in
// a single test.
func TestGet(t *testing.T) {
	t.Setenv("AWS_XRAY_DAEMON_ADDRESS", "udp:127.0.0.1:3000")
	t.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	t.Setenv("AWS_XRAY_SDK_DISABLED", "true")
	t.Setenv("AWS_XRAY_DEBUG_MODE", "1")
	t.Setenv("AWS_XRAY_LOG_LEVEL", "warn")

	got := Get()
	if got.DaemonAddress != "udp:127.0.0.1:3000" {
		t.Errorf("unexpected DaemonAddress: %q", got.DaemonAddress)
	}
	if got.ContextMissing != "LOG_ERROR" {
		t.Errorf("unexpected ContextMissing: %q", got.ContextMissing)
	}
	if !got.SDKDisabled {
		t.Error("SDKDisabled should be true")
	}
	if got.DebugMode == "" {
		t.Error("DebugMode should be set")
	}
	if got.LogLevel != "warn" {
		t.Errorf("unexpected LogLevel: %q", got.LogLevel)
	}
}
