// Package envconfig loads the SDK settings from AWS_XRAY_* environment values.
package envconfig

import (
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Config is the settings read from the environment.
type Config struct {
	// DaemonAddress is the address of the AWS X-Ray daemon,
	// read from AWS_XRAY_DAEMON_ADDRESS.
	// The format is "address:port" or "udp:address:port".
	DaemonAddress string `envconfig:"DAEMON_ADDRESS"`

	// ContextMissing is the name of the context missing strategy,
	// read from AWS_XRAY_CONTEXT_MISSING.
	// Valid values are "IGNORE_ERROR", "LOG_ERROR" and "RUNTIME_ERROR".
	ContextMissing string `envconfig:"CONTEXT_MISSING"`

	// SDKDisabled disables the SDK, read from AWS_XRAY_SDK_DISABLED.
	// A disabled SDK hands out no-op segments: the instrumented code runs
	// unchanged, but nothing is emitted and no trace header is propagated.
	SDKDisabled bool `envconfig:"SDK_DISABLED"`

	// DebugMode enables debug level logging if it is not empty,
	// read from AWS_XRAY_DEBUG_MODE.
	DebugMode string `envconfig:"DEBUG_MODE"`

	// LogLevel is the minimum log level, read from AWS_XRAY_LOG_LEVEL.
	// Valid values are "debug", "info", "warn", "error" and "silent".
	// It is ignored if DebugMode is set.
	LogLevel string `envconfig:"LOG_LEVEL"`
}

var once sync.Once
var config Config

// Get returns the settings read from the environment.
// The environment is read just once; later changes are not observed.
func Get() Config {
	once.Do(func() {
		// malformed values fall back to the zero value.
		_ = envconfig.Process("aws_xray", &config)
	})
	return config
}
