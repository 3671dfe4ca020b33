// Package xraylog implements a minimal leveled logging interface used by the SDK.
// By default it logs into the standard error,
// and the output can be redirected by [SetLogger] or [WithLogger].
package xraylog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tracepipe/xray-go/internal/envconfig"
)

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string { return "xray context value " + k.name }

var loggerContextKey = &contextKey{"logger"}

var globalLogger atomic.Value

func init() {
	globalLogger.Store(NewDefaultLogger(os.Stderr, envLogLevel()))
}

func envLogLevel() LogLevel {
	env := envconfig.Get()
	if env.DebugMode != "" {
		return LogLevelDebug
	}
	switch env.LogLevel {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn":
		return LogLevelWarn
	case "error":
		return LogLevelError
	case "silent":
		return LogLevelSilent
	}
	return LogLevelInfo
}

// Logger is the logging interface used by the SDK.
type Logger interface {
	Log(ctx context.Context, level LogLevel, msg fmt.Stringer)
}

// LogLevel represents the severity of a log message, where a higher value
// means more severe. The integer value should not be serialized as it is
// subject to change.
type LogLevel int

const (
	// LogLevelDebug is debug level.
	LogLevelDebug LogLevel = iota + 1

	// LogLevelInfo is info level.
	LogLevelInfo

	// LogLevelWarn is warn level.
	LogLevelWarn

	// LogLevelError is error level.
	LogLevelError

	// LogLevelSilent suppresses all log messages.
	LogLevelSilent
)

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelSilent:
		return "SILENT"
	default:
		return fmt.Sprintf("UNKNOWNLOGLEVEL<%d>", ll)
	}
}

// SetLogger updates the global logger.
func SetLogger(logger Logger) {
	if logger == nil {
		panic("xraylog: logger should not be nil")
	}
	globalLogger.Store(logger)
}

// WithLogger set the context logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// ContextLogger returns the context logger.
// If the context has no logger, returns the global logger.
func ContextLogger(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return logger
	}
	return globalLogger.Load().(Logger)
}

// NullLogger suppresses all log messages.
type NullLogger struct{}

// Log implements [Logger].
func (NullLogger) Log(ctx context.Context, level LogLevel, msg fmt.Stringer) {}

type defaultLogger struct {
	mu       sync.Mutex
	w        io.Writer
	minLevel LogLevel
	pool     sync.Pool
}

// NewDefaultLogger returns new logger that outputs into w.
func NewDefaultLogger(w io.Writer, minLevel LogLevel) Logger {
	return &defaultLogger{
		w:        w,
		minLevel: minLevel,
		pool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

func (l *defaultLogger) Log(ctx context.Context, level LogLevel, msg fmt.Stringer) {
	if level < l.minLevel {
		return
	}

	buf := l.pool.Get().(*bytes.Buffer)
	defer l.pool.Put(buf)
	buf.Reset()
	buf.WriteString(time.Now().Format(time.RFC3339))
	buf.WriteString(" [")
	buf.WriteString(level.String())
	buf.WriteString("] ")
	buf.WriteString(msg.String())
	buf.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(buf.Bytes())
}

// printArgs delays the evaluation of fmt.Sprint until the log level is known
// to be enabled.
type printArgs []interface{}

func (args printArgs) String() string {
	return fmt.Sprint([]interface{}(args)...)
}

type printfArgs struct {
	format string
	args   []interface{}
}

func (args printfArgs) String() string {
	return fmt.Sprintf(args.format, args.args...)
}

// Info outputs info level log message.
func Info(ctx context.Context, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelInfo, printArgs(v))
}

// Infof outputs info level log message.
func Infof(ctx context.Context, format string, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelInfo, printfArgs{format, v})
}

// Debug outputs debug level log message.
func Debug(ctx context.Context, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelDebug, printArgs(v))
}

// Debugf outputs debug level log message.
func Debugf(ctx context.Context, format string, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelDebug, printfArgs{format, v})
}

// Warn outputs warn level log message.
func Warn(ctx context.Context, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelWarn, printArgs(v))
}

// Warnf outputs warn level log message.
func Warnf(ctx context.Context, format string, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelWarn, printfArgs{format, v})
}

// Error outputs error level log message.
func Error(ctx context.Context, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelError, printArgs(v))
}

// Errorf outputs error level log message.
func Errorf(ctx context.Context, format string, v ...interface{}) {
	ContextLogger(ctx).Log(ctx, LogLevelError, printfArgs{format, v})
}
