// Package logx provides a structured logging implementation based on slog.
//
// Overview:
//   - Responsibility: Unified logging with logfmt/JSON output, field sorting, and colorization
//   - Key Types: Logger implementation, Handler for slog, Options for configuration
//   - Concurrency Model: All loggers are safe for concurrent use
//   - Error Semantics: No errors returned; logging failures are silently handled
//   - Performance Notes: Optimized for production with field sorting and optional payload limits
//
// Usage:
//
//	level, err := logx.ParseLevel("debug")
//	logger := logx.New(logx.WithFormat(logx.FormatJSON), logx.WithLevel(level))
//	logger.Info("configuration loaded", log.Int("keys", 4))
package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/logx/internal"
)

// Format specifies the output format for logs.
type Format string

const (
	// FormatLogfmt outputs logs in logfmt format (key=value pairs).
	FormatLogfmt Format = "logfmt"
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = "json"
)

// Options configures the logger behavior.
type Options struct {
	Format           Format     // Output format: logfmt or json
	Level            slog.Level // Minimum log level
	Color            bool       // Enable colorization for level field only
	Writer           io.Writer  // Output writer (default: os.Stderr)
	PayloadMaxBytes  int        // Maximum bytes to log for large payloads (0 = unlimited)
	SensitiveFields  []string   // Field names to mask (e.g., "password", "token")
	DisableTimestamp bool       // Disable timestamp in output
}

// Logger implements core/log.Logger on top of the logx slog.Handler.
type Logger struct {
	handler slog.Handler
}

// Option configures logger behavior.
type Option func(*Options)

func buildHandler(opts []Option) *internal.Handler {
	o := Options{
		Format:           FormatLogfmt,
		Level:            slog.LevelInfo,
		DisableTimestamp: true, // the container runtime stamps lines already
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Writer == nil {
		o.Writer = os.Stderr
	}

	return internal.NewHandler(internal.Options{
		Format:           string(o.Format),
		Level:            o.Level,
		Color:            o.Color,
		PayloadMaxBytes:  o.PayloadMaxBytes,
		SensitiveFields:  o.SensitiveFields,
		DisableTimestamp: o.DisableTimestamp,
	}, o.Writer)
}

// New creates a Logger. Defaults: logfmt, info level, stderr, no timestamp.
func New(opts ...Option) log.Logger {
	return &Logger{handler: buildHandler(opts)}
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *Options) { o.Format = format }
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) { o.Level = level }
}

// WithColor colors the level field of logfmt output.
func WithColor(enabled bool) Option {
	return func(o *Options) { o.Color = enabled }
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) { o.Writer = w }
}

// WithPayloadLimit truncates string values longer than maxBytes.
func WithPayloadLimit(maxBytes int) Option {
	return func(o *Options) { o.PayloadMaxBytes = maxBytes }
}

// WithTimestamp enables the time field.
func WithTimestamp(enabled bool) Option {
	return func(o *Options) { o.DisableTimestamp = !enabled }
}

// WithSensitiveFields masks the values of the named keys.
func WithSensitiveFields(fields ...string) Option {
	return func(o *Options) { o.SensitiveFields = fields }
}

// With returns a Logger that adds kv to every record.
func (l *Logger) With(kv ...any) log.Logger {
	return &Logger{handler: l.handler.WithAttrs(internal.KVToAttrs(kv))}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, kv ...any) {
	l.log(slog.LevelDebug, msg, internal.KVToAttrs(kv))
}

// Info logs an informational message.
func (l *Logger) Info(msg string, kv ...any) {
	l.log(slog.LevelInfo, msg, internal.KVToAttrs(kv))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, kv ...any) {
	l.log(slog.LevelWarn, msg, internal.KVToAttrs(kv))
}

// Error logs err under "error". Coded errors also contribute "code" and,
// when they name one, the offending configuration "key".
func (l *Logger) Error(err error, msg string, kv ...any) {
	var attrs []slog.Attr
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		if code := errors.CodeOf(err); code != "" {
			attrs = append(attrs, slog.String("code", string(code)))
		}
		if key := errors.KeyOf(err); key != "" {
			attrs = append(attrs, slog.String("key", key))
		}
	}
	l.log(slog.LevelError, msg, append(attrs, internal.KVToAttrs(kv)...))
}

func (l *Logger) log(level slog.Level, msg string, attrs []slog.Attr) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(attrs...)
	_ = l.handler.Handle(ctx, r)
}

// NewSlog returns a *slog.Logger writing through the same handler, for
// libraries that expect the standard library type.
func NewSlog(opts ...Option) *slog.Logger {
	return slog.New(buildHandler(opts))
}

// ParseLevel parses a level name (debug, info, warn, warning, error),
// case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatLogfmt:
		return FormatLogfmt, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatLogfmt, fmt.Errorf("unknown log format %q", s)
}
