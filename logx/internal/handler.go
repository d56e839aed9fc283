// Package internal provides internal implementation details for logx.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Options configures the logger behavior.
type Options struct {
	Format           string     // Output format: logfmt or json
	Level            slog.Level // Minimum log level
	Color            bool       // Enable colorization for level field only (logfmt)
	PayloadMaxBytes  int        // Maximum bytes to log for large payloads (0 = unlimited)
	SensitiveFields  []string   // Field names to mask (e.g., "password", "token")
	DisableTimestamp bool       // Disable timestamp in output
}

const redacted = "***REDACTED***"

// Handler is a custom slog.Handler that outputs logfmt or JSON with sorted fields.
type Handler struct {
	opts   Options
	mu     *sync.Mutex
	writer io.Writer
	attrs  []slog.Attr
	group  string
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts Options, writer io.Writer) *Handler {
	return &Handler{
		opts:   opts,
		mu:     &sync.Mutex{},
		writer: writer,
	}
}

// handle writes the log record (internal method).
func (h *Handler) handle(level slog.Level, msg string, attrs []slog.Attr) {
	// Check if level is enabled
	if level < h.opts.Level {
		return
	}

	// Combine handler attrs with record attrs
	allAttrs := append([]slog.Attr{}, h.attrs...)
	allAttrs = append(allAttrs, qualify(h.group, attrs)...)

	// Sort attributes by key for stable output
	sortedAttrs := SortAttrs(FlattenAttrs("", allAttrs))

	var line string
	if h.opts.Format == "json" {
		line = h.formatJSON(level, msg, sortedAttrs)
	} else {
		line = h.formatLogfmt(level, msg, sortedAttrs)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, _ = io.WriteString(h.writer, line)
}

func (h *Handler) formatLogfmt(level slog.Level, msg string, attrs []slog.Attr) string {
	var buf strings.Builder

	// Add timestamp if not disabled (usually disabled in containers)
	if !h.opts.DisableTimestamp {
		buf.WriteString("time=")
		buf.WriteString(time.Now().Format(time.RFC3339))
		buf.WriteString(" ")
	}

	// Add level (only field with color)
	levelStr := LevelString(level)
	buf.WriteString("level=")
	if h.opts.Color {
		buf.WriteString(ColorizeLevel(levelStr))
	} else {
		buf.WriteString(levelStr)
	}

	// Add message (always quoted for consistency)
	buf.WriteString(" msg=")
	buf.WriteString(fmt.Sprintf("%q", msg))

	for _, attr := range attrs {
		buf.WriteString(" ")
		buf.WriteString(attr.Key)
		buf.WriteString("=")
		buf.WriteString(FormatValue(attr.Key, attr.Value, h.opts))
	}

	buf.WriteString("\n")
	return buf.String()
}

func (h *Handler) formatJSON(level slog.Level, msg string, attrs []slog.Attr) string {
	var buf strings.Builder
	buf.WriteString("{")

	if !h.opts.DisableTimestamp {
		writeJSONField(&buf, "time", time.Now().Format(time.RFC3339))
		buf.WriteString(",")
	}
	writeJSONField(&buf, "level", LevelString(level))
	buf.WriteString(",")
	writeJSONField(&buf, "msg", msg)

	for _, attr := range attrs {
		buf.WriteString(",")
		writeJSONField(&buf, attr.Key, JSONValue(attr.Key, attr.Value, h.opts))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeJSONField(buf *strings.Builder, key string, v any) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteString(":")
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprint(v))
	}
	buf.Write(b)
}

// LogRecord writes a log record (public method for logx package).
func (h *Handler) LogRecord(level slog.Level, msg string, attrs []slog.Attr) {
	h.handle(level, msg, attrs)
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	h.handle(r.Level, r.Message, attrs)
	return nil
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := append([]slog.Attr{}, h.attrs...)
	newAttrs = append(newAttrs, qualify(h.group, attrs)...)

	return &Handler{
		opts:   h.opts,
		mu:     h.mu,
		writer: h.writer,
		attrs:  newAttrs,
		group:  h.group,
	}
}

// WithGroup returns a new Handler whose later attributes are prefixed with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &Handler{
		opts:   h.opts,
		mu:     h.mu,
		writer: h.writer,
		attrs:  h.attrs,
		group:  group,
	}
}

func qualify(group string, attrs []slog.Attr) []slog.Attr {
	if group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: group + "." + a.Key, Value: a.Value}
	}
	return out
}

// KVToAttrs converts key-value pairs to slog.Attr slice.
func KVToAttrs(kv []any) []slog.Attr {
	// First, expand any nested []any pairs to a flat key, value sequence.
	flat := make([]any, 0, len(kv))
	for _, item := range kv {
		switch v := item.(type) {
		case []any:
			if len(v) == 2 {
				flat = append(flat, v[0], v[1])
			} else {
				flat = append(flat, v)
			}
		case slog.Attr:
			flat = append(flat, v.Key, v.Value)
		default:
			flat = append(flat, v)
		}
	}

	// Now, consume flat as key,value pairs.
	attrs := make([]slog.Attr, 0, len(flat)/2)
	for i := 0; i < len(flat)-1; i += 2 {
		key := fmt.Sprintf("%v", flat[i])
		attrs = append(attrs, slog.Any(key, flat[i+1]))
	}
	return attrs
}

// FlattenAttrs resolves LogValuers and expands groups into dotted keys.
func FlattenAttrs(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		v := a.Value.Resolve()
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		if v.Kind() == slog.KindGroup {
			out = append(out, FlattenAttrs(key, v.Group())...)
			continue
		}
		out = append(out, slog.Attr{Key: key, Value: v})
	}
	return out
}

// SortAttrs sorts attributes by key.
func SortAttrs(attrs []slog.Attr) []slog.Attr {
	sorted := make([]slog.Attr, len(attrs))
	copy(sorted, attrs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

func sensitive(key string, opts Options) bool {
	for _, field := range opts.SensitiveFields {
		if strings.EqualFold(key, field) {
			return true
		}
	}
	return false
}

func truncate(s string, opts Options) string {
	if opts.PayloadMaxBytes > 0 && len(s) > opts.PayloadMaxBytes {
		return fmt.Sprintf("%s...(truncated, %d bytes)", s[:opts.PayloadMaxBytes], len(s))
	}
	return s
}

// FormatValue formats a slog.Value for logfmt output.
func FormatValue(key string, v slog.Value, opts Options) string {
	// Check if this is a sensitive field (by key name)
	if sensitive(key, opts) {
		return fmt.Sprintf("%q", redacted)
	}

	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		// Always quote strings for logfmt consistency
		return fmt.Sprintf("%q", truncate(v.String(), opts))
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		f := v.Float64()
		// Format floats cleanly (remove trailing zeros)
		if f == float64(int64(f)) {
			return fmt.Sprintf("%.0f", f)
		}
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", f), "0"), ".")
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindDuration:
		// Format duration in milliseconds for consistency
		return fmt.Sprintf("%d", v.Duration().Milliseconds())
	case slog.KindTime:
		return fmt.Sprintf("%q", v.Time().Format(time.RFC3339))
	default:
		return fmt.Sprintf("%q", truncate(v.String(), opts))
	}
}

// JSONValue converts a slog.Value into a value suitable for json.Marshal.
func JSONValue(key string, v slog.Value, opts Options) any {
	if sensitive(key, opts) {
		return redacted
	}

	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return truncate(v.String(), opts)
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().Milliseconds()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	}

	switch a := v.Any().(type) {
	case error:
		return truncate(a.Error(), opts)
	case []string:
		return a
	}
	return truncate(v.String(), opts)
}

// LevelString returns the string representation of a log level.
func LevelString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}

// ColorizeLevel adds ANSI color codes ONLY to the level value.
func ColorizeLevel(level string) string {
	const (
		reset   = "\033[0m"
		red     = "\033[31m"
		yellow  = "\033[33m"
		cyan    = "\033[36m"
		magenta = "\033[35m"
	)

	switch level {
	case "DEBUG":
		return magenta + level + reset
	case "INFO":
		return cyan + level + reset
	case "WARN":
		return yellow + level + reset
	case "ERROR":
		return red + level + reset
	default:
		return level
	}
}
