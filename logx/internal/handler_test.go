package internal

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestHandler(buf *bytes.Buffer, opts Options) *Handler {
	opts.DisableTimestamp = true
	return NewHandler(opts, buf)
}

func TestHandler_Enabled(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{}, Options{Level: slog.LevelWarn})

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "source collected", 0)
	r.AddAttrs(slog.String("source", "cli"), slog.Int("keys", 3))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	want := `level=INFO msg="source collected" keys=3 source="cli"` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	base := newTestHandler(&buf, Options{})

	h := base.WithAttrs([]slog.Attr{slog.String("component", "configx")}).
		WithGroup("watch").
		WithAttrs([]slog.Attr{slog.String("path", "app.yaml")})
	h.(*Handler).LogRecord(slog.LevelDebug, "changed", []slog.Attr{slog.String("op", "WRITE")})

	want := `level=DEBUG msg="changed" component="configx" watch.op="WRITE" watch.path="app.yaml"` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	if base.WithGroup("") != base {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestHandler_GroupValues(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{})

	h.LogRecord(slog.LevelInfo, "merged", []slog.Attr{
		slog.Group("db", slog.String("dsn", "x"), slog.Int("max_open", 10)),
	})

	if !strings.Contains(buf.String(), `db.dsn="x" db.max_open=10`) {
		t.Errorf("group not flattened: %s", buf.String())
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{Level: slog.LevelInfo})

	h.LogRecord(slog.LevelDebug, "hidden", nil)
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %s", buf.String())
	}
	h.LogRecord(slog.LevelInfo, "shown", nil)
	if buf.Len() == 0 {
		t.Error("info record not written")
	}
}

func TestHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{Format: "json"})

	h.LogRecord(slog.LevelWarn, "ConfigMap not found", []slog.Attr{
		slog.String("name", "app"),
		slog.Bool("watch", true),
		slog.Duration("timeout", 5*time.Second),
	})

	want := `{"level":"WARN","msg":"ConfigMap not found","name":"app","timeout":5000,"watch":true}` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestHandler_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(Options{}, &buf)
	h.LogRecord(slog.LevelInfo, "x", nil)
	if !strings.HasPrefix(buf.String(), "time=") {
		t.Errorf("expected timestamp, got: %s", buf.String())
	}
}

func TestHandler_Concurrency(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{})
	child := h.WithAttrs([]slog.Attr{slog.String("source", "env")}).(*Handler)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				h.LogRecord(slog.LevelInfo, "parent", []slog.Attr{slog.Int("i", i)})
			} else {
				child.LogRecord(slog.LevelInfo, "child", []slog.Attr{slog.Int("i", i)})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 50 {
		t.Errorf("got %d lines, want 50", len(lines))
	}
}

func TestKVToAttrs(t *testing.T) {
	attrs := KVToAttrs([]any{
		[]any{"source", "cli"},
		"keys", 3,
		slog.String("path", "app.yaml"),
		"dangling",
	})

	want := []string{"source", "keys", "path"}
	if len(attrs) != len(want) {
		t.Fatalf("KVToAttrs() len = %d, want %d", len(attrs), len(want))
	}
	for i, key := range want {
		if attrs[i].Key != key {
			t.Errorf("attrs[%d].Key = %q, want %q", i, attrs[i].Key, key)
		}
	}
}

func TestSortAttrs(t *testing.T) {
	in := []slog.Attr{slog.String("z", "1"), slog.String("a", "2"), slog.String("m", "3")}
	out := SortAttrs(in)
	if out[0].Key != "a" || out[1].Key != "m" || out[2].Key != "z" {
		t.Errorf("SortAttrs() = %v", out)
	}
	if in[0].Key != "z" {
		t.Error("SortAttrs() must not modify its input")
	}
}

type stringer struct{ s string }

func (s stringer) LogValue() slog.Value { return slog.StringValue(s.s) }

func TestFormatValue(t *testing.T) {
	opts := Options{SensitiveFields: []string{"Token"}, PayloadMaxBytes: 5}

	tests := []struct {
		name string
		key  string
		v    slog.Value
		want string
	}{
		{"string", "k", slog.StringValue("abc"), `"abc"`},
		{"truncated", "k", slog.StringValue("abcdefgh"), `"abcde...(truncated, 8 bytes)"`},
		{"int", "k", slog.Int64Value(-3), "-3"},
		{"uint", "k", slog.Uint64Value(7), "7"},
		{"whole float", "k", slog.Float64Value(2), "2"},
		{"float", "k", slog.Float64Value(0.25), "0.25"},
		{"bool", "k", slog.BoolValue(true), "true"},
		{"duration", "k", slog.DurationValue(1500 * time.Millisecond), "1500"},
		{"redacted", "token", slog.StringValue("secret"), `"***REDACTED***"`},
		{"log valuer", "k", slog.AnyValue(stringer{"cli"}), `"cli"`},
		{"error", "k", slog.AnyValue(fmt.Errorf("boom")), `"boom"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.key, tt.v, opts); got != tt.want {
				t.Errorf("FormatValue() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestJSONValue(t *testing.T) {
	opts := Options{SensitiveFields: []string{"token"}}

	tests := []struct {
		name string
		key  string
		v    slog.Value
		want any
	}{
		{"string", "k", slog.StringValue("abc"), "abc"},
		{"int", "k", slog.Int64Value(3), int64(3)},
		{"bool", "k", slog.BoolValue(false), false},
		{"redacted", "token", slog.StringValue("secret"), "***REDACTED***"},
		{"error", "k", slog.AnyValue(fmt.Errorf("boom")), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JSONValue(tt.key, tt.v, opts); got != tt.want {
				t.Errorf("JSONValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
		{slog.Level(2), "LEVEL(2)"},
	}
	for _, tt := range tests {
		if got := LevelString(tt.level); got != tt.want {
			t.Errorf("LevelString(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestColorizeLevel(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		got := ColorizeLevel(level)
		if !strings.Contains(got, level) || !strings.HasPrefix(got, "\033[") {
			t.Errorf("ColorizeLevel(%q) = %q", level, got)
		}
	}
	if got := ColorizeLevel("OTHER"); got != "OTHER" {
		t.Errorf("ColorizeLevel(OTHER) = %q", got)
	}
}
