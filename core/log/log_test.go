package log

import (
	"testing"
	"time"
)

func TestPairHelpers(t *testing.T) {
	tests := []struct {
		name    string
		kv      any
		wantKey string
		check   func(v any) bool
	}{
		{"Str", Str("source", "cli"), "source", func(v any) bool { return v == "cli" }},
		{"Int", Int("keys", 4), "keys", func(v any) bool { return v == 4 }},
		{"Bool", Bool("watch", true), "watch", func(v any) bool { return v == true }},
		{"Dur", Dur("debounce", 200 * time.Millisecond), "debounce", func(v any) bool { return v == 200*time.Millisecond }},
		{"Strs", Strs("files", []string{"a.yaml", "b.hcl"}), "files", func(v any) bool {
			s, ok := v.([]string)
			return ok && len(s) == 2 && s[0] == "a.yaml" && s[1] == "b.hcl"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slice, ok := tt.kv.([]any)
			if !ok {
				t.Fatalf("%s should return []any, got %T", tt.name, tt.kv)
			}
			if len(slice) != 2 {
				t.Fatalf("%s should return slice with 2 elements, got %d", tt.name, len(slice))
			}
			if slice[0] != tt.wantKey {
				t.Errorf("key = %v, want %q", slice[0], tt.wantKey)
			}
			if !tt.check(slice[1]) {
				t.Errorf("unexpected value %v", slice[1])
			}
		})
	}
}

// MockLogger is a test implementation of the Logger interface
type MockLogger struct {
	Messages []string
	Fields   [][]any
}

func (m *MockLogger) With(kv ...any) Logger {
	return m
}

func (m *MockLogger) Debug(msg string, kv ...any) {
	m.Messages = append(m.Messages, msg)
	m.Fields = append(m.Fields, kv)
}

func (m *MockLogger) Info(msg string, kv ...any) {
	m.Messages = append(m.Messages, msg)
	m.Fields = append(m.Fields, kv)
}

func (m *MockLogger) Warn(msg string, kv ...any) {
	m.Messages = append(m.Messages, msg)
	m.Fields = append(m.Fields, kv)
}

func (m *MockLogger) Error(err error, msg string, kv ...any) {
	m.Messages = append(m.Messages, msg)
	m.Fields = append(m.Fields, kv)
}

func TestLoggerInterface(t *testing.T) {
	var logger Logger = &MockLogger{}

	logger.Debug("source collected", Str("source", "cli"))
	logger.Info("configuration loaded", Int("keys", 1))
	logger.Warn("watch restarted", Dur("backoff", time.Second))
	logger.Error(nil, "reload failed")

	mock := logger.(*MockLogger)
	expectedMessages := []string{"source collected", "configuration loaded", "watch restarted", "reload failed"}
	if len(mock.Messages) != len(expectedMessages) {
		t.Fatalf("Expected %d messages, got %d", len(expectedMessages), len(mock.Messages))
	}
	for i, expected := range expectedMessages {
		if mock.Messages[i] != expected {
			t.Errorf("Expected message %q, got %q", expected, mock.Messages[i])
		}
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger == nil {
		t.Fatal("Nop() should return non-nil logger")
	}
	if logger.With("k", "v") == nil {
		t.Fatal("Nop().With() should return non-nil logger")
	}
	logger.Info("discarded", Str("k", "v"))
	logger.Error(nil, "discarded")
}
