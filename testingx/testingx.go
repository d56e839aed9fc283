// Package testingx provides testing utilities for configuration sources.
//
// Overview:
//   - Responsibility: Testing helpers, mock logger and value assertions
//   - Key Types: MockLogger, LogEntry, T (the subset of testing.TB the helpers need)
//   - Concurrency Model: MockLogger is safe for concurrent use
//   - Error Semantics: Test failures via T
//   - Performance Notes: Intended for tests only
//
// Usage:
//
//	logger := testingx.NewMockLogger(t)
//	testingx.AssertCode(t, err, errors.CodeMissingValue)
//	testingx.AssertValues(t, got, value.Map{"tag": value.NewString("cli", "x")})
package testingx

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/core/value"
)

// T is the part of testing.TB used by the assertion helpers.
type T interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// MockLogger is a mock logger for testing.
type MockLogger struct {
	t       T
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry represents a single log entry.
type LogEntry struct {
	Level   string
	Message string
	Fields  []any
	Error   error
}

// Field returns the value logged under key, flattening log.Str style pairs.
func (e LogEntry) Field(key string) (any, bool) {
	flat := make([]any, 0, len(e.Fields))
	for _, f := range e.Fields {
		if pair, ok := f.([]any); ok && len(pair) == 2 {
			flat = append(flat, pair[0], pair[1])
			continue
		}
		flat = append(flat, f)
	}
	for i := 0; i+1 < len(flat); i += 2 {
		if k, ok := flat[i].(string); ok && k == key {
			return flat[i+1], true
		}
	}
	return nil, false
}

// NewMockLogger creates a new mock logger.
func NewMockLogger(t T) *MockLogger {
	return &MockLogger{
		t:       t,
		entries: make([]LogEntry, 0),
	}
}

// With returns the same logger; attached fields are not tracked.
func (m *MockLogger) With(kv ...any) log.Logger {
	return m
}

// Debug logs a debug message.
func (m *MockLogger) Debug(msg string, kv ...any) {
	m.log("DEBUG", msg, nil, kv)
}

// Info logs an info message.
func (m *MockLogger) Info(msg string, kv ...any) {
	m.log("INFO", msg, nil, kv)
}

// Warn logs a warning message.
func (m *MockLogger) Warn(msg string, kv ...any) {
	m.log("WARN", msg, nil, kv)
}

// Error logs an error message.
func (m *MockLogger) Error(err error, msg string, kv ...any) {
	m.log("ERROR", msg, err, kv)
}

func (m *MockLogger) log(level, msg string, err error, kv []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  kv,
		Error:   err,
	})
}

// Entries returns all log entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]LogEntry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// Find returns the first entry with the given level and message.
func (m *MockLogger) Find(level, msg string) (LogEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.Level == level && entry.Message == msg {
			return entry, true
		}
	}
	return LogEntry{}, false
}

// AssertLogged asserts that a message was logged.
func (m *MockLogger) AssertLogged(level, msg string) {
	m.t.Helper()
	if _, ok := m.Find(level, msg); !ok {
		m.t.Errorf("Expected log message not found: level=%s msg=%q", level, msg)
	}
}

// Clear clears all log entries.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
}

// AssertCode asserts that err carries the expected code.
func AssertCode(t T, err error, expectedCode errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", expectedCode)
		return
	}
	if code := errors.CodeOf(err); code != expectedCode {
		t.Errorf("Expected error code %s, got %s (%v)", expectedCode, code, err)
	}
}

// AssertKey asserts that err names the expected configuration key.
func AssertKey(t T, err error, expectedKey string) {
	t.Helper()
	if key := errors.KeyOf(err); key != expectedKey {
		t.Errorf("Expected error key %q, got %q (%v)", expectedKey, key, err)
	}
}

// AssertNoError asserts that no error occurred.
func AssertNoError(t T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertValue asserts that got equals want, origin included.
func AssertValue(t T, got, want value.Value) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

// AssertValues asserts that two maps hold the same keys and values.
func AssertValues(t T, got, want value.Map) {
	t.Helper()
	if diff := cmp.Diff(map[string]value.Value(want), map[string]value.Value(got)); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteFileAt replaces the content of an existing file, typically one
// created by WriteFile.
func WriteFileAt(t testing.TB, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
