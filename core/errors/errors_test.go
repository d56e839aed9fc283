package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidArgument, "metadata must not be empty")
	if err == nil {
		t.Fatal("New should return non-nil error")
	}

	var customErr *E
	if !errors.As(err, &customErr) {
		t.Fatal("Error should be of type *E")
	}
	if customErr.Code != CodeInvalidArgument {
		t.Errorf("Expected code %s, got %s", CodeInvalidArgument, customErr.Code)
	}
	if got, want := err.Error(), "INVALID_ARGUMENT: metadata must not be empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrap(CodeUnavailable, "configmap.Get", originalErr)

	var customErr *E
	if !errors.As(wrappedErr, &customErr) {
		t.Fatal("Wrapped error should be of type *E")
	}
	if customErr.Op != "configmap.Get" {
		t.Errorf("Expected operation %q, got %q", "configmap.Get", customErr.Op)
	}
	if customErr.Err != originalErr {
		t.Error("Wrapped error should contain original error")
	}
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("errors.Is should see through the wrapper")
	}
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("unexpected EOF")
	wrappedErr := Wrapf(CodeInvalidArgument, "file.Collect", originalErr, "parse %s", "app.yaml")

	var customErr *E
	if !errors.As(wrappedErr, &customErr) {
		t.Fatal("Wrapped error should be of type *E")
	}
	if customErr.Msg != "parse app.yaml" {
		t.Errorf("Expected message %q, got %q", "parse app.yaml", customErr.Msg)
	}
	if got, want := wrappedErr.Error(), "INVALID_ARGUMENT: parse app.yaml: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "custom error with code",
			err:      New(CodeMissingValue, "test"),
			expected: CodeMissingValue,
		},
		{
			name:     "wrapped in fmt.Errorf",
			err:      fmt.Errorf("source cli: %w", New(CodeUnsupportedShape, "test")),
			expected: CodeUnsupportedShape,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: "",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := CodeOf(tt.err)
			if code != tt.expected {
				t.Errorf("Expected code %q, got %q", tt.expected, code)
			}
			if tt.expected != "" && !IsCode(tt.err, tt.expected) {
				t.Errorf("IsCode(%v, %s) = false", tt.err, tt.expected)
			}
		})
	}
}

func TestKeyOf(t *testing.T) {
	inner := Build(CodeMissingValue).WithKey("tag").Err()
	outer := Wrap(CodeInternal, "configx.Reload", inner)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"direct", inner, "tag"},
		{"nested", outer, "tag"},
		{"fmt wrapped", fmt.Errorf("collect: %w", outer), "tag"},
		{"no key", New(CodeInternal, "boom"), ""},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyOf(tt.err); got != tt.want {
				t.Errorf("KeyOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorIncludesKey(t *testing.T) {
	err := Build(CodeKeyNotFound).WithKey("input").WithMsg("store cannot retrieve key").Err()
	want := `KEY_NOT_FOUND: key "input": store cannot retrieve key`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(CodeInternal, "operation", originalErr)

	if errors.Unwrap(wrappedErr) != originalErr {
		t.Error("Unwrap should return original error")
	}
}

func TestBuilder(t *testing.T) {
	originalErr := errors.New("no such flag")
	err := Build(CodeMissingTypeInfo).
		WithOp("argx.Collect").
		WithKey("verbose").
		WithErr(originalErr).
		WithMsgf("store has no type for %s", "verbose").
		WithDetails("origin", "cli").
		Err()

	var customErr *E
	if !errors.As(err, &customErr) {
		t.Fatal("Error should be of type *E")
	}
	if customErr.Code != CodeMissingTypeInfo {
		t.Errorf("Expected code %s, got %s", CodeMissingTypeInfo, customErr.Code)
	}
	if customErr.Op != "argx.Collect" {
		t.Errorf("Expected op %q, got %q", "argx.Collect", customErr.Op)
	}
	if customErr.Key != "verbose" {
		t.Errorf("Expected key %q, got %q", "verbose", customErr.Key)
	}
	if customErr.Msg != "store has no type for verbose" {
		t.Errorf("Expected msg %q, got %q", "store has no type for verbose", customErr.Msg)
	}
	if customErr.Err != originalErr {
		t.Error("Builder should wrap original error")
	}
	if len(customErr.Details) != 2 {
		t.Errorf("Expected 2 details, got %d", len(customErr.Details))
	}
}
