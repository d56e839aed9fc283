package internal

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"go.eggybyte.com/argconf/core/value"
)

// EnvOrigin labels values read from the process environment.
const EnvOrigin = "env"

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix        string   // Only variables starting with Prefix are read; it is stripped (e.g. "APP_")
	Separator     string   // Replaced by "." to build nested keys (e.g. "__")
	Lowercase     bool     // Convert keys to lowercase
	Uppercase     bool     // Convert keys to uppercase
	ListSeparator string   // Split values into arrays on this separator
	ListKeys      []string // Restrict list splitting to these keys (after key conversion)
	TryParsing    bool     // Parse booleans, integers and floats instead of keeping strings
}

// EnvSource loads configuration from environment variables.
type EnvSource struct {
	opts     EnvOptions
	listKeys map[string]bool
}

// NewEnvSource creates a new environment variable source.
func NewEnvSource(opts EnvOptions) *EnvSource {
	s := &EnvSource{opts: opts}
	if len(opts.ListKeys) > 0 {
		s.listKeys = make(map[string]bool, len(opts.ListKeys))
		for _, k := range opts.ListKeys {
			s.listKeys[k] = true
		}
	}
	return s
}

// Name returns the origin label.
func (s *EnvSource) Name() string {
	return EnvOrigin
}

// Collect reads configuration from environment variables.
func (s *EnvSource) Collect() (value.Map, error) {
	environ := os.Environ()
	sort.Strings(environ)

	config := make(value.Map)
	for _, env := range environ {
		rawKey, raw, ok := strings.Cut(env, "=")
		if !ok || rawKey == "" {
			continue
		}

		key, ok := s.key(rawKey)
		if !ok {
			continue
		}
		config[key] = s.value(key, raw)
	}

	return config, nil
}

// key maps an environment variable name to a configuration key.
func (s *EnvSource) key(name string) (string, bool) {
	if s.opts.Prefix != "" {
		if !strings.HasPrefix(name, s.opts.Prefix) {
			return "", false
		}
		name = strings.TrimPrefix(name, s.opts.Prefix)
		if name == "" {
			return "", false
		}
	}

	if s.opts.Separator != "" {
		name = strings.ReplaceAll(name, s.opts.Separator, ".")
	}

	if s.opts.Lowercase {
		name = strings.ToLower(name)
	} else if s.opts.Uppercase {
		name = strings.ToUpper(name)
	}
	return name, true
}

func (s *EnvSource) value(key, raw string) value.Value {
	if s.opts.ListSeparator != "" && (s.listKeys == nil || s.listKeys[key]) {
		parts := strings.Split(raw, s.opts.ListSeparator)
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = s.scalar(p)
		}
		return value.NewArray(EnvOrigin, elems)
	}
	return s.scalar(raw)
}

func (s *EnvSource) scalar(raw string) value.Value {
	if !s.opts.TryParsing {
		return value.NewString(EnvOrigin, raw)
	}

	switch strings.ToLower(raw) {
	case "true":
		return value.NewBool(EnvOrigin, true)
	case "false":
		return value.NewBool(EnvOrigin, false)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value.NewInt(EnvOrigin, i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return value.NewFloat(EnvOrigin, f)
	}
	return value.NewString(EnvOrigin, raw)
}
