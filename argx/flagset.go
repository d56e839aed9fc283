package argx

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagSetStore adapts a parsed pflag.FlagSet to the Store interface.
//
// A flag is recognized when it was set on the command line or carries a
// non-empty default; boolean flags are therefore always recognized. Slice
// and array flags report one occurrence per element.
type FlagSetStore struct {
	fs      *pflag.FlagSet
	exclude map[string]bool
}

// StoreOption configures a FlagSetStore.
type StoreOption func(*FlagSetStore)

// ExcludeFlags hides flags owned by the host program (config paths, output
// format and the like) from the store.
func ExcludeFlags(names ...string) StoreOption {
	return func(s *FlagSetStore) {
		for _, name := range names {
			s.exclude[name] = true
		}
	}
}

// NewFlagSetStore creates a Store over fs. fs must already be parsed.
func NewFlagSetStore(fs *pflag.FlagSet, opts ...StoreOption) *FlagSetStore {
	s := &FlagSetStore{
		fs:      fs,
		exclude: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromCommand creates a Store over every flag that applies to cmd, local and
// inherited. cobra's own help and version flags are always excluded.
func FromCommand(cmd *cobra.Command, opts ...StoreOption) *FlagSetStore {
	opts = append([]StoreOption{ExcludeFlags("help", "version")}, opts...)
	return NewFlagSetStore(cmd.Flags(), opts...)
}

// Keys returns the recognized flag names in the flag set's visiting order.
func (s *FlagSetStore) Keys() []string {
	var keys []string
	s.fs.VisitAll(func(f *pflag.Flag) {
		if !s.exclude[f.Name] && recognized(f) {
			keys = append(keys, f.Name)
		}
	})
	return keys
}

// Has reports whether the flag exists and is not excluded.
func (s *FlagSetStore) Has(key string) bool {
	return s.lookup(key) != nil
}

// DeclaredType maps the pflag value type onto a DeclaredType.
func (s *FlagSetStore) DeclaredType(key string) (DeclaredType, bool) {
	f := s.lookup(key)
	if f == nil {
		return 0, false
	}
	switch f.Value.Type() {
	case "":
		return 0, false
	case "bool":
		return TypeBool, true
	case "string", "stringSlice", "stringArray":
		return TypeString, true
	default:
		return TypeOther, true
	}
}

// Count returns the number of occurrences of key.
func (s *FlagSetStore) Count(key string) int {
	return len(s.Many(key))
}

// One returns the first occurrence of key.
func (s *FlagSetStore) One(key string) (string, bool) {
	values := s.Many(key)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Many returns every occurrence of key in supply order.
func (s *FlagSetStore) Many(key string) []string {
	f := s.lookup(key)
	if f == nil || !recognized(f) {
		return nil
	}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		return append([]string(nil), sv.GetSlice()...)
	}
	return []string{f.Value.String()}
}

// Bool returns the value of a boolean flag.
func (s *FlagSetStore) Bool(key string) (bool, bool) {
	f := s.lookup(key)
	if f == nil || f.Value.Type() != "bool" {
		return false, false
	}
	b, err := strconv.ParseBool(f.Value.String())
	if err != nil {
		return false, false
	}
	return b, true
}

func (s *FlagSetStore) lookup(key string) *pflag.Flag {
	if s.exclude[key] {
		return nil
	}
	return s.fs.Lookup(key)
}

// recognized reports whether f has at least one occurrence. A slice flag set
// to an empty list ("--tag=") has none and stays unrecognized.
func recognized(f *pflag.Flag) bool {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		return len(sv.GetSlice()) > 0
	}
	return f.Changed || f.DefValue != ""
}
