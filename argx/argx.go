package argx

import (
	"fmt"
	"sort"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/value"
)

// Origin is the label attached to every value produced from command-line arguments.
const Origin = "cli"

// DeclaredType is the primitive kind the argument parser associates with a key,
// independent of how many values were supplied.
type DeclaredType int

const (
	// TypeBool marks flags that only ever hold true or false.
	TypeBool DeclaredType = iota + 1
	// TypeString marks string-valued flags, single or repeatable.
	TypeString
	// TypeOther marks any other flag kind (ints, durations, counters, custom values).
	TypeOther
)

// String returns a readable name for the declared type.
func (t DeclaredType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeOther:
		return "other"
	}
	return fmt.Sprintf("DeclaredType(%d)", int(t))
}

// Store is the read-only view of parsed command-line arguments.
// Implementations must not change after parsing has completed; a Store is
// then safe for concurrent reads.
type Store interface {
	// Keys lists every recognized key in the store's own order.
	Keys() []string

	// Has reports whether key can be retrieved.
	Has(key string) bool

	// DeclaredType returns the declared primitive type of key.
	// ok is false when the store has no type information for it.
	DeclaredType(key string) (t DeclaredType, ok bool)

	// Count returns the number of raw occurrences supplied for key.
	Count(key string) int

	// One returns the first raw occurrence of key.
	One(key string) (string, bool)

	// Many returns all raw occurrences of key in supply order.
	Many(key string) []string

	// Bool returns the boolean value of a boolean-declared key.
	Bool(key string) (bool, bool)
}

// Metadata maps argument keys to the value shape they must resolve to.
// Only the kind is consulted: value.KindString forces a scalar,
// value.KindArray forces a sequence. A nil Metadata is valid and means
// count-based inference for every key.
type Metadata map[string]value.Kind

// Lookup returns the shape hint for key. Absence is the normal case.
func (m Metadata) Lookup(key string) (value.Kind, bool) {
	k, ok := m[key]
	return k, ok
}

// Source turns an argument Store into a flat configuration map whose values
// carry the Origin label. A Source is immutable and safe for concurrent use.
type Source struct {
	store    Store
	metadata Metadata
}

// Option configures a Source.
type Option func(*Source)

// WithMetadata installs shape hints. The table is copied.
func WithMetadata(md Metadata) Option {
	return func(s *Source) {
		if md == nil {
			s.metadata = nil
			return
		}
		s.metadata = make(Metadata, len(md))
		for k, v := range md {
			s.metadata[k] = v
		}
	}
}

// New creates a Source over store.
func New(store Store, opts ...Option) *Source {
	s := &Source{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWithMetadata creates a Source over store with shape hints.
func NewWithMetadata(store Store, md Metadata) *Source {
	return New(store, WithMetadata(md))
}

// Name returns the origin label, identifying this source in a layered pipeline.
func (s *Source) Name() string {
	return Origin
}

// Keys returns every key recognized by the underlying store.
func (s *Source) Keys() []string {
	if s.store == nil {
		return nil
	}
	return s.store.Keys()
}

// Item resolves a single key.
func (s *Source) Item(key string) (value.Value, error) {
	if s.store == nil {
		return value.Value{}, errors.New(errors.CodeInvalidArgument, "argument store is required")
	}
	if !s.store.Has(key) {
		return value.Value{}, errors.Build(errors.CodeKeyNotFound).
			WithOp("argx.Item").
			WithKey(key).
			WithMsg("store cannot retrieve the argument").
			Err()
	}
	typ, ok := s.store.DeclaredType(key)
	if !ok {
		return value.Value{}, errors.Build(errors.CodeMissingTypeInfo).
			WithOp("argx.Item").
			WithKey(key).
			WithMsg("store reports no declared type").
			Err()
	}

	var hint *value.Kind
	if k, ok := s.metadata.Lookup(key); ok {
		hint = &k
	}
	return Resolve(key, typ, s.store, hint)
}

// Collect resolves every recognized key into a fresh map. The first failing
// key aborts the collection; no partial map is returned.
func (s *Source) Collect() (value.Map, error) {
	if s.store == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "argument store is required")
	}

	keys := s.store.Keys()
	out := make(value.Map, len(keys))
	for _, key := range keys {
		v, err := s.Item(key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// String describes the source for diagnostics.
func (s *Source) String() string {
	hinted := make([]string, 0, len(s.metadata))
	for k, kind := range s.metadata {
		hinted = append(hinted, k+"="+kind.String())
	}
	sort.Strings(hinted)
	return fmt.Sprintf("argx.Source{keys: %v, metadata: %v}", s.Keys(), hinted)
}
