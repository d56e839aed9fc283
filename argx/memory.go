package argx

// MemoryStore is an insertion-ordered Store filled by hand. It serves parsers
// other than pflag and tests. Fill it before handing it to a Source; it is
// not safe for concurrent writes.
type MemoryStore struct {
	order []string
	args  map[string]memoryArg
}

type memoryArg struct {
	typ    DeclaredType
	values []string
	b      bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{args: make(map[string]memoryArg)}
}

// PutBool records a boolean argument.
func (s *MemoryStore) PutBool(key string, b bool) *MemoryStore {
	s.put(key, memoryArg{typ: TypeBool, values: []string{boolString(b)}, b: b})
	return s
}

// PutStrings records a string argument with its occurrences in supply order.
func (s *MemoryStore) PutStrings(key string, values ...string) *MemoryStore {
	s.put(key, memoryArg{typ: TypeString, values: append([]string(nil), values...)})
	return s
}

// PutOther records an argument of a type the resolver has no special policy for.
func (s *MemoryStore) PutOther(key string, values ...string) *MemoryStore {
	s.put(key, memoryArg{typ: TypeOther, values: append([]string(nil), values...)})
	return s
}

// PutUntyped records occurrences for a key whose declared type the parser
// could not report.
func (s *MemoryStore) PutUntyped(key string, values ...string) *MemoryStore {
	s.put(key, memoryArg{values: append([]string(nil), values...)})
	return s
}

func (s *MemoryStore) put(key string, arg memoryArg) {
	if _, ok := s.args[key]; !ok {
		s.order = append(s.order, key)
	}
	s.args[key] = arg
}

// Keys returns the keys in first-insertion order.
func (s *MemoryStore) Keys() []string {
	return append([]string(nil), s.order...)
}

// Has reports whether key was recorded.
func (s *MemoryStore) Has(key string) bool {
	_, ok := s.args[key]
	return ok
}

// DeclaredType returns the recorded type of key.
func (s *MemoryStore) DeclaredType(key string) (DeclaredType, bool) {
	arg, ok := s.args[key]
	if !ok || arg.typ == 0 {
		return 0, false
	}
	return arg.typ, true
}

// Count returns the number of recorded occurrences.
func (s *MemoryStore) Count(key string) int {
	return len(s.args[key].values)
}

// One returns the first recorded occurrence.
func (s *MemoryStore) One(key string) (string, bool) {
	values := s.args[key].values
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Many returns a copy of the recorded occurrences.
func (s *MemoryStore) Many(key string) []string {
	return append([]string(nil), s.args[key].values...)
}

// Bool returns the value of a boolean argument.
func (s *MemoryStore) Bool(key string) (bool, bool) {
	arg, ok := s.args[key]
	if !ok || arg.typ != TypeBool {
		return false, false
	}
	return arg.b, true
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
