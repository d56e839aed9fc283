package argx

import (
	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/value"
)

// Resolve produces the typed value of key from its declared type, the raw
// occurrences held by store and an optional shape hint.
//
// Boolean flags always resolve to a bool; hints are ignored for them.
//
// String flags without a hint follow the occurrence count: one occurrence
// yields a string, several yield an array in supply order. A hint overrides
// the count: value.KindArray always yields an array (a single occurrence
// becomes a one-element array) and value.KindString always yields a string
// built from the first occurrence. Under a string hint any later occurrences
// are dropped without notice. Any other hinted kind is rejected with
// UNSUPPORTED_SHAPE.
//
// Other declared types resolve to a string holding the first occurrence.
func Resolve(key string, typ DeclaredType, store Store, hint *value.Kind) (value.Value, error) {
	switch typ {
	case TypeBool:
		b, ok := store.Bool(key)
		if !ok {
			return value.Value{}, missingValue(key, "no boolean value for a boolean argument")
		}
		return value.NewBool(Origin, b), nil

	case TypeString:
		if hint == nil {
			return resolveByCount(key, store)
		}
		return resolveByHint(key, store, *hint)

	case TypeOther:
		return first(key, store)
	}

	return value.Value{}, errors.Build(errors.CodeMissingTypeInfo).
		WithOp("argx.Resolve").
		WithKey(key).
		WithMsgf("unknown declared type %s", typ).
		Err()
}

func resolveByCount(key string, store Store) (value.Value, error) {
	switch n := store.Count(key); {
	case n == 0:
		return value.Value{}, missingValue(key, "no occurrences for a string argument")
	case n == 1:
		return first(key, store)
	default:
		return all(key, store)
	}
}

func resolveByHint(key string, store Store, hint value.Kind) (value.Value, error) {
	if store.Count(key) == 0 {
		return value.Value{}, missingValue(key, "no occurrences for a string argument")
	}

	switch hint {
	case value.KindArray:
		return all(key, store)
	case value.KindString:
		return first(key, store)
	}

	return value.Value{}, errors.Build(errors.CodeUnsupportedShape).
		WithOp("argx.Resolve").
		WithKey(key).
		WithMsgf("shape %s is not supported, use string or array", hint).
		Err()
}

func first(key string, store Store) (value.Value, error) {
	s, ok := store.One(key)
	if !ok {
		return value.Value{}, missingValue(key, "no value available")
	}
	return value.NewString(Origin, s), nil
}

func all(key string, store Store) (value.Value, error) {
	values := store.Many(key)
	if len(values) == 0 {
		return value.Value{}, missingValue(key, "no values available")
	}
	return value.NewStrings(Origin, values), nil
}

func missingValue(key, msg string) error {
	return errors.Build(errors.CodeMissingValue).
		WithOp("argx.Resolve").
		WithKey(key).
		WithMsg(msg).
		Err()
}
