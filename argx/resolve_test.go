package argx

import (
	"testing"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/value"
	"go.eggybyte.com/argconf/testingx"
)

func kindPtr(k value.Kind) *value.Kind { return &k }

func TestResolve(t *testing.T) {
	store := NewMemoryStore().
		PutBool("verbose", true).
		PutBool("debug", false).
		PutStrings("input", "filename").
		PutStrings("tag", "tagone", "tagtwo").
		PutStrings("single", "tagone").
		PutOther("retries", "3", "5")

	tests := []struct {
		name string
		key  string
		typ  DeclaredType
		hint *value.Kind
		want value.Value
	}{
		{"bool true", "verbose", TypeBool, nil, value.NewBool(Origin, true)},
		{"bool false", "debug", TypeBool, nil, value.NewBool(Origin, false)},
		{"bool ignores array hint", "verbose", TypeBool, kindPtr(value.KindArray), value.NewBool(Origin, true)},
		{"bool ignores table hint", "debug", TypeBool, kindPtr(value.KindTable), value.NewBool(Origin, false)},
		{"single string", "input", TypeString, nil, value.NewString(Origin, "filename")},
		{"repeated string", "tag", TypeString, nil, value.NewStrings(Origin, []string{"tagone", "tagtwo"})},
		{"array hint single occurrence", "single", TypeString, kindPtr(value.KindArray), value.NewStrings(Origin, []string{"tagone"})},
		{"array hint repeated", "tag", TypeString, kindPtr(value.KindArray), value.NewStrings(Origin, []string{"tagone", "tagtwo"})},
		{"string hint single", "input", TypeString, kindPtr(value.KindString), value.NewString(Origin, "filename")},
		{"string hint truncates", "tag", TypeString, kindPtr(value.KindString), value.NewString(Origin, "tagone")},
		{"other first occurrence", "retries", TypeOther, nil, value.NewString(Origin, "3")},
		{"other ignores hint", "retries", TypeOther, kindPtr(value.KindArray), value.NewString(Origin, "3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.key, tt.typ, store, tt.hint)
			testingx.AssertNoError(t, err)
			testingx.AssertValue(t, got, tt.want)
		})
	}
}

func TestResolve_SingleOccurrenceDecodesAsList(t *testing.T) {
	store := NewMemoryStore().PutStrings("tag", "tagone")

	inferred, err := Resolve("tag", TypeString, store, nil)
	testingx.AssertNoError(t, err)
	if _, err := inferred.AsArray(); err == nil {
		t.Fatal("inferred single occurrence should not decode as a list")
	}

	hinted, err := Resolve("tag", TypeString, store, kindPtr(value.KindArray))
	testingx.AssertNoError(t, err)
	got, err := hinted.AsStrings()
	testingx.AssertNoError(t, err)
	if len(got) != 1 || got[0] != "tagone" {
		t.Errorf("AsStrings() = %v, want [tagone]", got)
	}
}

func TestResolve_Errors(t *testing.T) {
	store := NewMemoryStore().
		PutStrings("tag", "tagone").
		PutStrings("empty")

	tests := []struct {
		name string
		key  string
		typ  DeclaredType
		hint *value.Kind
		code errors.Code
	}{
		{"unsupported table hint", "tag", TypeString, kindPtr(value.KindTable), errors.CodeUnsupportedShape},
		{"unsupported int hint", "tag", TypeString, kindPtr(value.KindInt), errors.CodeUnsupportedShape},
		{"unsupported bool hint", "tag", TypeString, kindPtr(value.KindBool), errors.CodeUnsupportedShape},
		{"no occurrences", "empty", TypeString, nil, errors.CodeMissingValue},
		{"no occurrences with hint", "empty", TypeString, kindPtr(value.KindArray), errors.CodeMissingValue},
		{"bool without value", "tag", TypeBool, nil, errors.CodeMissingValue},
		{"other without value", "empty", TypeOther, nil, errors.CodeMissingValue},
		{"unknown declared type", "tag", DeclaredType(42), nil, errors.CodeMissingTypeInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.key, tt.typ, store, tt.hint)
			testingx.AssertCode(t, err, tt.code)
			testingx.AssertKey(t, err, tt.key)
		})
	}
}
