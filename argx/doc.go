// Package argx turns parsed command-line arguments into a typed configuration
// source.
//
// # Overview
//
// argx reads an argument Store (a parsed pflag/cobra flag set, or any parser
// adapted to the Store interface) and resolves every recognized key into a
// value.Value tagged with the origin label "cli". The resulting map merges
// with files, environment variables and defaults in configx like any other
// source.
//
// # Resolution
//
//   - Boolean flags resolve to bool, whatever the metadata says
//   - String flags supplied once resolve to a string
//   - String flags supplied several times resolve to an array, in supply order
//   - Metadata overrides the count: KindArray always yields an array,
//     KindString always yields the first occurrence
//   - Other flag types (ints, durations, counters) resolve to their first value as a string
//
// Command-line libraries cannot tell "passed once" from "holds one value".
// Declare list-valued flags in Metadata so a single occurrence still decodes
// as a list downstream.
//
// # Usage
//
//	store := argx.FromCommand(cmd, argx.ExcludeFlags("config"))
//	src := argx.NewWithMetadata(store, argx.Metadata{"tag": value.KindArray})
//	values, err := src.Collect()
//
// # Errors
//
// Collect fails on the first bad key with a core/errors code:
// KEY_NOT_FOUND, MISSING_TYPE_INFO, UNSUPPORTED_SHAPE or MISSING_VALUE.
// errors.KeyOf returns the offending key.
//
// # Concurrency
//
// Source is immutable. Collect may run concurrently as long as the Store is
// not modified after parsing.
package argx
