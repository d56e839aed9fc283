// Package testingx provides testing helpers and fakes for argconf modules.
//
// # Overview
//
// testingx contains small utilities to speed up unit tests, including a
// mock logger with capture capabilities, assertions for core/errors codes
// and value comparisons, and a temp-file helper for file sources.
//
// # Features
//
//   - MockLogger with in-memory capture and assertions
//   - Error assertion helpers for core/errors codes and keys
//   - Value and map comparisons with readable diffs
//
// # Usage
//
//	logger := testingx.NewMockLogger(t)
//	values, err := src.Collect()
//	testingx.AssertNoError(t, err)
//	testingx.AssertValues(t, values, want)
//
// # Layer
//
// testingx is an auxiliary module for tests only and depends on core modules.
//
// # Stability
//
// Stable since v0.1.0.
package testingx
