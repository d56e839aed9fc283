// Package configx provides layered configuration management with hot reload.
//
// # Overview
//
// configx aggregates multiple configuration sources (defaults, files,
// Kubernetes ConfigMaps, environment variables and command-line arguments),
// merges them deterministically, and provides typed getters and struct
// binding with defaults and validation. Every value remembers the source
// that supplied it.
//
// # Features
//
//   - Multiple sources with last-wins merge semantics
//   - JSON, YAML and HCL files flattened to dotted keys
//   - Type-safe struct binding via config/default/validate tags
//   - Debounced hot updates from fsnotify and the ConfigMap watch API
//   - OpenTelemetry metrics for source collections
//
// # Usage
//
//	sources, err := configx.BuildSources(configx.BuildOptions{
//		Defaults:  map[string]any{"output": "yaml"},
//		Files:     []string{"app.yaml"},
//		EnvPrefix: "APP_",
//		Args:      argx.New(argx.FromCommand(cmd)),
//	})
//	if err != nil { return err }
//	mgr, err := configx.NewManager(ctx, configx.Options{
//		Logger:  logger,
//		Sources: sources,
//	})
//	if err != nil { return err }
//
//	var cfg AppConfig
//	if err := mgr.Bind(&cfg); err != nil { return err }
//
// # Layer
//
// configx belongs to Layer 2 (L2) and depends on core.
//
// # Stability
//
// Stable since v0.1.0. Backward-compatible API changes may occur with minor versions.
package configx
