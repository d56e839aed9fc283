// Package configx provides layered configuration management with hot reloading.
//
// Overview:
//   - Responsibility: Merge typed values from multiple sources, later sources winning
//   - Key Types: Source interface, Manager interface, Options for configuration
//   - Concurrency Model: Manager is safe for concurrent use, sources must be thread-safe
//   - Error Semantics: Coded core/errors values naming the offending key or source
//   - Performance Notes: Change signals are debounced before sources are re-collected
//
// Usage:
//
//	sources, err := configx.BuildSources(configx.BuildOptions{
//	  Files:     []string{"app.yaml"},
//	  EnvPrefix: "APP_",
//	  Args:      argx.NewWithMetadata(argx.FromCommand(cmd), md),
//	})
//	manager, err := configx.NewManager(ctx, configx.Options{
//	  Logger:  logger,
//	  Sources: sources,
//	})
//	var cfg AppConfig
//	err = manager.Bind(&cfg)
package configx

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/metric"
	"k8s.io/client-go/kubernetes"

	"go.eggybyte.com/argconf/configx/internal"
	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/core/utils"
	"go.eggybyte.com/argconf/core/value"
)

// Source produces a flat map of typed values whose keys use dots for nesting.
// Implementations must be thread-safe. argx.Source satisfies this interface.
type Source interface {
	// Name identifies the source in logs, metrics and errors.
	Name() string

	// Collect returns a fresh snapshot of the source.
	Collect() (value.Map, error)
}

// Watcher is implemented by sources that can signal changes. The channel is
// closed when ctx is cancelled; a nil channel means the source never changes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Manager manages multiple configuration sources and provides unified access.
// The manager merges configurations with later sources taking precedence.
type Manager interface {
	// Snapshot returns a copy of the current merged configuration.
	Snapshot() value.Map

	// Value returns the value for a key and whether it exists.
	Value(key string) (value.Value, bool)

	// Origin returns the name of the source that supplied key.
	Origin(key string) (string, bool)

	// GetString returns key as a string. Absent keys fail with NOT_FOUND,
	// failed conversions with TYPE_MISMATCH.
	GetString(key string) (string, error)

	// GetBool returns key as a bool.
	GetBool(key string) (bool, error)

	// GetInt returns key as an int64.
	GetInt(key string) (int64, error)

	// GetFloat returns key as a float64.
	GetFloat(key string) (float64, error)

	// GetStrings returns key as a list of strings. A scalar is a TYPE_MISMATCH.
	GetStrings(key string) ([]string, error)

	// GetArray returns key as a list of values. A scalar is a TYPE_MISMATCH.
	GetArray(key string) ([]value.Value, error)

	// Reload re-collects every source. The previous snapshot survives a failure.
	Reload(ctx context.Context) error

	// Bind decodes the configuration into a struct with config tags and
	// default values, then validates it.
	// Supports hot reloading via callback when configuration changes.
	Bind(target any, opts ...BindOption) error

	// OnUpdate subscribes to configuration update events.
	// Returns an unsubscribe function.
	OnUpdate(fn func(snapshot value.Map)) (unsubscribe func())
}

// Options holds configuration for the manager.
type Options struct {
	Logger        log.Logger          // Logger for configuration operations
	Sources       []Source            // Configuration sources (later sources override earlier ones)
	Debounce      time.Duration       // Debounce duration for updates (default: 200ms)
	MeterProvider metric.MeterProvider // Metrics destination (default: no-op)
	Validator     *validator.Validate // Validator used by Bind (default: validator.New())
}

// BindOption configures binding behavior.
type BindOption interface {
	apply(*bindConfig)
}

type bindConfig struct {
	onUpdate func()
}

type bindOptionFunc func(*bindConfig)

func (f bindOptionFunc) apply(cfg *bindConfig) {
	f(cfg)
}

// WithUpdateCallback re-binds the target on every change and then invokes fn.
func WithUpdateCallback(fn func()) BindOption {
	return bindOptionFunc(func(cfg *bindConfig) {
		cfg.onUpdate = fn
	})
}

// manager wraps the internal manager implementation.
type manager struct {
	*internal.ManagerImpl
}

// NewManager collects every source, then starts watching the sources that
// implement Watcher until ctx is cancelled.
//
// Parameters:
//   - ctx: lifetime of the watchers
//   - opts: manager configuration options
//
// Returns:
//   - Manager: initialized manager instance
//   - error: the first failing source, wrapped with its name
//
// Concurrency:
//   - Safe to call from multiple goroutines
func NewManager(ctx context.Context, opts Options) (Manager, error) {
	if opts.Logger == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "logger is required")
	}

	if len(opts.Sources) == 0 {
		return nil, errors.New(errors.CodeInvalidArgument, "at least one source is required")
	}

	// Convert sources to internal type
	internalSources := make([]internal.Source, len(opts.Sources))
	for i, src := range opts.Sources {
		internalSources[i] = src
	}

	metrics, err := internal.NewMetrics(opts.MeterProvider)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "configx.NewManager", err)
	}

	impl, err := internal.NewManager(internal.ManagerConfig{
		Logger:    opts.Logger,
		Sources:   internalSources,
		Debounce:  opts.Debounce,
		Metrics:   metrics,
		Validator: opts.Validator,
	})
	if err != nil {
		return nil, err
	}

	if err := impl.Initialize(ctx); err != nil {
		return nil, err
	}

	return &manager{ManagerImpl: impl}, nil
}

// Bind decodes the configuration into a struct.
func (m *manager) Bind(target any, opts ...BindOption) error {
	if target == nil {
		return errors.New(errors.CodeInvalidArgument, "target cannot be nil")
	}

	var cfg bindConfig
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	return m.ManagerImpl.Bind(target, internal.BindConfig{
		OnUpdate: cfg.onUpdate,
	})
}

// --- Public wrappers for source constructors (delegating to internal) ---

// NewEnvSource creates an environment variable configuration source.
func NewEnvSource(opts EnvOptions) Source {
	return internal.NewEnvSource(internal.EnvOptions{
		Prefix:        opts.Prefix,
		Separator:     opts.Separator,
		Lowercase:     opts.Lowercase,
		Uppercase:     opts.Uppercase,
		ListSeparator: opts.ListSeparator,
		ListKeys:      opts.ListKeys,
		TryParsing:    opts.TryParsing,
	})
}

// NewFileSource creates a file-based configuration source.
func NewFileSource(path string, opts FileOptions) Source {
	return internal.NewFileSource(path, internal.FileOptions{
		Format:   opts.Format,
		Required: opts.Required,
		Watch:    opts.Watch,
		Logger:   opts.Logger,
	})
}

// NewDefaultsSource creates a source of program defaults.
func NewDefaultsSource(values map[string]any) Source {
	return internal.NewDefaultsSource(values)
}

// NewConfigMapSource creates a Kubernetes ConfigMap configuration source.
func NewConfigMapSource(client kubernetes.Interface, name string, opts K8sOptions) Source {
	return internal.NewConfigMapSource(client, name, internal.K8sOptions{
		Namespace:    opts.Namespace,
		Logger:       opts.Logger,
		Timeout:      opts.Timeout,
		Retry:        opts.Retry,
		Watch:        opts.Watch,
		RewatchDelay: opts.RewatchDelay,

		BreakerThreshold: opts.BreakerThreshold,
		BreakerTimeout:   opts.BreakerTimeout,
	})
}

// BuildSources builds the standard layering, lowest precedence first:
// defaults, files, ConfigMap, environment (only with a prefix), arguments.
func BuildSources(opts BuildOptions) ([]Source, error) {
	var cm *internal.ConfigMapRef
	if opts.ConfigMap != nil {
		cm = &internal.ConfigMapRef{
			Client:    opts.ConfigMap.Client,
			Name:      opts.ConfigMap.Name,
			Namespace: opts.ConfigMap.Namespace,
			Watch:     opts.ConfigMap.Watch,
		}
	}

	var args internal.Source
	if opts.Args != nil {
		args = opts.Args
	}

	internalSources, err := internal.BuildSources(internal.BuildOptions{
		Logger:   opts.Logger,
		Defaults: opts.Defaults,
		Files:    opts.Files,
		FileOptions: internal.FileOptions{
			Format:   opts.FileOptions.Format,
			Required: opts.FileOptions.Required,
			Watch:    opts.FileOptions.Watch,
			Logger:   opts.FileOptions.Logger,
		},
		ConfigMap: cm,
		EnvPrefix: opts.EnvPrefix,
		Args:      args,
	})
	if err != nil {
		return nil, err
	}

	// Convert internal.Source to configx.Source
	sources := make([]Source, len(internalSources))
	for i, s := range internalSources {
		sources[i] = s
	}
	return sources, nil
}

// DefaultManager creates a manager over prefixed environment variables and
// the given command-line source, in that order of precedence.
func DefaultManager(ctx context.Context, logger log.Logger, envPrefix string, args Source) (Manager, error) {
	sources, err := BuildSources(BuildOptions{
		Logger:    logger,
		EnvPrefix: envPrefix,
		Args:      args,
	})
	if err != nil {
		return nil, err
	}
	return NewManager(ctx, Options{
		Logger:   logger,
		Sources:  sources,
		Debounce: 200 * time.Millisecond,
	})
}

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix        string   // Only variables starting with Prefix are read (e.g. "APP_")
	Separator     string   // Replaced by "." to build nested keys (e.g. "__")
	Lowercase     bool     // Convert keys to lowercase
	Uppercase     bool     // Convert keys to uppercase
	ListSeparator string   // Split values into arrays on this separator
	ListKeys      []string // Restrict list splitting to these keys
	TryParsing    bool     // Parse booleans and numbers
}

// FileOptions configures file source behavior.
type FileOptions struct {
	Format   string     // "json", "yaml" or "hcl" (default: from extension)
	Required bool       // Fail when the file does not exist
	Watch    bool       // Reload when the file changes
	Logger   log.Logger // Logger for watch failures
}

// K8sOptions configures Kubernetes ConfigMap source behavior.
type K8sOptions struct {
	Namespace    string            // Kubernetes namespace (default: "default")
	Logger       log.Logger        // Logger for K8s operations
	Timeout      time.Duration     // Per-collection timeout (default: 5s)
	Retry        utils.RetryConfig // Retry policy for reads
	Watch        bool              // Reload when the ConfigMap changes
	RewatchDelay time.Duration     // Delay before re-establishing a closed watch (default: 1s)

	BreakerThreshold uint32        // Consecutive failures that open the circuit (default: 5)
	BreakerTimeout   time.Duration // How long an open circuit fails fast (default: 30s)
}

// ConfigMapRef names the ConfigMap layer of BuildSources.
type ConfigMapRef struct {
	Client    kubernetes.Interface
	Name      string // default: $APP_CONFIGMAP_NAME
	Namespace string // default: $NAMESPACE, then "default"
	Watch     bool
}

// BuildOptions describes the standard layering built by BuildSources.
type BuildOptions struct {
	Logger      log.Logger
	Defaults    map[string]any
	Files       []string
	FileOptions FileOptions
	ConfigMap   *ConfigMapRef
	EnvPrefix   string
	Args        Source
}
