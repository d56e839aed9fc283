package internal

import (
	"os"

	"k8s.io/client-go/kubernetes"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/core/utils"
)

// ConfigMapRef names the ConfigMap layer of BuildSources.
type ConfigMapRef struct {
	Client    kubernetes.Interface
	Name      string // default: $APP_CONFIGMAP_NAME
	Namespace string // default: $NAMESPACE, then "default"
	Watch     bool
}

// BuildOptions describes the standard layering.
type BuildOptions struct {
	Logger      log.Logger
	Defaults    map[string]any
	Files       []string
	FileOptions FileOptions
	ConfigMap   *ConfigMapRef
	EnvPrefix   string // Environment variables are read only when set
	Args        Source
}

// BuildSources builds the standard layering, lowest precedence first:
// defaults, files, ConfigMap, environment, command-line arguments.
//
// Environment variables are included only with a prefix so unrelated
// process variables (PATH, HOME) never leak into the configuration. With a
// prefix, "APP_DB__DSN" becomes "db.dsn".
func BuildSources(opts BuildOptions) ([]Source, error) {
	var sources []Source

	if len(opts.Defaults) > 0 {
		sources = append(sources, NewDefaultsSource(opts.Defaults))
	}

	fileOpts := opts.FileOptions
	if fileOpts.Logger == nil {
		fileOpts.Logger = opts.Logger
	}
	// A file listed twice is read once, at its first position.
	for _, path := range utils.Unique(opts.Files) {
		if path == "" {
			continue
		}
		sources = append(sources, NewFileSource(path, fileOpts))
	}

	if opts.ConfigMap != nil {
		ref := *opts.ConfigMap
		if ref.Name == "" {
			ref.Name = os.Getenv("APP_CONFIGMAP_NAME")
		}
		if ref.Namespace == "" {
			ref.Namespace = os.Getenv("NAMESPACE")
		}
		if ref.Name != "" {
			if ref.Client == nil {
				return nil, errors.Build(errors.CodeInvalidArgument).
					WithOp("configx.BuildSources").
					WithMsgf("ConfigMap %s requires a kubernetes client", ref.Name).
					Err()
			}
			sources = append(sources, NewConfigMapSource(ref.Client, ref.Name, K8sOptions{
				Namespace: ref.Namespace,
				Logger:    opts.Logger,
				Watch:     ref.Watch,
			}))
		}
	}

	if opts.EnvPrefix != "" {
		sources = append(sources, NewEnvSource(EnvOptions{
			Prefix:    opts.EnvPrefix,
			Separator: "__",
			Lowercase: true,
		}))
	}

	if opts.Args != nil {
		sources = append(sources, opts.Args)
	}

	if len(sources) == 0 {
		return nil, errors.New(errors.CodeInvalidArgument, "no configuration sources configured")
	}
	return sources, nil
}
