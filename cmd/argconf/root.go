package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"go.eggybyte.com/argconf/argx"
	"go.eggybyte.com/argconf/configx"
	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/core/utils"
	"go.eggybyte.com/argconf/core/value"
	"go.eggybyte.com/argconf/logx"
	"go.eggybyte.com/argconf/obsx"
)

// hostFlags are owned by argconf itself and never reach the configuration.
var hostFlags = []string{
	"config", "env-prefix", "list", "scalar", "output", "origins",
	"log-level", "log-format", "configmap", "namespace", "watch", "metrics-addr",
}

// newKubeClient builds the ConfigMap client. Replaced in tests.
var newKubeClient = func() (kubernetes.Interface, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnavailable, "argconf.kubeClient", err)
	}
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnavailable, "argconf.kubeClient", err)
	}
	return client, nil
}

type rootOptions struct {
	configFiles []string
	envPrefix   string
	listKeys    []string
	scalarKeys  []string
	output      string
	origins     bool
	logLevel    string
	logFormat   string
	configMap   string
	namespace   string
	watch       bool
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "argconf",
		Short: "Merge command-line arguments with files and environment",
		Long: `argconf resolves its own flags into typed configuration values and
layers them over defaults, configuration files, an optional ConfigMap and
prefixed environment variables. The merged result is printed.

A string flag given once becomes a string, given several times a list.
Use --list or --scalar to pin the shape of a key regardless of how often
it was given.

Example:
  argconf -v -i filename -t tagone -t tagtwo
  argconf -t one --list tag -o json --origins`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	// Application flags, resolved into configuration.
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Input file")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.BoolP("debug", "d", false, "Debug mode")
	flags.StringArrayP("tag", "t", nil, "Tag (repeatable)")

	// Host flags.
	flags.StringArrayVarP(&opts.configFiles, "config", "c", nil, "Configuration file (json, yaml or hcl; repeatable)")
	flags.StringVar(&opts.envPrefix, "env-prefix", "", "Read environment variables with this prefix (e.g. APP_)")
	flags.StringArrayVar(&opts.listKeys, "list", nil, "Always resolve this key as a list (repeatable)")
	flags.StringArrayVar(&opts.scalarKeys, "scalar", nil, "Always resolve this key as a single string (repeatable)")
	flags.StringVarP(&opts.output, "output", "o", "yaml", "Output format: yaml or json")
	flags.BoolVar(&opts.origins, "origins", false, "Print the source of every value")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "logfmt", "Log format: logfmt or json")
	flags.StringVar(&opts.configMap, "configmap", "", "Kubernetes ConfigMap layered between files and environment")
	flags.StringVar(&opts.namespace, "namespace", "", "ConfigMap namespace (default: $NAMESPACE, then default)")
	flags.BoolVar(&opts.watch, "watch", false, "Keep running and print the configuration on every change")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching (e.g. :9090)")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func run(cmd *cobra.Command, opts *rootOptions) error {
	logger, err := newLogger(cmd.ErrOrStderr(), opts)
	if err != nil {
		return err
	}

	rend, err := newRenderer(opts.output, opts.origins)
	if err != nil {
		return err
	}

	md, err := shapeMetadata(opts.listKeys, opts.scalarKeys)
	if err != nil {
		return err
	}

	store := argx.FromCommand(cmd, argx.ExcludeFlags(hostFlags...))
	args := argx.New(store, argx.WithMetadata(md))
	logger.Debug("arguments recognized", log.Strs("keys", args.Keys()))

	build := configx.BuildOptions{
		Logger: logger,
		Files:  opts.configFiles,
		FileOptions: configx.FileOptions{
			Required: true,
			Watch:    opts.watch,
			Logger:   logger,
		},
		EnvPrefix: opts.envPrefix,
		Args:      args,
	}
	if opts.configMap != "" {
		client, err := newKubeClient()
		if err != nil {
			return err
		}
		build.ConfigMap = &configx.ConfigMapRef{
			Client:    client,
			Name:      opts.configMap,
			Namespace: opts.namespace,
			Watch:     opts.watch,
		}
	}

	sources, err := configx.BuildSources(build)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	mgrOpts := configx.Options{
		Logger:  logger,
		Sources: sources,
	}

	var provider *obsx.Provider
	if opts.metricsAddr != "" {
		if !opts.watch {
			return errors.New(errors.CodeInvalidArgument, "--metrics-addr requires --watch")
		}
		provider, err = obsx.NewProvider(ctx, obsx.Options{
			ServiceName:    "argconf",
			ServiceVersion: Version,
		})
		if err != nil {
			return err
		}
		defer provider.Shutdown(context.Background())
		if err := provider.EnableRuntimeMetrics(); err != nil {
			return err
		}
		mgrOpts.MeterProvider = provider.MeterProvider()
	}

	mgr, err := configx.NewManager(ctx, mgrOpts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printConfig(out, rend, mgr); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	if provider != nil {
		go func() {
			if err := provider.Serve(ctx, opts.metricsAddr, logger); err != nil {
				logger.Error(err, "metrics endpoint stopped")
			}
		}()
	}
	return watch(ctx, out, rend, mgr, logger)
}

// watch reprints the configuration on every update until ctx is done.
func watch(ctx context.Context, out io.Writer, r renderer, mgr configx.Manager, logger log.Logger) error {
	updates := make(chan value.Map, 1)
	unsubscribe := mgr.OnUpdate(func(snapshot value.Map) {
		select {
		case updates <- snapshot:
		default:
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			logger.Info("configuration changed")
			fmt.Fprintln(out, "---")
			if err := printConfig(out, r, mgr); err != nil {
				return err
			}
		}
	}
}

func printConfig(out io.Writer, r renderer, mgr configx.Manager) error {
	b, err := r.render(mgr.Snapshot())
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

func newLogger(w io.Writer, opts *rootOptions) (log.Logger, error) {
	level, err := logx.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "argconf.logger", err)
	}
	format, err := logx.ParseFormat(opts.logFormat)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "argconf.logger", err)
	}
	return logx.New(
		logx.WithWriter(w),
		logx.WithLevel(level),
		logx.WithFormat(format),
	), nil
}

// shapeMetadata turns --list and --scalar into shape hints.
func shapeMetadata(listKeys, scalarKeys []string) (argx.Metadata, error) {
	md := make(argx.Metadata, len(listKeys)+len(scalarKeys))
	for _, key := range listKeys {
		md[key] = value.KindArray
	}
	for _, key := range scalarKeys {
		if utils.Contains(listKeys, key) {
			return nil, errors.Build(errors.CodeInvalidArgument).
				WithOp("argconf.shapeMetadata").
				WithKey(key).
				WithMsg("key given to both --list and --scalar").
				Err()
		}
		md[key] = value.KindString
	}
	return md, nil
}
