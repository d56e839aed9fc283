package internal

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/core/utils"
	"go.eggybyte.com/argconf/core/value"
)

// K8sOptions configures Kubernetes ConfigMap source behavior.
type K8sOptions struct {
	Namespace    string            // Kubernetes namespace (default: "default")
	Logger       log.Logger        // Logger for K8s operations
	Timeout      time.Duration     // Per-collection timeout (default: 5s)
	Retry        utils.RetryConfig // Retry policy for reads (default: utils.DefaultRetryConfig)
	Watch        bool              // Signal ConfigMap changes
	RewatchDelay time.Duration     // Delay before re-establishing a closed watch (default: 1s)

	// BreakerThreshold consecutive failed collections open the circuit
	// (default: 5). While open, Collect fails fast for BreakerTimeout
	// (default: 30s) without calling the API server.
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

// ConfigMapSource loads configuration from a Kubernetes ConfigMap. Every
// data entry becomes a string value.
type ConfigMapSource struct {
	client    kubernetes.Interface
	name      string
	namespace string
	opts      K8sOptions
	logger    log.Logger
	breaker   *gobreaker.CircuitBreaker
}

// NewConfigMapSource creates a new Kubernetes ConfigMap source.
func NewConfigMapSource(client kubernetes.Interface, name string, opts K8sOptions) *ConfigMapSource {
	if opts.Namespace == "" {
		opts.Namespace = "default"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = utils.DefaultRetryConfig()
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = retryableAPIError
	}
	if opts.RewatchDelay <= 0 {
		opts.RewatchDelay = time.Second
	}
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}

	logger = logger.With("configmap", name, "namespace", opts.Namespace)
	threshold := opts.BreakerThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "configmap:" + opts.Namespace + "/" + name,
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A missing ConfigMap is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || apierrors.IsNotFound(err)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("ConfigMap circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	return &ConfigMapSource{
		client:    client,
		name:      name,
		namespace: opts.Namespace,
		opts:      opts,
		logger:    logger,
		breaker:   breaker,
	}
}

// Name returns "configmap:<namespace>/<name>".
func (s *ConfigMapSource) Name() string {
	return "configmap:" + s.namespace + "/" + s.name
}

// Collect reads the ConfigMap. A missing ConfigMap yields an empty map so
// lower layers stay in effect.
func (s *ConfigMapSource) Collect() (value.Map, error) {
	if s.client == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "kubernetes client is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	res, err := s.breaker.Execute(func() (interface{}, error) {
		var cm *corev1.ConfigMap
		err := utils.Retry(ctx, s.opts.Retry, func() error {
			var err error
			cm, err = s.client.CoreV1().ConfigMaps(s.namespace).Get(ctx, s.name, metav1.GetOptions{})
			return err
		})
		return cm, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Build(errors.CodeUnavailable).
				WithOp("configx.ConfigMapSource").
				WithMsgf("circuit open for %s", s.Name()).
				WithErr(err).
				Err()
		}
		if apierrors.IsNotFound(err) {
			s.logger.Warn("ConfigMap not found, skipping")
			return make(value.Map), nil
		}
		return nil, errors.Wrapf(errors.CodeUnavailable, "configx.ConfigMapSource", err, "get %s", s.Name())
	}

	cm := res.(*corev1.ConfigMap)
	origin := s.Name()
	out := make(value.Map, len(cm.Data))
	for k, v := range cm.Data {
		out[k] = value.NewString(origin, v)
	}
	return out, nil
}

// retryableAPIError reports whether a failed read may succeed later.
func retryableAPIError(err error) bool {
	return !apierrors.IsNotFound(err) &&
		!apierrors.IsForbidden(err) &&
		!apierrors.IsUnauthorized(err) &&
		!apierrors.IsBadRequest(err)
}

// Watch signals ConfigMap changes. Closed watches are re-established until
// ctx is cancelled.
func (s *ConfigMapSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	if !s.opts.Watch {
		return nil, nil
	}
	if s.client == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "kubernetes client is required")
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer s.logger.Info("ConfigMap watcher stopped")

		for {
			if ctx.Err() != nil {
				return
			}

			watcher, err := s.client.CoreV1().ConfigMaps(s.namespace).Watch(ctx, metav1.ListOptions{
				FieldSelector: fields.OneTermEqualSelector("metadata.name", s.name).String(),
			})
			if err != nil {
				s.logger.Error(err, "failed to create ConfigMap watcher")
			} else {
				s.drain(ctx, watcher, ch)
			}

			// Wait before recreating watcher
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.opts.RewatchDelay):
			}
		}
	}()

	return ch, nil
}

// drain forwards events for this ConfigMap until the watch closes.
func (s *ConfigMapSource) drain(ctx context.Context, watcher watch.Interface, ch chan<- struct{}) {
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.ResultChan():
			if !ok {
				s.logger.Warn("ConfigMap watcher channel closed")
				return
			}

			switch event.Type {
			case watch.Added, watch.Modified, watch.Deleted:
				cm, ok := event.Object.(*corev1.ConfigMap)
				if !ok || cm.Name != s.name {
					continue
				}
				s.logger.Debug("ConfigMap changed", log.Str("event", string(event.Type)), log.Int("data_keys", len(cm.Data)))
				notify(ch)
			case watch.Error:
				s.logger.Error(apierrors.FromObject(event.Object), "ConfigMap watcher error")
			}
		}
	}
}
