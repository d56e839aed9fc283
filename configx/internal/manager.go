package internal

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/core/value"
)

// ManagerConfig holds the dependencies of a ManagerImpl.
type ManagerConfig struct {
	Logger    log.Logger
	Sources   []Source
	Debounce  time.Duration
	Metrics   *Metrics
	Validator *validator.Validate
}

// ManagerImpl merges sources in order, later sources taking precedence.
type ManagerImpl struct {
	logger    log.Logger
	sources   []Source
	debounce  time.Duration
	metrics   *Metrics
	validator *validator.Validate

	reloadMu sync.Mutex
	mu       sync.RWMutex
	snapshot value.Map

	subsMu     sync.RWMutex
	updateSubs map[int]func(value.Map)
	nextSubID  int
}

// NewManager creates a new configuration manager.
func NewManager(cfg ManagerConfig) (*ManagerImpl, error) {
	if cfg.Logger == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "logger is required")
	}
	if len(cfg.Sources) == 0 {
		return nil, errors.New(errors.CodeInvalidArgument, "at least one source is required")
	}
	for i, src := range cfg.Sources {
		if src == nil {
			return nil, errors.Build(errors.CodeInvalidArgument).
				WithOp("configx.NewManager").
				WithMsgf("source %d is nil", i).
				Err()
		}
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if cfg.Metrics == nil {
		metrics, err := NewMetrics(nil)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, "configx.NewManager", err)
		}
		cfg.Metrics = metrics
	}
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}

	return &ManagerImpl{
		logger:     cfg.Logger,
		sources:    cfg.Sources,
		debounce:   cfg.Debounce,
		metrics:    cfg.Metrics,
		validator:  cfg.Validator,
		snapshot:   make(value.Map),
		updateSubs: make(map[int]func(value.Map)),
	}, nil
}

// Initialize loads initial configuration and starts watching.
func (m *ManagerImpl) Initialize(ctx context.Context) error {
	merged, err := m.collect(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.snapshot = merged
	m.mu.Unlock()
	m.logger.Info("configuration loaded", log.Int("keys", len(merged)), log.Int("sources", len(m.sources)))

	return m.startWatching(ctx)
}

// Reload collects every source again. On failure the previous snapshot is
// kept. Subscribers are notified only when the merged result changed.
func (m *ManagerImpl) Reload(ctx context.Context) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	merged, err := m.collect(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	changed := !m.snapshot.Equal(merged)
	m.snapshot = merged
	m.mu.Unlock()

	if !changed {
		m.logger.Debug("configuration unchanged", log.Int("keys", len(merged)))
		return nil
	}

	m.logger.Info("configuration updated", log.Int("keys", len(merged)))
	m.notifySubscribers(merged)
	return nil
}

// collect reads every source in order and merges the results.
func (m *ManagerImpl) collect(ctx context.Context) (value.Map, error) {
	merged := make(value.Map)

	for _, source := range m.sources {
		start := time.Now()
		snapshot, err := source.Collect()
		m.metrics.RecordCollect(ctx, source.Name(), time.Since(start), err)
		if err != nil {
			code := errors.CodeOf(err)
			if code == "" {
				code = errors.CodeInternal
			}
			m.logger.Error(err, "source collection failed", log.Str("source", source.Name()))
			return nil, errors.Wrapf(code, "configx.collect", err, "source %s", source.Name())
		}

		m.logger.Debug("source collected", log.Str("source", source.Name()), log.Int("keys", len(snapshot)))
		merged.Merge(snapshot)
	}

	m.metrics.RecordKeys(ctx, len(merged))
	return merged, nil
}

// startWatching starts a goroutine per source that can signal changes.
func (m *ManagerImpl) startWatching(ctx context.Context) error {
	for _, source := range m.sources {
		w, ok := source.(Watcher)
		if !ok {
			continue
		}

		changes, err := w.Watch(ctx)
		if err != nil {
			return errors.Wrapf(errors.CodeUnavailable, "configx.watch", err, "source %s", source.Name())
		}
		if changes == nil {
			continue
		}

		m.logger.Debug("watching source", log.Str("source", source.Name()))
		go m.watchSource(ctx, source.Name(), changes)
	}

	return nil
}

// watchSource debounces change signals from one source and reloads.
func (m *ManagerImpl) watchSource(ctx context.Context, name string, changes <-chan struct{}) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				if fire == nil {
					return
				}
				changes = nil
				continue
			}
			if timer == nil {
				timer = time.NewTimer(m.debounce)
			} else {
				timer.Reset(m.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := m.Reload(ctx); err != nil {
				m.logger.Error(err, "reload after change failed", log.Str("source", name))
			}
			if changes == nil {
				return
			}
		}
	}
}

// notifySubscribers hands each subscriber its own copy of snapshot.
func (m *ManagerImpl) notifySubscribers(snapshot value.Map) {
	m.subsMu.RLock()
	subs := make([]func(value.Map), 0, len(m.updateSubs))
	for _, sub := range m.updateSubs {
		subs = append(subs, sub)
	}
	m.subsMu.RUnlock()

	for _, sub := range subs {
		go sub(snapshot.Clone())
	}
}

// Snapshot returns a copy of the current configuration.
func (m *ManagerImpl) Snapshot() value.Map {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot.Clone()
}

// Value returns the value for a key and whether it exists.
func (m *ManagerImpl) Value(key string) (value.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.snapshot[key]
	return v, ok
}

// Origin returns the name of the source that supplied key.
func (m *ManagerImpl) Origin(key string) (string, bool) {
	v, ok := m.Value(key)
	if !ok {
		return "", false
	}
	return v.Origin(), true
}

func (m *ManagerImpl) lookup(key string) (value.Value, error) {
	v, ok := m.Value(key)
	if !ok {
		return value.Value{}, errors.Build(errors.CodeNotFound).
			WithOp("configx.Get").
			WithKey(key).
			WithMsg("configuration property not found").
			Err()
	}
	return v, nil
}

func mismatch(key string, err error) error {
	return errors.Build(errors.CodeTypeMismatch).
		WithOp("configx.Get").
		WithKey(key).
		WithErr(err).
		Err()
}

// GetString returns key converted to a string.
func (m *ManagerImpl) GetString(key string) (string, error) {
	v, err := m.lookup(key)
	if err != nil {
		return "", err
	}
	s, err := v.AsString()
	if err != nil {
		return "", mismatch(key, err)
	}
	return s, nil
}

// GetBool returns key converted to a bool.
func (m *ManagerImpl) GetBool(key string) (bool, error) {
	v, err := m.lookup(key)
	if err != nil {
		return false, err
	}
	b, err := v.AsBool()
	if err != nil {
		return false, mismatch(key, err)
	}
	return b, nil
}

// GetInt returns key converted to an int64.
func (m *ManagerImpl) GetInt(key string) (int64, error) {
	v, err := m.lookup(key)
	if err != nil {
		return 0, err
	}
	i, err := v.AsInt()
	if err != nil {
		return 0, mismatch(key, err)
	}
	return i, nil
}

// GetFloat returns key converted to a float64.
func (m *ManagerImpl) GetFloat(key string) (float64, error) {
	v, err := m.lookup(key)
	if err != nil {
		return 0, err
	}
	f, err := v.AsFloat()
	if err != nil {
		return 0, mismatch(key, err)
	}
	return f, nil
}

// GetStrings returns key as a list of strings. Scalars are rejected.
func (m *ManagerImpl) GetStrings(key string) ([]string, error) {
	v, err := m.lookup(key)
	if err != nil {
		return nil, err
	}
	ss, err := v.AsStrings()
	if err != nil {
		return nil, mismatch(key, err)
	}
	return ss, nil
}

// GetArray returns key as a list of values. Scalars are rejected.
func (m *ManagerImpl) GetArray(key string) ([]value.Value, error) {
	v, err := m.lookup(key)
	if err != nil {
		return nil, err
	}
	arr, err := v.AsArray()
	if err != nil {
		return nil, mismatch(key, err)
	}
	return arr, nil
}

// Bind decodes the configuration into target and validates it. With an
// OnUpdate callback, target is re-bound on every change before the callback
// runs; callers synchronize their own reads of target.
func (m *ManagerImpl) Bind(target any, cfg BindConfig) error {
	if err := m.bindAndValidate(target); err != nil {
		return err
	}

	if cfg.OnUpdate != nil {
		var mu sync.Mutex
		m.OnUpdate(func(value.Map) {
			mu.Lock()
			defer mu.Unlock()
			if err := BindToStruct(m.Snapshot(), target); err != nil {
				m.logger.Error(err, "rebind after update failed")
				return
			}
			if err := ValidateStruct(m.validator, target); err != nil {
				m.logger.Error(err, "validation after update failed")
				return
			}
			cfg.OnUpdate()
		})
	}
	return nil
}

func (m *ManagerImpl) bindAndValidate(target any) error {
	if err := BindToStruct(m.Snapshot(), target); err != nil {
		return err
	}
	return ValidateStruct(m.validator, target)
}

// OnUpdate subscribes to configuration update events.
func (m *ManagerImpl) OnUpdate(fn func(snapshot value.Map)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	subID := m.nextSubID
	m.nextSubID++
	m.updateSubs[subID] = fn

	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.updateSubs, subID)
	}
}
