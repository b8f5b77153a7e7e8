package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/MrSnakeDoc/rouse/internal/logger"
	"github.com/MrSnakeDoc/rouse/internal/metrics"
	"github.com/MrSnakeDoc/rouse/internal/registry"
	"github.com/MrSnakeDoc/rouse/internal/sources/configdir"
)

// Reconciler keeps the registry in sync with the config directory.
// There is no background timer: refresh piggybacks on request handling
// through MaybeRefresh, so a quiet gateway does no filesystem work.
type Reconciler struct {
	loader   *configdir.Loader
	registry *registry.Registry
	logger   logger.Logger
	metrics  *metrics.Metrics
	clock    clock.Clock
	interval time.Duration

	mu          sync.Mutex
	lastRefresh time.Time
}

// New creates a reconciler over the given loader and registry.
func New(
	loader *configdir.Loader,
	reg *registry.Registry,
	log logger.Logger,
	m *metrics.Metrics,
	clk clock.Clock,
	interval time.Duration,
) *Reconciler {
	return &Reconciler{
		loader:   loader,
		registry: reg,
		logger:   log,
		metrics:  m,
		clock:    clk,
		interval: interval,
	}
}

// LoadAll resets the registry and loads every config file present.
// Per-file failures are logged and skipped; only a failure to list the
// directory itself is returned, since an empty or partial registry at
// startup is recoverable but a missing config dir is not.
func (rc *Reconciler) LoadAll() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	paths, err := rc.loader.Paths()
	if err != nil {
		return fmt.Errorf("failed to list config sources: %w", err)
	}

	rc.registry.Reset()
	for _, path := range paths {
		rc.add(path)
	}
	rc.lastRefresh = rc.clock.Now()
	rc.metrics.RegisteredServices.Set(float64(rc.registry.Count()))

	rc.logger.Info("registry loaded",
		logger.Int("services", rc.registry.Count()),
		logger.String("dir", rc.loader.Dir()))
	return nil
}

// MaybeRefresh runs a reconciliation pass unless one ran recently or
// another is already in flight. Callers never block on it.
func (rc *Reconciler) MaybeRefresh() {
	if !rc.mu.TryLock() {
		return
	}
	defer rc.mu.Unlock()

	now := rc.clock.Now()
	if now.Sub(rc.lastRefresh) < rc.interval {
		return
	}
	rc.lastRefresh = now

	rc.refresh()
	rc.metrics.RefreshPasses.Inc()
	rc.metrics.RegisteredServices.Set(float64(rc.registry.Count()))
}

// LastRefresh returns when the last reconciliation pass started.
func (rc *Reconciler) LastRefresh() time.Time {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return rc.lastRefresh
}

// refresh performs one pass: additions, then removals, then reloads.
// That order keeps a renamed config file routable for the whole pass
// instead of vanishing between the remove and the add.
func (rc *Reconciler) refresh() {
	paths, err := rc.loader.Paths()
	if err != nil {
		// Without a directory listing there is no way to tell removed
		// sources from an unreadable dir, so keep the registry as is.
		rc.logger.Error("failed to list config sources, skipping refresh",
			logger.Error(err))
		return
	}

	onDisk := make(map[string]bool, len(paths))
	for _, path := range paths {
		onDisk[path] = true
	}
	registered := make(map[string]bool)
	for _, path := range rc.registry.Sources() {
		registered[path] = true
	}

	// Additions
	for _, path := range paths {
		if registered[path] {
			continue
		}
		rc.logger.Info("new config file", logger.String("path", path))
		rc.add(path)
	}

	// Removals
	for path := range registered {
		if onDisk[path] {
			continue
		}
		rc.logger.Info("config file removed", logger.String("path", path))
		rc.remove(path)
	}

	// Reloads
	for path, marker := range rc.registry.Markers() {
		current := rc.loader.ModTime(path)
		if current.Equal(marker) {
			continue
		}
		rc.logger.Info("config file changed",
			logger.String("path", path),
			logger.String("mtime", current.Format(time.RFC3339)))
		rc.remove(path)
		rc.add(path)
	}
}

// add loads one source and registers it. Failures are logged and
// skipped so one bad file never blocks the rest of the pass.
func (rc *Reconciler) add(path string) {
	svc, err := rc.loader.Load(path)
	if err != nil {
		rc.logger.Error("failed to load service config",
			logger.String("path", path),
			logger.Error(err))
		return
	}

	if displaced := rc.registry.Register(svc); displaced != "" {
		rc.logger.Warn("hostname already registered, newest record wins",
			logger.String("hostname", svc.Hostname()),
			logger.String("service", svc.Name),
			logger.String("displaced", displaced))
	}

	rc.logger.Info("loaded service",
		logger.String("service", svc.Name),
		logger.String("hostname", svc.Hostname()))
}

// remove unregisters the service backed by path.
func (rc *Reconciler) remove(path string) {
	name, err := rc.registry.NameForSource(path)
	if err != nil {
		rc.logger.Error("cannot resolve service for source",
			logger.String("path", path),
			logger.Error(err))
		return
	}
	if err := rc.registry.Unregister(name); err != nil {
		rc.logger.Warn("service already unregistered",
			logger.String("service", name))
		return
	}
	rc.logger.Info("unregistered service", logger.String("service", name))
}
