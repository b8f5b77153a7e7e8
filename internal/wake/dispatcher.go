package wake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/rouse/internal/domain"
	"github.com/MrSnakeDoc/rouse/internal/execx"
	"github.com/MrSnakeDoc/rouse/internal/logger"
	"github.com/MrSnakeDoc/rouse/internal/metrics"
	redisstore "github.com/MrSnakeDoc/rouse/internal/store/redis"
)

// Config carries the wake tool invocation settings.
type Config struct {
	Command  string
	Cooldown time.Duration
	Timeout  time.Duration
}

// Request describes the HTTP request that triggered a wake, for the
// audit trail.
type Request struct {
	ClientAddr string
	Path       string
	Hostname   string
}

// Dispatcher sends magic packets through an external wake tool and
// throttles repeats per hardware address. Two service records sharing
// a MAC share a cooldown slot, so the key is the raw MAC string. The
// map only ever grows; config dirs hold a handful of hosts.
type Dispatcher struct {
	runner  execx.Runner
	audit   *Audit
	store   *redisstore.Store
	logger  logger.Logger
	metrics *metrics.Metrics
	clock   clock.Clock

	command  string
	cooldown time.Duration
	timeout  time.Duration

	mu        sync.Mutex
	lastWakes map[string]time.Time
}

// New creates a dispatcher. store may be nil to run without the Redis
// mirror.
func New(
	runner execx.Runner,
	audit *Audit,
	store *redisstore.Store,
	log logger.Logger,
	m *metrics.Metrics,
	clk clock.Clock,
	cfg Config,
) *Dispatcher {
	return &Dispatcher{
		runner:    runner,
		audit:     audit,
		store:     store,
		logger:    log,
		metrics:   m,
		clock:     clk,
		command:   cfg.Command,
		cooldown:  cfg.Cooldown,
		timeout:   cfg.Timeout,
		lastWakes: make(map[string]time.Time),
	}
}

// Wake sends a magic packet for svc unless one went out for its MAC
// within the cooldown window. A throttled call is a silent no-op; a
// failed send is returned to the caller. The audit write happens after
// a successful send and its failure is only logged.
func (d *Dispatcher) Wake(ctx context.Context, svc *domain.Service, req Request) error {
	now := d.clock.Now()

	d.mu.Lock()
	if last, ok := d.lastWakes[svc.MACAddr]; ok && now.Sub(last) < d.cooldown {
		d.mu.Unlock()
		d.metrics.WakesThrottled.Inc()
		d.logger.Info("wake skipped, cooldown active",
			logger.String("service", svc.Name),
			logger.Duration("since_last", now.Sub(last)))
		return nil
	}
	// Claim the slot before sending so concurrent requests cannot
	// burst duplicate packets while the tool runs.
	d.lastWakes[svc.MACAddr] = now
	d.mu.Unlock()

	d.logger.Info("waking host",
		logger.String("service", svc.Name),
		logger.String("host", svc.HostAddr),
		logger.String("broadcast", svc.BroadcastAddr))

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.runner.Run(runCtx, d.command, "-i", svc.BroadcastAddr, svc.MACAddr); err != nil {
		d.metrics.WakeFailures.Inc()
		return fmt.Errorf("failed to send wake signal for %s: %w", svc.Name, err)
	}
	d.metrics.WakesIssued.WithLabelValues(svc.Name).Inc()

	if err := d.audit.Record(now, req.ClientAddr, req.Path, req.Hostname); err != nil {
		d.logger.Error("failed to write audit log", logger.Error(err))
	}

	d.mirror(ctx, svc, req, now)
	return nil
}

// mirror pushes the event to Redis when a store is configured.
func (d *Dispatcher) mirror(ctx context.Context, svc *domain.Service, req Request, at time.Time) {
	if d.store == nil {
		return
	}

	event := &domain.WakeEvent{
		ID:         uuid.NewString(),
		Service:    svc.Name,
		Hostname:   req.Hostname,
		MACAddr:    svc.MACAddr,
		ClientAddr: req.ClientAddr,
		Path:       req.Path,
		At:         at,
	}
	if err := d.store.SaveWakeEvent(ctx, event); err != nil {
		d.logger.Warn("failed to mirror wake event to redis",
			logger.Error(err))
		// Don't fail - the audit file is the primary record
	}
}
