package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rouse/internal/logger"
	"github.com/MrSnakeDoc/rouse/internal/metrics"
	"github.com/MrSnakeDoc/rouse/internal/probe"
	"github.com/MrSnakeDoc/rouse/internal/registry"
	"github.com/MrSnakeDoc/rouse/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/rouse/internal/store/redis"
	"github.com/MrSnakeDoc/rouse/internal/templates"
	"github.com/MrSnakeDoc/rouse/internal/wake"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	TrustProxy   bool     // true if running behind a trusted reverse proxy
	AllowedHosts []string // Host headers allowed on the operator endpoints
	AllowedCIDRS []string // IPs allowed to access the operator endpoints

	RateLimitPerMinute int // per-IP budget on the gateway route (0 disables)
	RateLimitBurst     int

	Registry   *registry.Registry    // hostname -> service lookup
	Reconciler *scheduler.Reconciler // request-driven registry refresh
	Prober     *probe.Prober         // is-the-host-up TCP check
	Dispatcher *wake.Dispatcher      // magic packet sender
	Templates  *templates.Renderer   // waiting pages
	Metrics    *metrics.Metrics      // Prometheus instruments

	Store       *redisstore.Store // nil when the wake-event mirror is disabled
	RedisClient *redis.Client     // nil when the wake-event mirror is disabled
}
