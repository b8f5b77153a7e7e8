package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rouse/internal/config"
	"github.com/MrSnakeDoc/rouse/internal/execx"
	"github.com/MrSnakeDoc/rouse/internal/httpserver"
	"github.com/MrSnakeDoc/rouse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rouse/internal/logger"
	"github.com/MrSnakeDoc/rouse/internal/metrics"
	"github.com/MrSnakeDoc/rouse/internal/probe"
	"github.com/MrSnakeDoc/rouse/internal/redis"
	"github.com/MrSnakeDoc/rouse/internal/registry"
	"github.com/MrSnakeDoc/rouse/internal/scheduler"
	"github.com/MrSnakeDoc/rouse/internal/sources/configdir"
	redisstore "github.com/MrSnakeDoc/rouse/internal/store/redis"
	"github.com/MrSnakeDoc/rouse/internal/templates"
	"github.com/MrSnakeDoc/rouse/internal/version"
	"github.com/MrSnakeDoc/rouse/internal/wake"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reconciler  *scheduler.Reconciler
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	met := metrics.New()
	reg := registry.New()
	loader := configdir.New(cfg.ConfigDir)
	reconciler := scheduler.New(loader, reg, loggerClient, met, clock.New(), cfg.RefreshInterval)
	prober := probe.New(cfg.ProbeTimeout, loggerClient)
	audit := wake.NewAudit(cfg.AuditLog)

	// Redis mirrors the wake history; the gateway runs fine without it,
	// so connection failure degrades instead of aborting startup.
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.RedisEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, wake history disabled",
				logger.Error(err))
		} else {
			loggerClient.Info("Redis initialized successfully")
			redisClient = client
			store = redisstore.NewStore(client)
		}
	} else {
		loggerClient.Info("redis not configured, wake history disabled")
	}

	dispatcher := wake.New(
		execx.NewOSRunner(),
		audit,
		store,
		loggerClient,
		met,
		clock.New(),
		wake.Config{
			Command:  cfg.WakeCommand,
			Cooldown: cfg.WakeCooldown,
			Timeout:  cfg.WakeTimeout,
		},
	)

	renderer, err := templates.New(cfg.TemplateDir)
	if err != nil {
		loggerClient.Errorf("Failed to load waiting page templates: %v", err)
		os.Exit(1)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TrustProxy:         cfg.TrustProxy,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		Registry:           reg,
		Reconciler:         reconciler,
		Prober:             prober,
		Dispatcher:         dispatcher,
		Templates:          renderer,
		Metrics:            met,
		Store:              store,
		RedisClient:        redisClient,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reconciler:  reconciler,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Rouse v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Rouse %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the registry before serving; a gateway with no config dir
	// has nothing to route and should not come up.
	if err := a.reconciler.LoadAll(); err != nil {
		return fmt.Errorf("failed to load service registry: %w", err)
	}
	a.logger.Info("service registry loaded",
		logger.Duration("refresh_interval", a.cfg.RefreshInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Rouse stopped cleanly")
	return nil
}
