package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ConfigDir   string // directory holding one YAML file per wakeable service
	TemplateDir string // optional, per-service waiting page overrides (empty = built-in page only)
	AuditLog    string // append-only wake audit file

	RefreshInterval time.Duration // debounce between registry reconciliation passes (default: 5s)
	ProbeTimeout    time.Duration // per-probe TCP dial timeout (default: 500ms)

	WakeCommand  string        // external wake tool (default: wakeonlan)
	WakeCooldown time.Duration // per-MAC throttle window (default: 40s)
	WakeTimeout  time.Duration // max runtime for one wake tool invocation (default: 1s)

	// Redis (optional mirror; empty RedisAddr disables it)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 15s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	RateLimitPerMinute int // gateway requests per client IP per minute (0 = unlimited)
	RateLimitBurst     int // burst allowance on top of the per-minute rate
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("ROUSE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("ROUSE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("ROUSE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("ROUSE_PRETTY_LOG", true),

		// Service configs and templates
		ConfigDir:   getenv("ROUSE_CONFIG_DIR", "/app/configs"),
		TemplateDir: getenv("ROUSE_TEMPLATE_DIR", ""),
		AuditLog:    getenv("ROUSE_AUDIT_LOG", "/app/logs/wakes.log"),

		// Gateway behavior
		RefreshInterval: mustDuration("ROUSE_REFRESH_INTERVAL", 5*time.Second),
		ProbeTimeout:    mustDuration("ROUSE_PROBE_TIMEOUT", 500*time.Millisecond),
		WakeCommand:     getenv("ROUSE_WAKE_COMMAND", "wakeonlan"),
		WakeCooldown:    mustDuration("ROUSE_WAKE_COOLDOWN", 40*time.Second),
		WakeTimeout:     mustDuration("ROUSE_WAKE_TIMEOUT", time.Second),

		// Redis settings
		RedisAddr:           getenv("ROUSE_REDIS_ADDR", ""),
		RedisUser:           getenv("ROUSE_REDIS_USERNAME", ""),
		RedisPassword:       getenv("ROUSE_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("ROUSE_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 2*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 15*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("ROUSE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("ROUSE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("ROUSE_TRUST_PROXY", true),

		// Rate limiting
		RateLimitPerMinute: getenvInt("ROUSE_RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getenvInt("ROUSE_RATE_LIMIT_BURST", 30),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// RedisEnabled reports whether the wake-event mirror is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
